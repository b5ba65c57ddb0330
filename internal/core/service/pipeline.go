package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/memoir-notes/memoir/internal/core/model"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/memoir-notes/memoir/internal/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

type artifactEntry struct {
	artifact   model.Artifact
	generation uint64
}

// DocumentPipeline owns the per-document processing state machine: it
// mediates artifact retrieval against the owning backend, caches results in
// an explicit keyed store, dedupes concurrent fetches and gates exports on a
// ready summary. Each instance is isolated; nothing is shared globally.
type DocumentPipeline struct {
	backend   port.BackendClient
	converter port.Converter
	notion    port.NotionFactory

	mutex     sync.Mutex
	documents map[model.DocumentID]model.Document
	artifacts map[model.ArtifactKey]artifactEntry
	expanded  map[model.DocumentID]bool
	exporting map[model.DocumentID]bool

	group  singleflight.Group
	closed chan struct{}
}

func NewDocumentPipeline(backend port.BackendClient, converter port.Converter, notion port.NotionFactory) *DocumentPipeline {
	return &DocumentPipeline{
		backend:   backend,
		converter: converter,
		notion:    notion,
		documents: make(map[model.DocumentID]model.Document),
		artifacts: make(map[model.ArtifactKey]artifactEntry),
		expanded:  make(map[model.DocumentID]bool),
		exporting: make(map[model.DocumentID]bool),
		closed:    make(chan struct{}),
	}
}

// LoadDocuments refreshes the cached document collection from the owning
// backend. Derived artifacts are untouched.
func (p *DocumentPipeline) LoadDocuments(ctx context.Context) ([]model.Document, error) {
	documents, err := p.backend.ListDocuments(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, d := range documents {
		p.documents[d.ID] = d
	}

	return documents, nil
}

// Documents returns the cached document collection.
func (p *DocumentPipeline) Documents() []model.Document {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	documents := make([]model.Document, 0, len(p.documents))
	for _, d := range p.documents {
		documents = append(documents, d)
	}

	return documents
}

// Filter is a pure, synchronous predicate over cached document metadata:
// case-insensitive substring match on name and derived file name. It never
// touches the network.
func (p *DocumentPipeline) Filter(term string) []model.Document {
	term = strings.ToLower(term)

	p.mutex.Lock()
	defer p.mutex.Unlock()

	matches := make([]model.Document, 0)
	for _, d := range p.documents {
		if term == "" ||
			strings.Contains(strings.ToLower(d.Name), term) ||
			strings.Contains(strings.ToLower(d.BaseFileName()), term) {
			matches = append(matches, d)
		}
	}

	return matches
}

// Expand marks the document expanded and returns its summary artifact. A
// settled artifact, ready or failed, is served from the cache without a
// fetch; only the first expansion, or an expansion racing it, reaches the
// backend, and racers share the single in-flight call.
func (p *DocumentPipeline) Expand(ctx context.Context, id model.DocumentID) (model.Artifact, error) {
	key := model.ArtifactKey{DocumentID: id, Kind: model.ArtifactKindSummary}

	p.mutex.Lock()
	p.expanded[id] = true

	if entry, exists := p.artifacts[key]; exists && entry.artifact.Settled() {
		p.mutex.Unlock()
		return entry.artifact, nil
	}

	generation := p.beginLoadLocked(key)
	p.mutex.Unlock()

	return p.fetch(ctx, key, generation, p.backend.GetArtifact)
}

// Collapse hides the document. The artifact cache is deliberately kept: a
// later re-expand must not refetch a settled artifact.
func (p *DocumentPipeline) Collapse(id model.DocumentID) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	delete(p.expanded, id)
}

// Expanded reports whether the document is currently expanded.
func (p *DocumentPipeline) Expanded(id model.DocumentID) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.expanded[id]
}

// Artifact returns the cached artifact for the key, absent status included.
func (p *DocumentPipeline) Artifact(id model.DocumentID, kind model.ArtifactKind) model.Artifact {
	key := model.ArtifactKey{DocumentID: id, Kind: kind}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if entry, exists := p.artifacts[key]; exists {
		return entry.artifact
	}

	return model.Artifact{Key: key, Status: model.ArtifactStatusAbsent}
}

// Regenerate is the only path that re-issues a fetch from a ready or failed
// state. It overwrites the cache entry, never appends, and supersedes any
// fetch still in flight for the same key: the older call's result can no
// longer land in the cache.
func (p *DocumentPipeline) Regenerate(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (model.Artifact, error) {
	key := model.ArtifactKey{DocumentID: id, Kind: kind}

	p.mutex.Lock()
	generation := p.beginLoadLocked(key)
	p.mutex.Unlock()

	// Forget the in-flight call, if any, so this generation performs its
	// own fetch instead of joining a stale one.
	p.group.Forget(flightKey(key))

	return p.fetch(ctx, key, generation, p.backend.RegenerateArtifact)
}

type fetchFunc func(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (string, error)

func (p *DocumentPipeline) fetch(ctx context.Context, key model.ArtifactKey, generation uint64, fn fetchFunc) (model.Artifact, error) {
	result, err, _ := p.group.Do(flightKey(key), func() (any, error) {
		text, err := fn(ctx, key.DocumentID, key.Kind)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return text, nil
	})

	artifact := model.Artifact{Key: key}

	if err != nil {
		slog.ErrorContext(ctx, "could not fetch artifact",
			slog.String("documentID", string(key.DocumentID)),
			slog.String("kind", string(key.Kind)),
			slog.Any("error", errors.WithStack(err)),
		)

		artifact.Status = model.ArtifactStatusFailed
		artifact.Reason = err.Error()

		metrics.ArtifactLoads.With(withKind(metrics.StatusFailed, key.Kind)).Inc()
	} else {
		artifact.Status = model.ArtifactStatusReady
		artifact.Text = result.(string)

		metrics.ArtifactLoads.With(withKind(metrics.StatusSucceeded, key.Kind)).Inc()
	}

	p.store(key, generation, artifact)

	return artifact, nil
}

// beginLoadLocked bumps the key's generation and marks it loading. The
// caller must hold the mutex.
func (p *DocumentPipeline) beginLoadLocked(key model.ArtifactKey) uint64 {
	entry := p.artifacts[key]
	entry.generation++
	entry.artifact = model.Artifact{Key: key, Status: model.ArtifactStatusLoading}
	p.artifacts[key] = entry

	return entry.generation
}

// store writes the settled artifact, unless a newer generation was issued
// meanwhile or the pipeline was closed. Last write wins: a stale success can
// never shadow a later request.
func (p *DocumentPipeline) store(key model.ArtifactKey, generation uint64, artifact model.Artifact) {
	select {
	case <-p.closed:
		return
	default:
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	entry, exists := p.artifacts[key]
	if !exists || entry.generation != generation {
		return
	}

	entry.artifact = artifact
	p.artifacts[key] = entry
}

type ExportDestination struct {
	PageID     string
	DatabaseID string
}

// Export sends the document's summary to the caller's Notion workspace. It
// requires a cached ready summary: absent or failed summaries yield an
// explicit error instead of a surprise fetch. Exports are not idempotent
// upstream, so a second export for the same document is rejected while one
// is in flight; deliberate sequential re-exports are allowed and create new
// pages.
func (p *DocumentPipeline) Export(ctx context.Context, id model.DocumentID, credential string, dest ExportDestination) (*model.ExportRecord, error) {
	if credential == "" {
		return nil, errors.WithStack(port.ErrAuthRequired)
	}

	key := model.ArtifactKey{DocumentID: id, Kind: model.ArtifactKindSummary}

	p.mutex.Lock()

	entry, exists := p.artifacts[key]
	if !exists || !entry.artifact.Ready() {
		p.mutex.Unlock()
		return nil, errors.Wrap(port.ErrSummaryNotReady, "generate the summary before exporting")
	}

	if p.exporting[id] {
		p.mutex.Unlock()
		return nil, errors.WithStack(port.ErrExportInFlight)
	}

	p.exporting[id] = true
	document := p.documents[id]
	summary := entry.artifact.Text

	p.mutex.Unlock()

	defer func() {
		p.mutex.Lock()
		delete(p.exporting, id)
		p.mutex.Unlock()
	}()

	result, err := p.converter.Convert(ctx, summary)
	if err != nil {
		return nil, errors.Wrap(err, "could not convert summary")
	}

	title := document.Name
	if title == "" {
		title = fmt.Sprintf("Memoir export %s", id)
	}

	client := p.notion.Client(credential)

	var page *port.NotionPage

	switch {
	case dest.PageID != "":
		page, err = client.AppendBlocks(ctx, dest.PageID, result.Blocks)
	case dest.DatabaseID != "":
		page, err = client.CreatePage(ctx, dest.DatabaseID, title, nil, result.Blocks)
	default:
		return nil, errors.Wrap(port.ErrMissingField, "either pageId or databaseId is required")
	}
	if err != nil {
		metrics.Exports.With(metrics.StatusFailed).Inc()
		return nil, errors.Wrap(err, "could not export to notion")
	}

	metrics.Exports.With(metrics.StatusSucceeded).Inc()

	record := &model.ExportRecord{
		ID:         model.NewExportID(),
		DocumentID: id,
		PageID:     page.ID,
		PageURL:    page.URL,
		ExportedAt: time.Now(),
	}

	return record, nil
}

// Close stops the pipeline from driving further state updates: in-flight
// fetches may still resolve but their results are discarded.
func (p *DocumentPipeline) Close() {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
}

func flightKey(key model.ArtifactKey) string {
	return string(key.DocumentID) + "/" + string(key.Kind)
}

func withKind(status prometheus.Labels, kind model.ArtifactKind) prometheus.Labels {
	labels := prometheus.Labels{metrics.LabelKind: string(kind)}
	for k, v := range status {
		labels[k] = v
	}

	return labels
}
