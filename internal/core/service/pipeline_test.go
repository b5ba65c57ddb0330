package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/model"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

type fakeBackend struct {
	port.BackendClient

	mutex     sync.Mutex
	documents []model.Document

	getCount        atomic.Int64
	regenerateCount atomic.Int64

	// gate, when set, blocks artifact fetches until released.
	gate chan struct{}

	getArtifact func(id model.DocumentID, kind model.ArtifactKind) (string, error)
}

func (b *fakeBackend) ListDocuments(ctx context.Context) ([]model.Document, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.documents, nil
}

func (b *fakeBackend) GetArtifact(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (string, error) {
	b.getCount.Add(1)

	if b.gate != nil {
		<-b.gate
	}

	if b.getArtifact != nil {
		return b.getArtifact(id, kind)
	}

	return "artifact for " + string(id), nil
}

func (b *fakeBackend) RegenerateArtifact(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (string, error) {
	b.regenerateCount.Add(1)

	return "regenerated artifact for " + string(id), nil
}

type fakeConverter struct {
	convertCount atomic.Int64
}

func (c *fakeConverter) Convert(ctx context.Context, markdown string) (*port.ConversionResult, error) {
	c.convertCount.Add(1)

	return &port.ConversionResult{
		Blocks: notionapi.Blocks{
			&notionapi.ParagraphBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeParagraph,
				},
			},
		},
	}, nil
}

type fakeNotionClient struct {
	credential string

	mutex sync.Mutex
	gate  chan struct{}

	createCount atomic.Int64
	appendCount atomic.Int64
}

func (c *fakeNotionClient) CreatePage(ctx context.Context, databaseID string, title string, properties notionapi.Properties, children notionapi.Blocks) (*port.NotionPage, error) {
	c.createCount.Add(1)

	if c.gate != nil {
		<-c.gate
	}

	return &port.NotionPage{ID: "page-1", URL: "https://notion.so/page-1"}, nil
}

func (c *fakeNotionClient) AppendBlocks(ctx context.Context, pageID string, children notionapi.Blocks) (*port.NotionPage, error) {
	c.appendCount.Add(1)

	return &port.NotionPage{ID: pageID, URL: "https://notion.so/" + pageID}, nil
}

func (c *fakeNotionClient) GetPage(ctx context.Context, pageID string) (*port.NotionPageContent, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeNotionClient) SearchWorkspace(ctx context.Context) (*port.NotionWorkspace, error) {
	return nil, errors.New("not implemented")
}

type fakeNotionFactory struct {
	client *fakeNotionClient
}

func (f *fakeNotionFactory) Client(credential string) port.NotionClient {
	f.client.mutex.Lock()
	f.client.credential = credential
	f.client.mutex.Unlock()

	return f.client
}

func newTestPipeline(backend *fakeBackend) (*DocumentPipeline, *fakeConverter, *fakeNotionClient) {
	converter := &fakeConverter{}
	client := &fakeNotionClient{}

	pipeline := NewDocumentPipeline(backend, converter, &fakeNotionFactory{client: client})

	return pipeline, converter, client
}

func TestExpandCachesSummary(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{}
	pipeline, _, _ := newTestPipeline(backend)
	defer pipeline.Close()

	artifact, err := pipeline.Expand(ctx, "doc-1")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := model.ArtifactStatusReady, artifact.Status; e != g {
		t.Errorf("artifact.Status: expected '%s', got '%s'", e, g)
	}

	if e, g := "artifact for doc-1", artifact.Text; e != g {
		t.Errorf("artifact.Text: expected '%s', got '%s'", e, g)
	}

	pipeline.Collapse("doc-1")

	if e, g := false, pipeline.Expanded("doc-1"); e != g {
		t.Errorf("pipeline.Expanded(\"doc-1\"): expected '%v', got '%v'", e, g)
	}

	if _, err := pipeline.Expand(ctx, "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(1), backend.getCount.Load(); e != g {
		t.Errorf("backend.getCount: expected '%d', got '%d'", e, g)
	}
}

func TestConcurrentExpandSharesFetch(t *testing.T) {
	ctx := context.Background()

	gate := make(chan struct{})
	backend := &fakeBackend{gate: gate}
	pipeline, _, _ := newTestPipeline(backend)
	defer pipeline.Close()

	var wg sync.WaitGroup

	results := make([]model.Artifact, 2)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			artifact, err := pipeline.Expand(ctx, "doc-1")
			if err != nil {
				t.Errorf("%+v", errors.WithStack(err))
				return
			}

			results[i] = artifact
		}(i)
	}

	// Let both expansions reach the in-flight fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gate)

	wg.Wait()

	if e, g := int64(1), backend.getCount.Load(); e != g {
		t.Errorf("backend.getCount: expected '%d', got '%d'", e, g)
	}

	for i, artifact := range results {
		if e, g := "artifact for doc-1", artifact.Text; e != g {
			t.Errorf("results[%d].Text: expected '%s', got '%s'", i, e, g)
		}
	}
}

func TestFailedFetchIsCached(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{
		getArtifact: func(id model.DocumentID, kind model.ArtifactKind) (string, error) {
			return "", errors.New("summary generation failed")
		},
	}

	pipeline, _, _ := newTestPipeline(backend)
	defer pipeline.Close()

	artifact, err := pipeline.Expand(ctx, "doc-1")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := model.ArtifactStatusFailed, artifact.Status; e != g {
		t.Errorf("artifact.Status: expected '%s', got '%s'", e, g)
	}

	if artifact.Reason == "" {
		t.Error("artifact.Reason: expected a failure reason")
	}

	// A failed artifact is a cached placeholder: re-expanding must not
	// hammer the backend.
	if _, err := pipeline.Expand(ctx, "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(1), backend.getCount.Load(); e != g {
		t.Errorf("backend.getCount: expected '%d', got '%d'", e, g)
	}
}

func TestRegenerateOverwrites(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{}
	pipeline, _, _ := newTestPipeline(backend)
	defer pipeline.Close()

	if _, err := pipeline.Expand(ctx, "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	artifact, err := pipeline.Regenerate(ctx, "doc-1", model.ArtifactKindSummary)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "regenerated artifact for doc-1", artifact.Text; e != g {
		t.Errorf("artifact.Text: expected '%s', got '%s'", e, g)
	}

	if e, g := int64(1), backend.regenerateCount.Load(); e != g {
		t.Errorf("backend.regenerateCount: expected '%d', got '%d'", e, g)
	}

	cached := pipeline.Artifact("doc-1", model.ArtifactKindSummary)

	if e, g := "regenerated artifact for doc-1", cached.Text; e != g {
		t.Errorf("cached.Text: expected '%s', got '%s'", e, g)
	}
}

func TestExportRequiresReadySummary(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{}
	pipeline, converter, _ := newTestPipeline(backend)
	defer pipeline.Close()

	_, err := pipeline.Export(ctx, "doc-1", "secret-key", ExportDestination{DatabaseID: "db-1"})
	if err == nil {
		t.Fatal("expected an error")
	}

	if !errors.Is(err, port.ErrSummaryNotReady) {
		t.Errorf("expected port.ErrSummaryNotReady, got '%+v'", err)
	}

	if e, g := int64(0), converter.convertCount.Load(); e != g {
		t.Errorf("converter.convertCount: expected '%d', got '%d'", e, g)
	}
}

func TestExportRequiresCredential(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{}
	pipeline, _, _ := newTestPipeline(backend)
	defer pipeline.Close()

	_, err := pipeline.Export(ctx, "doc-1", "", ExportDestination{DatabaseID: "db-1"})
	if err == nil {
		t.Fatal("expected an error")
	}

	if !errors.Is(err, port.ErrAuthRequired) {
		t.Errorf("expected port.ErrAuthRequired, got '%+v'", err)
	}
}

func TestExportRejectsConcurrentAttempt(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{}
	pipeline, _, client := newTestPipeline(backend)
	defer pipeline.Close()

	if _, err := pipeline.Expand(ctx, "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	gate := make(chan struct{})
	client.gate = gate

	firstDone := make(chan error, 1)

	go func() {
		_, err := pipeline.Export(ctx, "doc-1", "secret-key", ExportDestination{DatabaseID: "db-1"})
		firstDone <- err
	}()

	// Wait for the first export to reach the upstream call.
	for client.createCount.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := pipeline.Export(ctx, "doc-1", "secret-key", ExportDestination{DatabaseID: "db-1"})
	if !errors.Is(err, port.ErrExportInFlight) {
		t.Errorf("expected port.ErrExportInFlight, got '%+v'", err)
	}

	close(gate)

	if err := <-firstDone; err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	// A deliberate sequential re-export is allowed.
	if _, err := pipeline.Export(ctx, "doc-1", "secret-key", ExportDestination{DatabaseID: "db-1"}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(2), client.createCount.Load(); e != g {
		t.Errorf("client.createCount: expected '%d', got '%d'", e, g)
	}
}

func TestExportRequiresDestination(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{}
	pipeline, _, _ := newTestPipeline(backend)
	defer pipeline.Close()

	if _, err := pipeline.Expand(ctx, "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	_, err := pipeline.Export(ctx, "doc-1", "secret-key", ExportDestination{})
	if !errors.Is(err, port.ErrMissingField) {
		t.Errorf("expected port.ErrMissingField, got '%+v'", err)
	}
}

func TestFilter(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{
		documents: []model.Document{
			{ID: "doc-1", Name: "Meeting Notes", FileName: "meeting.pdf"},
			{ID: "doc-2", Name: "Invoice", FileName: "uploads/invoice-march.pdf"},
			{ID: "doc-3", Name: "Recipe", FileName: "recipe.jpg"},
		},
	}

	pipeline, _, _ := newTestPipeline(backend)
	defer pipeline.Close()

	if _, err := pipeline.LoadDocuments(ctx); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 3, len(pipeline.Filter("")); e != g {
		t.Errorf("len(pipeline.Filter(\"\")): expected '%d', got '%d'", e, g)
	}

	if e, g := 1, len(pipeline.Filter("MEETING")); e != g {
		t.Errorf("len(pipeline.Filter(\"MEETING\")): expected '%d', got '%d'", e, g)
	}

	// Matches the derived file name, not only the display name.
	if e, g := 1, len(pipeline.Filter("march")); e != g {
		t.Errorf("len(pipeline.Filter(\"march\")): expected '%d', got '%d'", e, g)
	}

	if e, g := 0, len(pipeline.Filter("unknown")); e != g {
		t.Errorf("len(pipeline.Filter(\"unknown\")): expected '%d', got '%d'", e, g)
	}
}

func TestCloseDiscardsLateResults(t *testing.T) {
	ctx := context.Background()

	gate := make(chan struct{})
	backend := &fakeBackend{gate: gate}
	pipeline, _, _ := newTestPipeline(backend)

	done := make(chan struct{})

	go func() {
		defer close(done)
		if _, err := pipeline.Expand(ctx, "doc-1"); err != nil {
			t.Errorf("%+v", errors.WithStack(err))
		}
	}()

	for backend.getCount.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	pipeline.Close()
	close(gate)
	<-done

	artifact := pipeline.Artifact("doc-1", model.ArtifactKindSummary)

	if e, g := model.ArtifactStatusLoading, artifact.Status; e != g {
		t.Errorf("artifact.Status: expected '%s', got '%s'", e, g)
	}
}
