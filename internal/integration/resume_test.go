package integration

import (
	"context"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/memoir-notes/memoir/internal/core/model"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

type fakeBackend struct {
	port.BackendClient

	authenticated bool
	connected     bool

	completeCount atomic.Int64
	statusCount   atomic.Int64
}

func (b *fakeBackend) Authenticated() bool {
	return b.authenticated
}

func (b *fakeBackend) CompleteNotionIntegration(ctx context.Context) (*model.IntegrationLink, error) {
	b.completeCount.Add(1)
	b.connected = true

	return &model.IntegrationLink{Connected: true, WorkspaceName: "Acme"}, nil
}

func (b *fakeBackend) NotionStatus(ctx context.Context) (*model.IntegrationLink, error) {
	b.statusCount.Add(1)

	return &model.IntegrationLink{Connected: b.connected, WorkspaceName: "Acme"}, nil
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return u
}

func TestResumeSuccessMarker(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{authenticated: true}
	flow := NewFlow(backend)

	u := mustParseURL(t, "https://app.example.net/documents?notion_success=true&tab=all")

	result, err := flow.Resume(ctx, u)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := true, result.Link.Connected; e != g {
		t.Errorf("result.Link.Connected: expected '%v', got '%v'", e, g)
	}

	if e, g := "Acme", result.Link.WorkspaceName; e != g {
		t.Errorf("result.Link.WorkspaceName: expected '%s', got '%s'", e, g)
	}

	if e, g := "https://app.example.net/documents?tab=all", result.CleanURL.String(); e != g {
		t.Errorf("result.CleanURL: expected '%s', got '%s'", e, g)
	}

	// The completion response is not the source of truth: the status must
	// have been re-read.
	if e, g := int64(1), backend.statusCount.Load(); e != g {
		t.Errorf("backend.statusCount: expected '%d', got '%d'", e, g)
	}
}

func TestResumeTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{authenticated: true}
	flow := NewFlow(backend)

	u := mustParseURL(t, "https://app.example.net/documents?notion_success=true")

	first, err := flow.Resume(ctx, u)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	second, err := flow.Resume(ctx, u)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := first.Link.Connected, second.Link.Connected; e != g {
		t.Errorf("second.Link.Connected: expected '%v', got '%v'", e, g)
	}

	// Resuming from the stripped URL is a no-op.
	third, err := flow.Resume(ctx, first.CleanURL)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if third.Link != nil {
		t.Errorf("third.Link: expected nil, got '%+v'", third.Link)
	}

	if e, g := int64(2), backend.completeCount.Load(); e != g {
		t.Errorf("backend.completeCount: expected '%d', got '%d'", e, g)
	}
}

func TestResumeErrorMarker(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{authenticated: true}
	flow := NewFlow(backend)

	u := mustParseURL(t, "https://app.example.net/documents?notion_error=access_denied")

	result, err := flow.Resume(ctx, u)
	if err == nil {
		t.Fatal("expected an error")
	}

	if e, g := "https://app.example.net/documents", result.CleanURL.String(); e != g {
		t.Errorf("result.CleanURL: expected '%s', got '%s'", e, g)
	}

	if e, g := int64(0), backend.completeCount.Load(); e != g {
		t.Errorf("backend.completeCount: expected '%d', got '%d'", e, g)
	}
}

func TestResumeWithoutSessionFailsClosed(t *testing.T) {
	ctx := context.Background()

	backend := &fakeBackend{authenticated: false}
	flow := NewFlow(backend)

	u := mustParseURL(t, "https://app.example.net/documents?notion_success=true")

	_, err := flow.Resume(ctx, u)
	if !errors.Is(err, port.ErrSessionRequired) {
		t.Errorf("expected port.ErrSessionRequired, got '%+v'", err)
	}

	if e, g := int64(0), backend.completeCount.Load(); e != g {
		t.Errorf("backend.completeCount: expected '%d', got '%d'", e, g)
	}
}

func TestStripMarkerPreservesOtherParams(t *testing.T) {
	u := mustParseURL(t, "https://app.example.net/documents?notion_success=true&notion_error=boom&page=2")

	stripped := StripMarker(u)

	if e, g := "page=2", stripped.RawQuery; e != g {
		t.Errorf("stripped.RawQuery: expected '%s', got '%s'", e, g)
	}

	// The input URL is untouched.
	if e, g := "true", u.Query().Get("notion_success"); e != g {
		t.Errorf("u.Query().Get(\"notion_success\"): expected '%s', got '%s'", e, g)
	}
}
