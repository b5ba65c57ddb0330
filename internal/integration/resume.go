package integration

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/memoir-notes/memoir/internal/core/model"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

// Flow completes a Notion account linkage after the consent redirect round
// trip. No in-memory state survives the redirect: the return URL's query
// parameters are the whole message.
type Flow struct {
	backend port.BackendClient
}

func NewFlow(backend port.BackendClient) *Flow {
	return &Flow{backend: backend}
}

type Result struct {
	Link *model.IntegrationLink

	// CleanURL is the return URL with marker parameters removed. Callers
	// must install it as the visible URL regardless of outcome.
	CleanURL *url.URL
}

// Resume processes the marker carried by the return URL once. The backend's
// completion endpoint is idempotent, so an accidental second processing of
// the same marker cannot corrupt the link status, but the stripped URL
// prevents that in normal operation. After completion the link status is
// re-read from the backend; the completion response is not trusted as the
// source of truth.
func (f *Flow) Resume(ctx context.Context, u *url.URL) (*Result, error) {
	marker := ParseMarker(u)

	result := &Result{
		CleanURL: StripMarker(u),
	}

	switch marker.Kind {
	case MarkerNone:
		return result, nil
	case MarkerError:
		return result, errors.Errorf("notion authorization failed: %s", marker.Reason)
	}

	if !f.backend.Authenticated() {
		return result, errors.Wrap(port.ErrSessionRequired, "sign in before connecting notion, then retry the connection")
	}

	if _, err := f.backend.CompleteNotionIntegration(ctx); err != nil {
		return result, errors.Wrap(err, "could not complete notion integration")
	}

	link, err := f.backend.NotionStatus(ctx)
	if err != nil {
		return result, errors.Wrap(err, "could not re-read notion status")
	}

	slog.DebugContext(ctx, "notion integration completed",
		slog.Bool("connected", link.Connected),
		slog.String("workspace", link.WorkspaceName),
	)

	result.Link = link

	return result, nil
}
