package relay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

const maxBodySize = 10 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Help    string `json:"help,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	if err := encoder.Encode(payload); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slog.Any("error", errors.WithStack(err)))
	}
}

// writeError maps error kinds to status codes and a structured body. Raw
// upstream bodies never reach the caller; only the message and typed
// details do.
func writeError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError
	res := errorResponse{
		Error:   message,
		Details: rootMessage(err),
	}

	switch {
	case errors.Is(err, port.ErrMissingField), errors.Is(err, port.ErrSummaryNotReady):
		status = http.StatusBadRequest
	case errors.Is(err, port.ErrAuthRequired):
		status = http.StatusUnauthorized
		res.Help = "Include your Notion API key in the Authorization header: Bearer YOUR_API_KEY"
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, port.ErrNotConfigured):
		status = http.StatusInternalServerError
	case errors.Is(err, port.ErrUpstreamTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, port.ErrUpstreamMalformed):
		status = http.StatusBadGateway
	case errors.Is(err, port.ErrUpstreamFailure):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, message, slog.Any("error", errors.WithStack(err)))
	} else {
		slog.DebugContext(ctx, message, slog.Any("error", errors.WithStack(err)))
	}

	writeJSON(ctx, w, status, res)
}

// rootMessage strips the stack-carrying wrappers down to the innermost
// human-readable message.
func rootMessage(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// readJSON decodes a size-bounded JSON body. An empty body is allowed so
// endpoints can fall back to query parameters.
func readJSON(w http.ResponseWriter, r *http.Request, payload any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return errors.Wrap(port.ErrMissingField, "request body must be valid JSON")
	}

	return nil
}
