package relay

import (
	"log/slog"
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/memoir-notes/memoir/internal/metrics"
	"github.com/pkg/errors"
)

type SendRequest struct {
	Blocks   notionapi.Blocks     `json:"blocks"`
	RichText []notionapi.RichText `json:"richText"`
	Title    string               `json:"title"`
}

type SendResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    SendData `json:"data"`
}

type SendData struct {
	PageID string `json:"pageId"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// handleSend creates a page in the operator-owned default database from
// pre-converted blocks. It is meant for the operator's own testing, not for
// arbitrary users: the destination and credential are server-configured.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SendRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(ctx, w, err, "Failed to send to Notion")
		return
	}

	if len(req.Blocks) == 0 && len(req.RichText) == 0 {
		writeError(ctx, w, errors.Wrap(port.ErrMissingField, "either blocks or richText is required"), "Either blocks or richText is required")
		return
	}

	if h.operatorKey == "" || h.defaultDatabaseID == "" {
		writeError(ctx, w, errors.Wrap(port.ErrNotConfigured, "operator API key and database ID must be configured"), "Database ID not configured")
		return
	}

	title := req.Title
	if title == "" {
		title = "API Test Document"
	}

	client := h.notion.Client(h.operatorKey)

	page, err := client.CreatePage(ctx, h.defaultDatabaseID, title, nil, req.Blocks)
	if err != nil {
		metrics.Exports.With(metrics.StatusFailed).Inc()
		writeError(ctx, w, err, "Failed to send to Notion")
		return
	}

	metrics.Exports.With(metrics.StatusSucceeded).Inc()

	writeJSON(ctx, w, http.StatusOK, SendResponse{
		Success: true,
		Message: "Successfully sent to your Notion!",
		Data: SendData{
			PageID: page.ID,
			URL:    page.URL,
			Title:  title,
		},
	})
}

type ConvertAndSendRequest struct {
	Markdown   string               `json:"markdown"`
	Text       string               `json:"text"`
	PageID     string               `json:"pageId"`
	DatabaseID string               `json:"databaseId"`
	Title      string               `json:"title"`
	Properties notionapi.Properties `json:"properties"`
	APIKey     string               `json:"apiKey"`
}

func (r ConvertAndSendRequest) content() string {
	if r.Markdown != "" {
		return r.Markdown
	}

	return r.Text
}

type ConvertAndSendResponse struct {
	Success bool               `json:"success"`
	Data    ConvertAndSendData `json:"data"`
}

type ConvertAndSendData struct {
	Blocks   notionapi.Blocks     `json:"blocks"`
	RichText []notionapi.RichText `json:"richText"`
	PageID   string               `json:"pageId"`
	URL      string               `json:"url"`
}

// handleConvertAndSend converts markdown and creates a page with the
// caller's own credential. Destination precedence is separate from
// credential precedence: explicit pageId or databaseId in the request, then
// the operator-configured default database, then a hard failure.
func (h *Handler) handleConvertAndSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ConvertAndSendRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(ctx, w, err, "Failed to convert and send to Notion")
		return
	}

	credential, err := resolveCredential(r, req.APIKey)
	if err != nil {
		writeError(ctx, w, err, "Failed to convert and send to Notion")
		return
	}

	content := req.content()
	if content == "" {
		writeError(ctx, w, errors.Wrap(port.ErrMissingField, "either markdown or text field is required"), "Either markdown or text field is required")
		return
	}

	databaseID := req.DatabaseID

	if req.PageID == "" && databaseID == "" {
		if h.defaultDatabaseID == "" {
			writeError(ctx, w, errors.Wrap(port.ErrMissingField, "no database ID provided and none configured"), "No database ID provided and none configured")
			return
		}

		databaseID = h.defaultDatabaseID

		// The fallback writes into a destination shared by every caller
		// omitting their own; keep a trace for tenant isolation audits.
		slog.WarnContext(ctx, "falling back to operator-configured destination", slog.String("databaseID", databaseID))
	}

	result, err := h.converter.Convert(ctx, content)
	if err != nil {
		writeError(ctx, w, err, "Failed to convert and send to Notion")
		return
	}

	metrics.Conversions.Inc()

	client := h.notion.Client(credential)

	var page *port.NotionPage

	if req.PageID != "" {
		page, err = client.AppendBlocks(ctx, req.PageID, result.Blocks)
	} else {
		page, err = client.CreatePage(ctx, databaseID, req.Title, req.Properties, result.Blocks)
	}
	if err != nil {
		metrics.Exports.With(metrics.StatusFailed).Inc()
		writeError(ctx, w, err, "Failed to convert and send to Notion")
		return
	}

	metrics.Exports.With(metrics.StatusSucceeded).Inc()

	writeJSON(ctx, w, http.StatusOK, ConvertAndSendResponse{
		Success: true,
		Data: ConvertAndSendData{
			Blocks:   result.Blocks,
			RichText: result.RichText,
			PageID:   page.ID,
			URL:      page.URL,
		},
	})
}
