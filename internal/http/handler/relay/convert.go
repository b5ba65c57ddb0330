package relay

import (
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/memoir-notes/memoir/internal/metrics"
	"github.com/pkg/errors"
)

type ConvertRequest struct {
	Markdown string `json:"markdown"`
	Text     string `json:"text"`
	APIKey   string `json:"apiKey"`
}

func (r ConvertRequest) content() string {
	if r.Markdown != "" {
		return r.Markdown
	}

	return r.Text
}

type ConvertResponse struct {
	Success bool        `json:"success"`
	Data    ConvertData `json:"data"`
}

type ConvertData struct {
	Blocks          notionapi.Blocks     `json:"blocks"`
	RichText        []notionapi.RichText `json:"richText"`
	OriginalContent string               `json:"originalContent"`
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ConvertRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(ctx, w, err, "Failed to convert content")
		return
	}

	content := req.content()
	if content == "" {
		writeError(ctx, w, errors.Wrap(port.ErrMissingField, "either markdown or text field is required"), "Either markdown or text field is required")
		return
	}

	result, err := h.converter.Convert(ctx, content)
	if err != nil {
		writeError(ctx, w, err, "Failed to convert content")
		return
	}

	metrics.Conversions.Inc()

	writeJSON(ctx, w, http.StatusOK, ConvertResponse{
		Success: true,
		Data: ConvertData{
			Blocks:          result.Blocks,
			RichText:        result.RichText,
			OriginalContent: content,
		},
	})
}
