package relay

import (
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

type PageResponse struct {
	Success bool     `json:"success"`
	Data    PageData `json:"data"`
}

type PageData struct {
	Page   WorkspacePage    `json:"page"`
	Blocks notionapi.Blocks `json:"blocks"`
}

func (h *Handler) handleGetPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pageID := r.PathValue("pageID")
	if pageID == "" {
		writeError(ctx, w, errors.Wrap(port.ErrMissingField, "page ID is required"), "Page ID is required")
		return
	}

	credential, err := resolveCredential(r, "")
	if err != nil {
		writeError(ctx, w, err, "Failed to fetch page")
		return
	}

	client := h.notion.Client(credential)

	content, err := client.GetPage(ctx, pageID)
	if err != nil {
		writeError(ctx, w, err, "Failed to fetch page")
		return
	}

	writeJSON(ctx, w, http.StatusOK, PageResponse{
		Success: true,
		Data: PageData{
			Page: WorkspacePage{
				ID:             content.Page.ID,
				Title:          content.Page.Title,
				URL:            content.Page.URL,
				CreatedTime:    content.Page.CreatedTime,
				LastEditedTime: content.Page.LastEditedTime,
			},
			Blocks: content.Blocks,
		},
	})
}
