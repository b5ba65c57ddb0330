package relay

import (
	"net/http"
	"time"
)

type WorkspaceResponse struct {
	Success bool          `json:"success"`
	Data    WorkspaceData `json:"data"`
}

type WorkspaceData struct {
	Pages     []WorkspacePage     `json:"pages"`
	Databases []WorkspaceDatabase `json:"databases"`
}

type WorkspacePage struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`
}

type WorkspaceDatabase struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`
	Properties     []string  `json:"properties"`
}

func (h *Handler) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credential, err := resolveCredential(r, "")
	if err != nil {
		writeError(ctx, w, err, "Failed to fetch workspace info")
		return
	}

	client := h.notion.Client(credential)

	workspace, err := client.SearchWorkspace(ctx)
	if err != nil {
		writeError(ctx, w, err, "Failed to fetch workspace info")
		return
	}

	data := WorkspaceData{
		Pages:     make([]WorkspacePage, 0, len(workspace.Pages)),
		Databases: make([]WorkspaceDatabase, 0, len(workspace.Databases)),
	}

	for _, p := range workspace.Pages {
		data.Pages = append(data.Pages, WorkspacePage{
			ID:             p.ID,
			Title:          p.Title,
			URL:            p.URL,
			CreatedTime:    p.CreatedTime,
			LastEditedTime: p.LastEditedTime,
		})
	}

	for _, d := range workspace.Databases {
		data.Databases = append(data.Databases, WorkspaceDatabase{
			ID:             d.ID,
			Title:          d.Title,
			URL:            d.URL,
			CreatedTime:    d.CreatedTime,
			LastEditedTime: d.LastEditedTime,
			Properties:     d.Properties,
		})
	}

	writeJSON(ctx, w, http.StatusOK, WorkspaceResponse{
		Success: true,
		Data:    data,
	})
}
