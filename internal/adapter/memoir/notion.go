package memoir

import (
	"context"
	"net/http"

	"github.com/memoir-notes/memoir/internal/core/model"
	"github.com/pkg/errors"
)

type notionStatusResponse struct {
	IsConnected   bool   `json:"is_connected"`
	WorkspaceName string `json:"workspace_name"`
}

func (r notionStatusResponse) toLink() *model.IntegrationLink {
	return &model.IntegrationLink{
		Connected:     r.IsConnected,
		WorkspaceName: r.WorkspaceName,
	}
}

// NotionStatus implements [port.BackendClient].
func (c *Client) NotionStatus(ctx context.Context) (*model.IntegrationLink, error) {
	var res notionStatusResponse

	if err := c.jsonRequest(ctx, http.MethodGet, "/api/notion/status/", c.authHeader(), nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return res.toLink(), nil
}

// CompleteNotionIntegration implements [port.BackendClient]. The backend
// call is idempotent: completing an already completed link reports the same
// connected state.
func (c *Client) CompleteNotionIntegration(ctx context.Context) (*model.IntegrationLink, error) {
	var res notionStatusResponse

	if err := c.jsonRequest(ctx, http.MethodPost, "/api/notion/complete/", c.authHeader(), nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return res.toLink(), nil
}

// DisconnectNotion implements [port.BackendClient].
func (c *Client) DisconnectNotion(ctx context.Context) error {
	if err := c.jsonRequest(ctx, http.MethodPost, "/api/notion/disconnect/", c.authHeader(), nil, nil); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
