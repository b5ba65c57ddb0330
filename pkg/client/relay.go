package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/memoir-notes/memoir/internal/http/handler/relay"
	"github.com/pkg/errors"
)

// Convert turns markdown into Notion blocks and rich text without touching
// any workspace.
func (c *Client) Convert(ctx context.Context, markdown string) (*relay.ConvertData, error) {
	var res relay.ConvertResponse

	req := relay.ConvertRequest{Markdown: markdown}

	if err := c.jsonRequest(ctx, http.MethodPost, "/convert", req, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Data, nil
}

// Send pushes pre-converted blocks into the relay operator's database.
func (c *Client) Send(ctx context.Context, req relay.SendRequest) (*relay.SendData, error) {
	var res relay.SendResponse

	if err := c.jsonRequest(ctx, http.MethodPost, "/send", req, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Data, nil
}

// ConvertAndSend converts markdown and creates a page with the client's own
// API key.
func (c *Client) ConvertAndSend(ctx context.Context, req relay.ConvertAndSendRequest) (*relay.ConvertAndSendData, error) {
	var res relay.ConvertAndSendResponse

	if err := c.jsonRequest(ctx, http.MethodPost, "/convert-and-send", req, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Data, nil
}

// Workspace lists the pages and databases visible to the client's API key.
func (c *Client) Workspace(ctx context.Context) (*relay.WorkspaceData, error) {
	var res relay.WorkspaceResponse

	if err := c.jsonRequest(ctx, http.MethodGet, "/workspace", nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Data, nil
}

// Page retrieves a page and its child blocks.
func (c *Client) Page(ctx context.Context, pageID string) (*relay.PageData, error) {
	var res relay.PageResponse

	endpoint := fmt.Sprintf("/pages/%s", url.PathEscape(pageID))

	if err := c.jsonRequest(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Data, nil
}
