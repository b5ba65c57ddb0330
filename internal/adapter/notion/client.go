package notion

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

// Client wraps the Notion SDK behind [port.NotionClient]. A Client is bound
// to exactly one credential and lives for one request; use [Factory] to
// construct it inside the request handler's scope.
type Client struct {
	api *notionapi.Client
}

// CreatePage implements [port.NotionClient].
func (c *Client) CreatePage(ctx context.Context, databaseID string, title string, properties notionapi.Properties, children notionapi.Blocks) (*port.NotionPage, error) {
	if properties == nil {
		properties = notionapi.Properties{}
	}

	if _, hasName := properties["Name"]; !hasName {
		if _, hasTitle := properties["Title"]; !hasTitle && title != "" {
			properties["Name"] = notionapi.TitleProperty{
				Title: []notionapi.RichText{
					{
						Type: notionapi.ObjectTypeText,
						Text: &notionapi.Text{Content: title},
					},
				},
			}
		}
	}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
		Children:   children,
	})
	if err != nil {
		return nil, errors.WithStack(mapError(ctx, err))
	}

	return &port.NotionPage{
		ID:             string(page.ID),
		Title:          title,
		URL:            pageURL(string(page.ID), page.URL),
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
	}, nil
}

// AppendBlocks implements [port.NotionClient].
func (c *Client) AppendBlocks(ctx context.Context, pageID string, children notionapi.Blocks) (*port.NotionPage, error) {
	if _, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: children,
	}); err != nil {
		return nil, errors.WithStack(mapError(ctx, err))
	}

	return &port.NotionPage{
		ID:  pageID,
		URL: pageURL(pageID, ""),
	}, nil
}

// GetPage implements [port.NotionClient].
func (c *Client) GetPage(ctx context.Context, pageID string) (*port.NotionPageContent, error) {
	page, err := c.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, errors.WithStack(mapError(ctx, err))
	}

	children, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(pageID), &notionapi.Pagination{
		PageSize: 100,
	})
	if err != nil {
		return nil, errors.WithStack(mapError(ctx, err))
	}

	return &port.NotionPageContent{
		Page:   normalizePage(page),
		Blocks: children.Results,
	}, nil
}

// SearchWorkspace implements [port.NotionClient].
func (c *Client) SearchWorkspace(ctx context.Context) (*port.NotionWorkspace, error) {
	pages, err := c.api.Search.Do(ctx, &notionapi.SearchRequest{
		Filter: notionapi.SearchFilter{
			Value:    "page",
			Property: "object",
		},
		PageSize: 20,
	})
	if err != nil {
		return nil, errors.WithStack(mapError(ctx, err))
	}

	databases, err := c.api.Search.Do(ctx, &notionapi.SearchRequest{
		Filter: notionapi.SearchFilter{
			Value:    "database",
			Property: "object",
		},
		PageSize: 20,
	})
	if err != nil {
		return nil, errors.WithStack(mapError(ctx, err))
	}

	workspace := &port.NotionWorkspace{
		Pages:     make([]port.NotionPage, 0, len(pages.Results)),
		Databases: make([]port.NotionDatabase, 0, len(databases.Results)),
	}

	for _, result := range pages.Results {
		if page, ok := result.(*notionapi.Page); ok {
			workspace.Pages = append(workspace.Pages, normalizePage(page))
		}
	}

	for _, result := range databases.Results {
		if database, ok := result.(*notionapi.Database); ok {
			workspace.Databases = append(workspace.Databases, normalizeDatabase(database))
		}
	}

	return workspace, nil
}

var _ port.NotionClient = &Client{}

// Factory builds one ephemeral client per credential. It intentionally has
// no cache: reusing a client across requests would leak one user's
// credential into another's request.
type Factory struct {
	httpClient *http.Client
}

func NewFactory(timeout time.Duration) *Factory {
	return &Factory{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Client implements [port.NotionFactory].
func (f *Factory) Client(credential string) port.NotionClient {
	credential = strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))

	return &Client{
		api: notionapi.NewClient(notionapi.Token(credential), notionapi.WithHTTPClient(f.httpClient)),
	}
}

var _ port.NotionFactory = &Factory{}

func mapError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(port.ErrUpstreamTimeout, err.Error())
	}

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return errors.Wrap(port.ErrUpstreamFailure, apiErr.Message)
	}

	return errors.Wrap(port.ErrUpstreamFailure, err.Error())
}

func pageURL(id string, url string) string {
	if url != "" {
		return url
	}

	return "https://notion.so/" + strings.ReplaceAll(id, "-", "")
}
