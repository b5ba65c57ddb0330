package port

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
)

type NotionPage struct {
	ID             string
	Title          string
	URL            string
	CreatedTime    time.Time
	LastEditedTime time.Time
}

type NotionDatabase struct {
	ID             string
	Title          string
	URL            string
	CreatedTime    time.Time
	LastEditedTime time.Time
	Properties     []string
}

type NotionWorkspace struct {
	Pages     []NotionPage
	Databases []NotionDatabase
}

type NotionPageContent struct {
	Page   NotionPage
	Blocks notionapi.Blocks
}

// NotionClient drives the target service with one caller's credential.
type NotionClient interface {
	CreatePage(ctx context.Context, databaseID string, title string, properties notionapi.Properties, children notionapi.Blocks) (*NotionPage, error)
	AppendBlocks(ctx context.Context, pageID string, children notionapi.Blocks) (*NotionPage, error)
	GetPage(ctx context.Context, pageID string) (*NotionPageContent, error)
	SearchWorkspace(ctx context.Context) (*NotionWorkspace, error)
}

// NotionFactory constructs an ephemeral client bound to a single request's
// credential. Implementations must never cache or reuse clients across
// credentials: that would leak one user's token into another's request.
type NotionFactory interface {
	Client(credential string) NotionClient
}

type NotionFactoryFunc func(credential string) NotionClient

func (f NotionFactoryFunc) Client(credential string) NotionClient {
	return f(credential)
}
