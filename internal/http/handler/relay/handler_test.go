package relay

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/memoir-notes/memoir/internal/markdown"
	"github.com/pkg/errors"
)

type countingConverter struct {
	inner        port.Converter
	convertCount atomic.Int64
}

func (c *countingConverter) Convert(ctx context.Context, source string) (*port.ConversionResult, error) {
	c.convertCount.Add(1)

	return c.inner.Convert(ctx, source)
}

type recordingClient struct {
	mutex sync.Mutex

	createdInDatabase string
	appendedToPage    string

	workspace *port.NotionWorkspace
	pageErr   error
}

func (c *recordingClient) CreatePage(ctx context.Context, databaseID string, title string, properties notionapi.Properties, children notionapi.Blocks) (*port.NotionPage, error) {
	c.mutex.Lock()
	c.createdInDatabase = databaseID
	c.mutex.Unlock()

	return &port.NotionPage{ID: "page-1", URL: "https://notion.so/page-1"}, nil
}

func (c *recordingClient) AppendBlocks(ctx context.Context, pageID string, children notionapi.Blocks) (*port.NotionPage, error) {
	c.mutex.Lock()
	c.appendedToPage = pageID
	c.mutex.Unlock()

	return &port.NotionPage{ID: pageID, URL: "https://notion.so/" + pageID}, nil
}

func (c *recordingClient) GetPage(ctx context.Context, pageID string) (*port.NotionPageContent, error) {
	if c.pageErr != nil {
		return nil, errors.WithStack(c.pageErr)
	}

	return &port.NotionPageContent{
		Page: port.NotionPage{ID: pageID, Title: "Untitled", URL: "https://notion.so/" + pageID},
	}, nil
}

func (c *recordingClient) SearchWorkspace(ctx context.Context) (*port.NotionWorkspace, error) {
	if c.workspace == nil {
		return &port.NotionWorkspace{}, nil
	}

	return c.workspace, nil
}

type recordingFactory struct {
	mutex       sync.Mutex
	credentials []string
	client      *recordingClient
}

func (f *recordingFactory) Client(credential string) port.NotionClient {
	f.mutex.Lock()
	f.credentials = append(f.credentials, credential)
	f.mutex.Unlock()

	return f.client
}

func newTestHandler(funcs ...HandlerOptionFunc) (*Handler, *countingConverter, *recordingFactory) {
	converter := &countingConverter{inner: markdown.NewConverter()}
	factory := &recordingFactory{client: &recordingClient{}}

	return NewHandler(converter, factory, funcs...), converter, factory
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return body
}

func TestConvertMarkdown(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/convert", strings.NewReader(`{"markdown": "# Hello"}`))
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 200, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d' (%s)", e, g, res.Body.String())
	}

	body := decodeBody(t, res)

	if e, g := true, body["success"]; e != g {
		t.Errorf("body[\"success\"]: expected '%v', got '%v'", e, g)
	}

	data := body["data"].(map[string]any)
	blocks := data["blocks"].([]any)

	if len(blocks) == 0 {
		t.Fatal("expected at least one block")
	}

	first := blocks[0].(map[string]any)

	if e, g := "heading_1", first["type"]; e != g {
		t.Errorf("first block type: expected '%v', got '%v'", e, g)
	}

	if e, g := "# Hello", data["originalContent"]; e != g {
		t.Errorf("data[\"originalContent\"]: expected '%v', got '%v'", e, g)
	}
}

func TestConvertRequiresContent(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/convert", strings.NewReader(`{}`))
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 400, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d'", e, g)
	}

	body := decodeBody(t, res)

	if e, g := "Either markdown or text field is required", body["error"]; e != g {
		t.Errorf("body[\"error\"]: expected '%v', got '%v'", e, g)
	}
}

func TestCredentialPrecedence(t *testing.T) {
	type testCase struct {
		Name     string
		Header   string
		Body     string
		Query    string
		Expected string
	}

	testCases := []testCase{
		{
			Name:     "header beats body and query",
			Header:   "Bearer header-key",
			Body:     "body-key",
			Query:    "query-key",
			Expected: "header-key",
		},
		{
			Name:     "raw header accepted",
			Header:   "header-key",
			Expected: "header-key",
		},
		{
			Name:     "body beats query",
			Body:     "body-key",
			Query:    "query-key",
			Expected: "body-key",
		},
		{
			Name:     "query as last resort",
			Query:    "query-key",
			Expected: "query-key",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			handler, _, factory := newTestHandler()

			payload := map[string]string{"markdown": "# Hello", "databaseId": "db-1"}
			if tc.Body != "" {
				payload["apiKey"] = tc.Body
			}

			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			target := "/convert-and-send"
			if tc.Query != "" {
				target += "?apiKey=" + tc.Query
			}

			req := httptest.NewRequest("POST", target, strings.NewReader(string(data)))
			if tc.Header != "" {
				req.Header.Set("Authorization", tc.Header)
			}

			res := httptest.NewRecorder()

			handler.ServeHTTP(res, req)

			if e, g := 200, res.Code; e != g {
				t.Fatalf("res.Code: expected '%d', got '%d' (%s)", e, g, res.Body.String())
			}

			if e, g := 1, len(factory.credentials); e != g {
				t.Fatalf("len(factory.credentials): expected '%d', got '%d'", e, g)
			}

			if e, g := tc.Expected, factory.credentials[0]; e != g {
				t.Errorf("factory.credentials[0]: expected '%s', got '%s'", e, g)
			}
		})
	}
}

func TestConvertAndSendWithoutCredential(t *testing.T) {
	handler, converter, factory := newTestHandler()

	req := httptest.NewRequest("POST", "/convert-and-send", strings.NewReader(`{"markdown": "# Hello", "databaseId": "db-1"}`))
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 401, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d'", e, g)
	}

	body := decodeBody(t, res)

	if body["help"] == nil {
		t.Error("expected a help message naming the Authorization header")
	}

	// Nothing upstream may be touched without a credential.
	if e, g := int64(0), converter.convertCount.Load(); e != g {
		t.Errorf("converter.convertCount: expected '%d', got '%d'", e, g)
	}

	if e, g := 0, len(factory.credentials); e != g {
		t.Errorf("len(factory.credentials): expected '%d', got '%d'", e, g)
	}
}

func TestConvertAndSendDestinationPrecedence(t *testing.T) {
	handler, _, factory := newTestHandler(WithDefaultDatabaseID("default-db"))

	req := httptest.NewRequest("POST", "/convert-and-send", strings.NewReader(`{"markdown": "# Hello", "databaseId": "custom-db"}`))
	req.Header.Set("Authorization", "Bearer secret-key")

	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 200, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d' (%s)", e, g, res.Body.String())
	}

	if e, g := "custom-db", factory.client.createdInDatabase; e != g {
		t.Errorf("factory.client.createdInDatabase: expected '%s', got '%s'", e, g)
	}
}

func TestConvertAndSendDefaultDestination(t *testing.T) {
	handler, _, factory := newTestHandler(WithDefaultDatabaseID("default-db"))

	req := httptest.NewRequest("POST", "/convert-and-send", strings.NewReader(`{"markdown": "# Hello"}`))
	req.Header.Set("Authorization", "Bearer secret-key")

	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 200, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d' (%s)", e, g, res.Body.String())
	}

	if e, g := "default-db", factory.client.createdInDatabase; e != g {
		t.Errorf("factory.client.createdInDatabase: expected '%s', got '%s'", e, g)
	}
}

func TestConvertAndSendWithoutDestination(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/convert-and-send", strings.NewReader(`{"markdown": "# Hello"}`))
	req.Header.Set("Authorization", "Bearer secret-key")

	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 400, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d'", e, g)
	}

	body := decodeBody(t, res)

	if e, g := "No database ID provided and none configured", body["error"]; e != g {
		t.Errorf("body[\"error\"]: expected '%v', got '%v'", e, g)
	}
}

func TestConvertAndSendAppendsToPage(t *testing.T) {
	handler, _, factory := newTestHandler(WithDefaultDatabaseID("default-db"))

	req := httptest.NewRequest("POST", "/convert-and-send", strings.NewReader(`{"markdown": "# Hello", "pageId": "page-42"}`))
	req.Header.Set("Authorization", "Bearer secret-key")

	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 200, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d' (%s)", e, g, res.Body.String())
	}

	if e, g := "page-42", factory.client.appendedToPage; e != g {
		t.Errorf("factory.client.appendedToPage: expected '%s', got '%s'", e, g)
	}

	if e, g := "", factory.client.createdInDatabase; e != g {
		t.Errorf("factory.client.createdInDatabase: expected '%s', got '%s'", e, g)
	}
}

func TestSendRequiresConfiguration(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/send", strings.NewReader(`{"blocks": [{"type": "paragraph", "object": "block", "paragraph": {"rich_text": []}}]}`))
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 500, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d'", e, g)
	}

	body := decodeBody(t, res)

	if e, g := "Database ID not configured", body["error"]; e != g {
		t.Errorf("body[\"error\"]: expected '%v', got '%v'", e, g)
	}
}

func TestWorkspace(t *testing.T) {
	handler, _, factory := newTestHandler()

	created := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	factory.client.workspace = &port.NotionWorkspace{
		Pages: []port.NotionPage{
			{ID: "page-1", Title: "Untitled", URL: "https://notion.so/page-1", CreatedTime: created, LastEditedTime: created},
		},
		Databases: []port.NotionDatabase{
			{ID: "db-1", Title: "Tasks", URL: "https://notion.so/db-1", Properties: []string{"Name", "Status"}},
		},
	}

	req := httptest.NewRequest("GET", "/workspace?apiKey=secret-key", nil)
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 200, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d' (%s)", e, g, res.Body.String())
	}

	body := decodeBody(t, res)
	data := body["data"].(map[string]any)

	pages := data["pages"].([]any)
	if e, g := 1, len(pages); e != g {
		t.Fatalf("len(pages): expected '%d', got '%d'", e, g)
	}

	page := pages[0].(map[string]any)

	if e, g := "Untitled", page["title"]; e != g {
		t.Errorf("page[\"title\"]: expected '%v', got '%v'", e, g)
	}

	if page["created_time"] == nil {
		t.Error("expected a created_time field")
	}

	databases := data["databases"].([]any)
	database := databases[0].(map[string]any)

	if e, g := 2, len(database["properties"].([]any)); e != g {
		t.Errorf("len(database properties): expected '%d', got '%d'", e, g)
	}
}

func TestWorkspaceRequiresCredential(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := httptest.NewRequest("GET", "/workspace", nil)
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 401, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d'", e, g)
	}
}

func TestGetPageNotFound(t *testing.T) {
	handler, _, factory := newTestHandler()

	factory.client.pageErr = errors.Wrap(port.ErrNotFound, "page 'page-404' does not exist")

	req := httptest.NewRequest("GET", "/pages/page-404?apiKey=secret-key", nil)
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 404, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d'", e, g)
	}
}

func TestInfo(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := httptest.NewRequest("GET", "/", nil)
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	if e, g := 200, res.Code; e != g {
		t.Fatalf("res.Code: expected '%d', got '%d'", e, g)
	}

	body := decodeBody(t, res)

	if body["endpoints"] == nil {
		t.Error("expected an endpoints listing")
	}
}
