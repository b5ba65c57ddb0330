package relay

import (
	"net/http"

	"github.com/memoir-notes/memoir/internal/core/port"
)

// Handler exposes the credential relay: stateless endpoints that drive the
// target service with the caller's own credential. Nothing is persisted
// between requests.
type Handler struct {
	converter port.Converter
	notion    port.NotionFactory

	// operatorKey and defaultDatabaseID back the operator's own testing
	// endpoint and the convert-and-send destination fallback.
	operatorKey       string
	defaultDatabaseID string

	mux *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(converter port.Converter, notion port.NotionFactory, funcs ...HandlerOptionFunc) *Handler {
	opts := NewHandlerOptions(funcs...)

	h := &Handler{
		converter:         converter,
		notion:            notion,
		operatorKey:       opts.OperatorKey,
		defaultDatabaseID: opts.DefaultDatabaseID,
		mux:               &http.ServeMux{},
	}

	h.mux.Handle("GET /{$}", http.HandlerFunc(h.handleInfo))
	h.mux.Handle("POST /convert", http.HandlerFunc(h.handleConvert))
	h.mux.Handle("POST /send", http.HandlerFunc(h.handleSend))
	h.mux.Handle("POST /convert-and-send", http.HandlerFunc(h.handleConvertAndSend))
	h.mux.Handle("GET /workspace", http.HandlerFunc(h.handleWorkspace))
	h.mux.Handle("GET /pages/{pageID}", http.HandlerFunc(h.handleGetPage))

	return h
}

var _ http.Handler = &Handler{}

type HandlerOptions struct {
	OperatorKey       string
	DefaultDatabaseID string
}

type HandlerOptionFunc func(opts *HandlerOptions)

func NewHandlerOptions(funcs ...HandlerOptionFunc) *HandlerOptions {
	opts := &HandlerOptions{}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func WithOperatorKey(key string) HandlerOptionFunc {
	return func(opts *HandlerOptions) {
		opts.OperatorKey = key
	}
}

func WithDefaultDatabaseID(id string) HandlerOptionFunc {
	return func(opts *HandlerOptions) {
		opts.DefaultDatabaseID = id
	}
}

type infoResponse struct {
	Message     string            `json:"message"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
	Usage       map[string]string `json:"usage"`
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, infoResponse{
		Message:     "Memoir Notion relay",
		Description: "Convert markdown to Notion blocks and send them to any Notion workspace",
		Endpoints: map[string]string{
			"POST /convert":          "Convert markdown to Notion blocks and rich text",
			"POST /send":             "Send pre-converted blocks to the operator's database",
			"POST /convert-and-send": "Convert and send in one step (requires your API key)",
			"GET /workspace":         "List pages and databases visible to your API key",
			"GET /pages/{id}":        "Retrieve a page and its blocks (requires your API key)",
		},
		Usage: map[string]string{
			"apiKey":         "Include your Notion API key in the Authorization header: Bearer YOUR_API_KEY",
			"gettingStarted": "Visit https://www.notion.so/my-integrations to create an integration",
		},
	})
}
