package client

import (
	"net/http"
	"net/url"
)

// Client drives the relay API. The API key, when set, is forwarded as a
// bearer credential on every request.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
}

func New(funcs ...OptionFunc) *Client {
	opts := NewOptions(funcs...)
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		apiKey:     opts.APIKey,
	}
}
