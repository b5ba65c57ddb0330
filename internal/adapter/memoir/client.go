package memoir

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

// Client talks to the owning Memoir backend: authentication, document
// storage and the OCR/summary engines all live there. The session token is
// held in memory only.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	tokenMutex sync.RWMutex
	token      string
}

func New(funcs ...OptionFunc) *Client {
	opts := NewOptions(funcs...)

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
	}
}

// Authenticated implements [port.BackendClient].
func (c *Client) Authenticated() bool {
	c.tokenMutex.RLock()
	defer c.tokenMutex.RUnlock()

	return c.token != ""
}

func (c *Client) setToken(token string) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	c.token = token
}

func (c *Client) authHeader() http.Header {
	header := http.Header{}

	c.tokenMutex.RLock()
	defer c.tokenMutex.RUnlock()

	if c.token != "" {
		header.Set("Authorization", "Token "+c.token)
	}

	return header
}

func (c *Client) request(ctx context.Context, method string, path string, header http.Header, body io.Reader, result io.Writer) error {
	endpoint := c.baseURL.JoinPath(path)

	slog.DebugContext(ctx, "new backend request",
		slog.String("method", method),
		slog.String("path", endpoint.Path),
		slog.String("host", endpoint.Host),
	)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return errors.WithStack(err)
	}

	if header != nil {
		for k, v := range header {
			req.Header[k] = v
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(mapTransportError(err))
	}

	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.WithStack(err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusBadRequest {
		return errors.WithStack(responseError(res.StatusCode, data))
	}

	if _, err := result.Write(data); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (c *Client) jsonRequest(ctx context.Context, method string, path string, header http.Header, body any, result any) error {
	var reader io.Reader

	if header == nil {
		header = http.Header{}
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.WithStack(err)
		}

		reader = bytes.NewReader(data)
		header.Set("Content-Type", "application/json")
	}

	var buff bytes.Buffer

	if err := c.request(ctx, method, path, header, reader, &buff); err != nil {
		return errors.WithStack(err)
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(buff.Bytes(), result); err != nil {
		if looksLikeHTML(buff.Bytes()) {
			return errors.Wrapf(port.ErrUpstreamMalformed, "received HTML where JSON was expected, check the backend route")
		}

		return errors.Wrap(port.ErrUpstreamMalformed, err.Error())
	}

	return nil
}

// responseError turns a non-2xx backend response into a typed error,
// distinguishing routing problems (HTML bodies) from data problems.
func responseError(status int, body []byte) error {
	if looksLikeHTML(body) {
		return errors.Wrapf(port.ErrUpstreamMalformed, "backend returned HTML with status %d, the endpoint probably does not exist", status)
	}

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return errors.Wrapf(port.ErrUpstreamFailure, "backend returned status %d: %s", status, payload.Detail)
		}

		if payload.Message != "" {
			return errors.Wrapf(port.ErrUpstreamFailure, "backend returned status %d: %s", status, payload.Message)
		}
	}

	if status == http.StatusNotFound {
		return errors.Wrapf(port.ErrNotFound, "backend returned status %d", status)
	}

	return errors.Wrapf(port.ErrUpstreamFailure, "backend returned status %d", status)
}

func mapTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return errors.Wrap(port.ErrUpstreamTimeout, err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(port.ErrUpstreamTimeout, err.Error())
	}

	return errors.Wrap(port.ErrUpstreamFailure, err.Error())
}

func looksLikeHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))

	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}

var _ port.BackendClient = &Client{}
