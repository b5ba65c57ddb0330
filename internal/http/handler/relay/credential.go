package relay

import (
	"net/http"
	"strings"

	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

const credentialParam = "apiKey"

// resolveCredential extracts the caller's bearer credential by fixed
// precedence: Authorization header first, raw or Bearer-prefixed, then the
// apiKey body field, then the apiKey query parameter. First match wins;
// sources are never merged. The credential lives only as a local value and
// is never logged or stored.
func resolveCredential(r *http.Request, bodyCredential string) (string, error) {
	if authorization := r.Header.Get("Authorization"); authorization != "" {
		return strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer ")), nil
	}

	if bodyCredential != "" {
		return bodyCredential, nil
	}

	if credential := r.URL.Query().Get(credentialParam); credential != "" {
		return credential, nil
	}

	return "", errors.Wrap(port.ErrAuthRequired, `a Notion API key is required, include it in the "Authorization" header as "Bearer YOUR_API_KEY"`)
}
