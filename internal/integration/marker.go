package integration

import "net/url"

const (
	paramSuccess = "notion_success"
	paramError   = "notion_error"
)

type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerSuccess
	MarkerError
)

// Marker is the one-shot message the authorization redirect leaves in the
// return URL: nothing, a success flag, or an error with a reason.
type Marker struct {
	Kind   MarkerKind
	Reason string
}

// ParseMarker reads the marker from the URL's query parameters. A success
// marker takes precedence when both are somehow present.
func ParseMarker(u *url.URL) Marker {
	query := u.Query()

	if query.Get(paramSuccess) != "" {
		return Marker{Kind: MarkerSuccess}
	}

	if reason := query.Get(paramError); reason != "" {
		return Marker{Kind: MarkerError, Reason: reason}
	}

	return Marker{Kind: MarkerNone}
}

// StripMarker returns a copy of the URL without marker parameters, so a
// manual refresh of the stripped URL cannot re-trigger the flow.
func StripMarker(u *url.URL) *url.URL {
	stripped := *u

	query := stripped.Query()
	query.Del(paramSuccess)
	query.Del(paramError)
	stripped.RawQuery = query.Encode()

	return &stripped
}
