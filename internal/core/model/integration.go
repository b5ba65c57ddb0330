package model

// IntegrationLink describes whether the current user's account is linked
// to a Notion workspace. The owning backend is the only writer; this
// module reads the status and posts the completion call.
type IntegrationLink struct {
	Connected     bool
	WorkspaceName string
}
