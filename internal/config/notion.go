package config

import "time"

type Notion struct {
	// APIKey is the operator's own integration token, used only by the
	// /send testing endpoint. Caller-facing endpoints always use the
	// credential resolved from the request.
	APIKey string `env:"API_KEY,expand"`

	// DatabaseID is the operator-configured default destination. Leave it
	// empty to force callers to always name their own destination.
	DatabaseID string `env:"DATABASE_ID,expand"`

	Timeout time.Duration `env:"TIMEOUT,expand" envDefault:"30s"`
}
