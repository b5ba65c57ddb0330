package config

import "time"

// Backend points at the owning Memoir backend, the service that stores
// uploaded documents and produces their OCR and summary artifacts.
type Backend struct {
	BaseURL string        `env:"BASE_URL,expand" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"TIMEOUT,expand" envDefault:"30s"`
}
