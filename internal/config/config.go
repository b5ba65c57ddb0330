package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	Logger  Logger  `envPrefix:"LOGGER_"`
	HTTP    HTTP    `envPrefix:"HTTP_"`
	Backend Backend `envPrefix:"BACKEND_"`
	Notion  Notion  `envPrefix:"NOTION_"`
}

func Parse() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: "MEMOIR_",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &conf, nil
}
