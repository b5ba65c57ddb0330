package setup

import (
	"context"
	"net/url"

	"github.com/memoir-notes/memoir/internal/adapter/memoir"
	"github.com/memoir-notes/memoir/internal/config"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

var getBackendClientFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.BackendClient, error) {
	baseURL, err := url.Parse(conf.Backend.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse backend base url '%s'", conf.Backend.BaseURL)
	}

	client := memoir.New(
		memoir.WithBaseURL(baseURL),
		memoir.WithTimeout(conf.Backend.Timeout),
	)

	return client, nil
})
