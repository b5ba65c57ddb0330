package common

import (
	"net/url"

	"github.com/memoir-notes/memoir/pkg/client"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	paramServer = "server"
	paramAPIKey = "api-key"
)

var (
	flagServer = &cli.StringFlag{
		Name:    paramServer,
		Aliases: []string{"s"},
		Value:   "http://localhost:3000",
		EnvVars: []string{"MEMOIR_CLI_SERVER"},
		Usage:   "Relay server base url",
	}
	flagAPIKey = &cli.StringFlag{
		Name:    paramAPIKey,
		Aliases: []string{"k"},
		EnvVars: []string{"MEMOIR_CLI_API_KEY"},
		Usage:   "Notion API key forwarded as the bearer credential",
	}
)

func WithCommonFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		flagServer,
		flagAPIKey,
	}, flags...)
}

func GetRelayClient(ctx *cli.Context) (*client.Client, error) {
	rawServerURL := ctx.String(paramServer)

	serverURL, err := url.Parse(rawServerURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return client.New(
		client.WithBaseURL(serverURL),
		client.WithAPIKey(ctx.String(paramAPIKey)),
	), nil
}
