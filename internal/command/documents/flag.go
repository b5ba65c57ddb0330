package documents

import (
	"net/url"

	"github.com/memoir-notes/memoir/internal/adapter/memoir"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	paramBackend  = "backend"
	paramUsername = "username"
	paramPassword = "password"
)

var (
	flagBackend = &cli.StringFlag{
		Name:    paramBackend,
		Aliases: []string{"b"},
		Value:   "http://localhost:8000",
		EnvVars: []string{"MEMOIR_CLI_BACKEND"},
		Usage:   "Memoir backend base url",
	}
	flagUsername = &cli.StringFlag{
		Name:    paramUsername,
		Aliases: []string{"u"},
		EnvVars: []string{"MEMOIR_CLI_USERNAME"},
		Usage:   "Backend account username",
	}
	flagPassword = &cli.StringFlag{
		Name:    paramPassword,
		Aliases: []string{"p"},
		EnvVars: []string{"MEMOIR_CLI_PASSWORD"},
		Usage:   "Backend account password",
	}
)

func withDocumentsFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		flagBackend,
		flagUsername,
		flagPassword,
	}, flags...)
}

// getBackendClient builds a backend client and signs in with the
// account flags. The session token stays inside the client.
func getBackendClient(ctx *cli.Context) (port.BackendClient, error) {
	rawBaseURL := ctx.String(paramBackend)

	baseURL, err := url.Parse(rawBaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse backend url '%s'", rawBaseURL)
	}

	backend := memoir.New(
		memoir.WithBaseURL(baseURL),
	)

	username := ctx.String(paramUsername)
	password := ctx.String(paramPassword)

	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	if err := backend.Login(ctx.Context, username, password); err != nil {
		return nil, errors.Wrap(err, "could not sign in to the backend")
	}

	return backend, nil
}
