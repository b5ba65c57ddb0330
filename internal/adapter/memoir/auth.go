package memoir

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login implements [port.BackendClient].
func (c *Client) Login(ctx context.Context, username string, password string) error {
	var res loginResponse

	err := c.jsonRequest(ctx, http.MethodPost, "/auth/token/login/", nil, loginRequest{
		Username: username,
		Password: password,
	}, &res)
	if err != nil {
		return errors.WithStack(err)
	}

	if res.AuthToken == "" {
		return errors.New("backend did not return a token")
	}

	c.setToken(res.AuthToken)

	return nil
}

// Logout implements [port.BackendClient]. The local session is dropped even
// when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.jsonRequest(ctx, http.MethodPost, "/auth/token/logout/", c.authHeader(), nil, nil)

	c.setToken("")

	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
