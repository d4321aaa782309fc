package api

import (
	"context"
	"fmt"

	"github.com/theirongolddev/tally/internal/model"
)

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var tok model.AuthToken
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/api/auth/login", body, &tok); err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("api: login returned no access token")
	}
	return c.tokens.Set(tok.AccessToken)
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in model.RegisterInput) (*model.User, error) {
	var u model.User
	if err := c.post(ctx, "/api/auth/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout tells the server and always clears the local token, even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	callErr := c.post(ctx, "/api/auth/logout", nil, nil)
	if err := c.tokens.Clear(); err != nil {
		return err
	}
	if callErr != nil {
		c.log.Warn("logout request failed", "error", callErr)
	}
	return nil
}
