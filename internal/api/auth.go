package api

import (
	"context"
	"net/http"
)

// TokenPair is the access/refresh pair issued at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair. It deliberately skips
// the authenticated request path: there is no bearer token yet and a
// 401 here means bad credentials, not an expired session.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var pair TokenPair
	if err := c.bare().do(ctx, http.MethodPost, "/login/", body, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, &AuthError{Message: "login response missing tokens"}
	}
	return &pair, nil
}

// RefreshToken exchanges a refresh token for a new access token. Like
// Login it bypasses the authenticated path so a 401 cannot recurse
// into another refresh.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	body := map[string]string{"refresh": refresh}

	var resp struct {
		Access string `json:"access"`
	}
	if err := c.bare().do(ctx, http.MethodPost, "/token/refresh/", body, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", &AuthError{Message: "refresh response missing access token"}
	}
	return resp.Access, nil
}

// bare returns a copy of the client without a token source. Requests
// through it carry no bearer token and map 401 to AuthError without
// attempting a refresh.
func (c *Client) bare() *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		log:        c.log,
	}
}
