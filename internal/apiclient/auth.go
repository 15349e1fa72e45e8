package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"petlink/pkg/domain"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token. An empty token with a nil
// error means the server answered without one.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", payload, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string, role domain.UserRole) (domain.User, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"role":     string(role),
	}
	var user domain.User
	if err := c.doJSON(ctx, http.MethodPost, "/users/", "", payload, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetUser fetches a full profile.
func (c *Client) GetUser(ctx context.Context, token string, id int64) (domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), token, nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UserUpdate is a profile patch. Password is sent only when non-nil.
type UserUpdate struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
	Password *string         `json:"password,omitempty"`
}

// UpdateUser applies a profile patch.
func (c *Client) UpdateUser(ctx context.Context, token string, id int64, patch UserUpdate) (domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/users/%d", id), token, patch, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// DeleteUser removes the account after password confirmation. Callers
// inspect APIError.Status to tell 403 from 404.
func (c *Client) DeleteUser(ctx context.Context, token string, id int64, password string) error {
	payload := map[string]string{"password": password}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), token, payload, nil)
}
