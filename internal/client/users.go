package client

import (
	"context"
	"net/http"

	"github.com/erazemk/toolshed/internal/model"
)

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id,omitempty"`
	Role        string `json:"role,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/auth/login",
		path:   "/auth/login",
		body:   loginRequest{Username: username, Password: password},
		out:    &resp,
	})
	return resp, err
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an account. An empty role registers a regular user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	return c.do(ctx, request{method: http.MethodPost, route: "/auth/register", path: "/auth/register", body: req})
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Profile returns user id's profile.
func (c *Client) Profile(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/users/profile/{id}",
		path:   idPath("/users/profile/%d", id),
		out:    &u,
	})
	return u, err
}

// UpdateProfile changes user id's profile.
func (c *Client) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (model.User, error) {
	var u model.User
	err := c.do(ctx, request{
		method: http.MethodPut,
		route:  "/users/profile/{id}",
		path:   idPath("/users/profile/%d", id),
		body:   upd,
		out:    &u,
	})
	return u, err
}

// UsageReport returns catalog and reservation totals (admin).
func (c *Client) UsageReport(ctx context.Context) (model.UsageReport, error) {
	var rep model.UsageReport
	err := c.do(ctx, request{method: http.MethodGet, route: "/report/usage", path: "/report/usage", out: &rep})
	return rep, err
}
