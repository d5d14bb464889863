package client

import (
	"context"
	"net/http"

	"github.com/edusurvey/edusurvey/internal/models"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

// CurrentUser fetches the profile of the credential holder
func (c *Client) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates the user and returns a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a bearer token for it
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	req := RegisterRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile sends a partial profile and returns the stored result
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", update, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword changes the credential holder's password
func (c *Client) UpdatePassword(ctx context.Context, change models.PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/api/users/password", change, nil, true)
}
