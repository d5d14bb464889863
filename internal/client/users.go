package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/edusurvey/edusurvey/internal/models"
)

// ListUsers returns all registered users (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	var users []models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser deletes a user by ID (admin only)
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, true)
}

// ToggleAdmin flips the admin flag of a user and returns the new value (admin only)
func (c *Client) ToggleAdmin(ctx context.Context, id string) (bool, error) {
	var change models.RoleChange
	path := "/api/users/" + url.PathEscape(id) + "/toggle-admin"
	if err := c.do(ctx, http.MethodPut, path, nil, &change, true); err != nil {
		return false, err
	}
	return change.IsAdmin, nil
}
