package models

import (
	"encoding/json"
	"time"
)

// UserProfile is the resolved identity of the logged-in user as returned by
// the survey API. The API is Mongo-backed and may send the id as "_id".
type UserProfile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	IsAdmin       bool      `json:"isAdmin"`
	CreatedAt     time.Time `json:"createdAt"`
	Phone         string    `json:"phone,omitempty"`
	Notifications *bool     `json:"notifications,omitempty"`
}

func (p *UserProfile) UnmarshalJSON(data []byte) error {
	type alias UserProfile
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.MongoID
	}
	return nil
}

// NotificationsEnabled reports the notification preference, defaulting to on
// when the API never stored one.
func (p *UserProfile) NotificationsEnabled() bool {
	if p.Notifications == nil {
		return true
	}
	return *p.Notifications
}

// ProfileUpdate is a partial profile. Nil fields are left untouched by the API.
type ProfileUpdate struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
}

// PasswordChange is the body of a password update
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// RoleChange is returned by the toggle-admin endpoint
type RoleChange struct {
	IsAdmin bool `json:"isAdmin"`
}
