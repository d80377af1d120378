// Package models defines the records persisted by the local store and
// exchanged with the remote backend. JSON names match the web client's
// storage layout.
package models

import (
	"strings"
	"time"
)

// User is the private credential record, keyed by email in storage.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	// Password holds the encoded password; it is cleared by Public.
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns a copy of u without the password.
func (u User) Public() User {
	u.Password = ""
	return u
}

// Profile is the public-facing user record. ID equals the owning User.ID.
type Profile struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	Bio        string     `json:"bio"`
	AvatarURL  *string    `json:"avatar_url"`
	Links      []string   `json:"links"`
	IsPrivate  bool       `json:"is_private"`
	IsDisabled bool       `json:"is_disabled"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// UserData carries the optional profile fields supplied at sign-up.
type UserData struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// UsernameFor returns d.Username, or the local part of email when empty.
func (d UserData) UsernameFor(email string) string {
	if d.Username != "" {
		return d.Username
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// ProfileUpdate is a shallow patch; nil fields are left untouched.
type ProfileUpdate struct {
	Username   *string   `json:"username,omitempty"`
	FullName   *string   `json:"full_name,omitempty"`
	Bio        *string   `json:"bio,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	Links      *[]string `json:"links,omitempty"`
	IsPrivate  *bool     `json:"is_private,omitempty"`
	IsDisabled *bool     `json:"is_disabled,omitempty"`
}

// Apply merges u into p and stamps UpdatedAt with now.
func (u ProfileUpdate) Apply(p *Profile, now time.Time) {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.AvatarURL != nil {
		p.AvatarURL = u.AvatarURL
	}
	if u.Links != nil {
		p.Links = *u.Links
	}
	if u.IsPrivate != nil {
		p.IsPrivate = *u.IsPrivate
	}
	if u.IsDisabled != nil {
		p.IsDisabled = *u.IsDisabled
	}
	p.UpdatedAt = &now
}

// Session is a time-bounded authorization record.
type Session struct {
	User        User     `json:"user"`
	Profile     *Profile `json:"profile"`
	AccessToken string   `json:"access_token"`
	// ExpiresAt is a Unix timestamp in milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

// Valid reports whether the session is still usable at now.
func (s Session) Valid(now time.Time) bool {
	return now.UnixMilli() < s.ExpiresAt
}

// Expiry returns ExpiresAt as a time.Time.
func (s Session) Expiry() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// Message is a direct message between two users.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Between reports whether m was exchanged between a and b in either direction.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// APIError is the error shape reported inside a response body, as opposed
// to a failed call. Code follows the remote backend's conventions.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Error codes shared by the local path and the wire protocol.
const (
	CodeNoRows            = "PGRST116"
	CodeUserExists        = "user_already_exists"
	CodeInvalidCredential = "invalid_credentials"
	CodeUserBanned        = "user_banned"
	CodeProfileNotFound   = "profile_not_found"
	CodeInvalidRequest    = "invalid_request"
	CodeNotAuthenticated  = "not_authenticated"
	CodeInternal          = "unexpected_failure"
)
