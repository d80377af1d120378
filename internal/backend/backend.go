// Package backend defines the call surface shared by the remote backend
// client, the local backend and the fallback client, so callers do not
// care which one served a request.
package backend

import (
	"context"

	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
)

// SignUpRequest mirrors auth.signUp({email, password, options: {data}}).
type SignUpRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Data     models.UserData `json:"data"`
}

// Credentials mirrors auth.signInWithPassword({email, password}).
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the normalized auth result. Error is set when the backend
// answered but refused the request.
type AuthResponse struct {
	User    *models.User     `json:"user"`
	Profile *models.Profile  `json:"profile,omitempty"`
	Session *models.Session  `json:"session"`
	Error   *models.APIError `json:"error,omitempty"`
}

// Err returns the first of err and resp.Error that is set.
func (r AuthResponse) Err(err error) error {
	if err != nil {
		return err
	}
	if r.Error != nil {
		return r.Error
	}
	return nil
}

// AuthEvent names a change of authentication state.
type AuthEvent string

const (
	EventSignedIn    AuthEvent = "SIGNED_IN"
	EventSignedOut   AuthEvent = "SIGNED_OUT"
	EventUserUpdated AuthEvent = "USER_UPDATED"
)

// AuthCallback receives auth events. s is nil after a sign-out.
type AuthCallback func(event AuthEvent, s *models.Session)

// Subscription cancels an OnAuthStateChange registration.
type Subscription interface {
	Unsubscribe()
}

// Backend is implemented by every data source.
//
// A non-nil error means the call itself failed (unreachable backend,
// transport error, local storage failure). A backend that answered with a
// refusal reports it in the response body instead.
type Backend interface {
	SignUp(ctx context.Context, req SignUpRequest) (AuthResponse, error)
	SignInWithPassword(ctx context.Context, c Credentials) (AuthResponse, error)
	GetSession(ctx context.Context) (AuthResponse, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(cb AuthCallback) Subscription
	query.Executor
}
