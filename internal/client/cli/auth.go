package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/genzes/internal/backend"
	"github.com/dmitrijs2005/genzes/internal/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var ErrNotLoggedIn = errors.New("not logged in, use 'login' first")

// Register prompts for an email, password and optional profile data and
// creates the account. The remote is tried first; if it cannot be reached
// the account is created locally.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	username, err := getSimpleText(a.reader, "Username (empty for the email prefix)", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}

	resp, err := a.data.SignUp(ctx, backend.SignUpRequest{
		Email:    email,
		Password: string(password),
		Data:     models.UserData{Username: username, FullName: fullName},
	})
	if err := resp.Err(err); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and signs in. The remote is tried first and
// the local store answers when it is unreachable.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	resp, err := a.data.SignInWithPassword(ctx, backend.Credentials{Email: email, Password: string(password)})
	if err := resp.Err(err); err != nil {
		return err
	}
	if resp.Session == nil {
		return errors.New("login returned no session")
	}

	a.setSession(resp.Session)
	fmt.Fprintf(a.out, "Logged in as %s\n", displayName(resp.Session))
	return nil
}

// Session prints the current session, asking the backend rather than
// trusting the cached copy so expiry is noticed.
func (a *App) Session(ctx context.Context) error {
	resp, err := a.data.GetSession(ctx)
	if err := resp.Err(err); err != nil {
		return err
	}
	if resp.Session == nil {
		a.setSession(nil)
		fmt.Fprintln(a.out, "No active session")
		return nil
	}

	a.setSession(resp.Session)
	s := resp.Session
	fmt.Fprintf(a.out, "User:    %s (%s)\n", s.User.Email, s.User.ID)
	fmt.Fprintf(a.out, "Expires: %s\n", s.Expiry().Format("2006-01-02 15:04:05"))
	return nil
}

// Logout ends the session on every backend.
func (a *App) Logout(ctx context.Context) error {
	if err := a.data.SignOut(ctx); err != nil {
		return err
	}
	a.setSession(nil)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func displayName(s *models.Session) string {
	if s.Profile != nil && s.Profile.Username != "" {
		return s.Profile.Username
	}
	return s.User.Email
}

// requireSession returns the current session or ErrNotLoggedIn.
func (a *App) requireSession() (*models.Session, error) {
	s := a.currentSession()
	if s == nil {
		return nil, ErrNotLoggedIn
	}
	return s, nil
}
