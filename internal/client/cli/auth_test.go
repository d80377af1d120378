package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/models"
)

// stubInputs answers getSimpleText prompts in order and getPassword with
// password. The returned func restores the real helpers.
func stubInputs(t *testing.T, password string, answers ...string) func() {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	return func() {
		getSimpleText = origST
		getPassword = origGP
	}
}

func TestRegister_Success(t *testing.T) {
	e := newTestEnv(t)
	defer stubInputs(t, "secret", "new@x.io", "newbie", "New Person")()

	require.NoError(t, e.app.Register(context.Background()))
	assert.Contains(t, e.out.String(), "Success!")

	profiles, err := e.store.SearchUsers(context.Background(), "newbie")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "New Person", profiles[0].FullName)

	_, _, err = e.store.Authenticate(context.Background(), "new@x.io", "secret")
	assert.NoError(t, err)
}

func TestRegister_DuplicateIsReported(t *testing.T) {
	e := newTestEnv(t)
	e.signUp(t, "dup@x.io", "dup")
	defer stubInputs(t, "pw", "dup@x.io", "", "")()

	err := e.app.Register(context.Background())
	assert.ErrorIs(t, err, common.ErrDuplicateUser)
}

func TestRegister_InputError(t *testing.T) {
	e := newTestEnv(t)
	defer stubInputs(t, "pw")()

	assert.ErrorIs(t, e.app.Register(context.Background()), io.EOF)
}

func TestLogin_SuccessAndWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.signUp(t, "a@x.io", "alice")

	e.login(t, "a@x.io")
	assert.Contains(t, e.out.String(), "Logged in as alice")

	e2 := newTestEnv(t)
	e2.signUp(t, "b@x.io", "bob")
	defer stubInputs(t, "wrong", "b@x.io")()
	err := e2.app.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.False(t, e2.app.isLoggedIn())
}

func TestLogin_PasswordError(t *testing.T) {
	e := newTestEnv(t)
	defer stubInputs(t, "", "a@x.io")()
	getPassword = func(io.Writer) ([]byte, error) { return nil, errors.New("no tty") }

	assert.EqualError(t, e.app.Login(context.Background()), "no tty")
}

func TestSession(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.app.Session(context.Background()))
	assert.Contains(t, e.out.String(), "No active session")

	e.signUp(t, "s@x.io", "sess")
	e.login(t, "s@x.io")
	e.out.Reset()

	require.NoError(t, e.app.Session(context.Background()))
	assert.Contains(t, e.out.String(), "User:    s@x.io")
	assert.Contains(t, e.out.String(), "Expires:")
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	e.signUp(t, "o@x.io", "out")
	e.login(t, "o@x.io")

	require.NoError(t, e.app.Logout(context.Background()))
	assert.False(t, e.app.isLoggedIn())

	s, err := e.store.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s, "stored session is removed")
}

func TestDisplayName(t *testing.T) {
	s := &models.Session{User: models.User{Email: "e@x.io"}}
	assert.Equal(t, "e@x.io", displayName(s))

	s.Profile = &models.Profile{Username: "eve"}
	assert.Equal(t, "eve", displayName(s))
}

func TestLogin_PasswordBufferIsNotModified(t *testing.T) {
	e := newTestEnv(t)
	e.signUp(t, "buf@x.io", "buf")

	typed := []byte("pw")
	defer stubInputs(t, "", "buf@x.io")()
	getPassword = func(io.Writer) ([]byte, error) { return typed, nil }

	require.NoError(t, e.app.Login(context.Background()))
	assert.Equal(t, []byte("pw"), typed, "the password is sent as a string, so the input buffer is left alone")
}
