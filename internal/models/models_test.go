package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserData_UsernameFor(t *testing.T) {
	assert.Equal(t, "demo_user", UserData{Username: "demo_user"}.UsernameFor("demo@example.com"))
	assert.Equal(t, "demo", UserData{}.UsernameFor("demo@example.com"))
	assert.Equal(t, "plain", UserData{}.UsernameFor("plain"))
}

func TestUser_PublicDropsPassword(t *testing.T) {
	u := User{ID: "user_1", Email: "a@b.c", Password: "ZGVtbzEyMw=="}
	pub := u.Public()

	assert.Empty(t, pub.Password)
	assert.Equal(t, "ZGVtbzEyMw==", u.Password, "original must be untouched")

	b, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
}

func TestProfileUpdate_ApplyIsShallow(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Profile{ID: "user_1", Username: "old", FullName: "Old Name", Bio: "bio", CreatedAt: created}

	bio := "new bio"
	disabled := true
	now := created.Add(time.Hour)
	ProfileUpdate{Bio: &bio, IsDisabled: &disabled}.Apply(p, now)

	assert.Equal(t, "old", p.Username)
	assert.Equal(t, "Old Name", p.FullName)
	assert.Equal(t, "new bio", p.Bio)
	assert.True(t, p.IsDisabled)
	require.NotNil(t, p.UpdatedAt)
	assert.Equal(t, now, *p.UpdatedAt)
	assert.Equal(t, created, p.CreatedAt)
}

func TestProfile_JSONShape(t *testing.T) {
	p := Profile{ID: "user_1", Username: "demo_user"}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Contains(t, m, "avatar_url")
	assert.Nil(t, m["avatar_url"])
	assert.Contains(t, m, "links")
	assert.Equal(t, false, m["is_disabled"])
	assert.NotContains(t, m, "updated_at")
}

func TestSession_Valid(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := Session{ExpiresAt: now.Add(time.Minute).UnixMilli()}

	assert.True(t, s.Valid(now))
	assert.False(t, s.Valid(now.Add(time.Minute)), "expiry instant itself is not valid")
	assert.False(t, s.Valid(now.Add(2*time.Minute)))
	assert.Equal(t, now.Add(time.Minute).UnixMilli(), s.Expiry().UnixMilli())
}

func TestMessage_Between(t *testing.T) {
	m := Message{SenderID: "a", ReceiverID: "b"}
	assert.True(t, m.Between("a", "b"))
	assert.True(t, m.Between("b", "a"))
	assert.False(t, m.Between("a", "c"))
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "PGRST116", (&APIError{Code: CodeNoRows}).Error())
	assert.Equal(t, "invalid_credentials: bad password", (&APIError{Code: CodeInvalidCredential, Message: "bad password"}).Error())
}
