package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/genzes/internal/backend"
	"github.com/dmitrijs2005/genzes/internal/client/client"
	"github.com/dmitrijs2005/genzes/internal/logging"
	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
	"github.com/dmitrijs2005/genzes/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.NewNop(), newStore(t), auth.NewJWT("secret"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.NewNop(), newStore(t), auth.NewJWT("secret"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

// startBufconn serves s in memory and returns a connected client.
func startBufconn(t *testing.T, s *GRPCServer) *client.GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	c, err := client.NewGRPCClient("passthrough:///bufnet", client.WithDialOptions(
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
	))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		<-done
	})
	return c
}

func TestEndToEnd_AuthAndQueries(t *testing.T) {
	s, _ := newServer(t)
	c := startBufconn(t, s)
	ctx := context.Background()

	var mu sync.Mutex
	var events []backend.AuthEvent
	sub := c.OnAuthStateChange(func(e backend.AuthEvent, _ *models.Session) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	defer sub.Unsubscribe()

	require.NoError(t, c.Ping(ctx))

	up, err := c.SignUp(ctx, backend.SignUpRequest{Email: "e2e@x.io", Password: "pw", Data: models.UserData{Username: "e2e"}})
	require.NoError(t, err)
	require.Nil(t, up.Error)
	require.NotNil(t, up.User)

	dup, err := c.SignUp(ctx, backend.SignUpRequest{Email: "e2e@x.io", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, dup.Error)
	assert.Equal(t, models.CodeUserExists, dup.Error.Code)

	in, err := c.SignInWithPassword(ctx, backend.Credentials{Email: "e2e@x.io", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, in.Session)
	assert.Equal(t, in.Session.AccessToken, c.AccessToken())

	sess, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess.Session)
	assert.Equal(t, up.User.ID, sess.Session.User.ID)

	res, err := query.From(c, query.TableProfiles).Update(query.Record{"bio": "remote bio"}).Eq("id", up.User.ID).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)

	one, err := query.From(c, query.TableProfiles).Select("id", "bio").Eq("username", "e2e").Single(ctx)
	require.NoError(t, err)
	require.Nil(t, one.Error)
	assert.Equal(t, "remote bio", one.Data["bio"])

	require.NoError(t, c.SignOut(ctx))
	assert.Empty(t, c.AccessToken())

	mu.Lock()
	assert.Equal(t, []backend.AuthEvent{backend.EventSignedIn, backend.EventSignedOut}, events)
	mu.Unlock()
}

func TestEndToEnd_ExpiredTokenSignsOut(t *testing.T) {
	past := time.Now().Add(-3 * time.Hour)
	s, _ := newServer(t, WithClock(func() time.Time { return past }))
	c := startBufconn(t, s)
	ctx := context.Background()

	_, err := c.SignUp(ctx, backend.SignUpRequest{Email: "old@x.io", Password: "pw"})
	require.NoError(t, err)
	_, err = c.SignInWithPassword(ctx, backend.Credentials{Email: "old@x.io", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, c.AccessToken())

	signedOut := make(chan struct{}, 1)
	sub := c.OnAuthStateChange(func(e backend.AuthEvent, _ *models.Session) {
		if e == backend.EventSignedOut {
			signedOut <- struct{}{}
		}
	})
	defer sub.Unsubscribe()

	_, err = c.GetSession(ctx)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
	assert.Empty(t, c.AccessToken())

	select {
	case <-signedOut:
	default:
		t.Fatal("SIGNED_OUT was not emitted")
	}
}

func TestEndToEnd_AvatarUploadNotConfigured(t *testing.T) {
	s, _ := newServer(t)
	c := startBufconn(t, s)
	ctx := context.Background()

	_, err := c.SignUp(ctx, backend.SignUpRequest{Email: "av@x.io", Password: "pw"})
	require.NoError(t, err)
	_, err = c.SignInWithPassword(ctx, backend.Credentials{Email: "av@x.io", Password: "pw"})
	require.NoError(t, err)

	_, err = c.CreateAvatarUpload(ctx, "me.png", "image/png")
	require.Error(t, err)
	assert.ErrorContains(t, err, "avatar uploads are not configured")
}
