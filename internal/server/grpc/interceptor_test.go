package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/rpc"
	"github.com/dmitrijs2005/genzes/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func callInterceptor(t *testing.T, s *GRPCServer, ctx context.Context, method string) (context.Context, error) {
	t.Helper()
	var seen context.Context
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = ctx
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(method)}
	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	return seen, err
}

func TestInterceptor_NoToken_Anonymous(t *testing.T) {
	s, _ := newServer(t)

	ctx, err := callInterceptor(t, s, context.Background(), rpc.MethodExecute)
	require.NoError(t, err)
	require.NotNil(t, ctx, "handler was not called")
	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)
}

func TestInterceptor_ValidToken_SetsUserID(t *testing.T) {
	s, _ := newServer(t)
	tok, err := auth.GenerateToken("user-42", []byte("k"), time.Now(), time.Hour)
	require.NoError(t, err)

	ctx, err := callInterceptor(t, s, withToken(tok), rpc.MethodGetSession)
	require.NoError(t, err)
	id, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-42", id)
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s, _ := newServer(t)

	ctx, err := callInterceptor(t, s, withToken("garbage"), rpc.MethodExecute)
	assert.Nil(t, ctx, "handler should not be called")
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, common.ErrInvalidToken.Error(), st.Message())
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s, _ := newServer(t)
	tok, err := auth.GenerateToken("user-42", []byte("k"), time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = callInterceptor(t, s, withToken(tok), rpc.MethodGetSession)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, common.ErrTokenExpired.Error(), st.Message())
}

func TestInterceptor_PublicMethodsIgnoreToken(t *testing.T) {
	s, _ := newServer(t)

	for _, m := range []string{rpc.MethodSignUp, rpc.MethodSignInWithPassword, rpc.MethodPing} {
		ctx, err := callInterceptor(t, s, withToken("garbage"), m)
		require.NoError(t, err, m)
		require.NotNil(t, ctx, m)
	}
}
