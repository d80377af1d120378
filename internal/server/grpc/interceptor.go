package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// identity is the verified caller of a request.
type identity struct {
	userID    string
	token     string
	expiresAt time.Time
}

func identityFrom(ctx context.Context) (identity, bool) {
	id, ok := ctx.Value(identityKey).(identity)
	return id, ok
}

// UserIDFromContext returns the id of the signed-in caller.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := identityFrom(ctx)
	return id.userID, ok
}

// publicMethods ignore the access token, so a stale token never blocks
// signing in again.
var publicMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodSignUp):             true,
	rpc.FullMethod(rpc.MethodSignInWithPassword): true,
	rpc.FullMethod(rpc.MethodPing):               true,
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AccessTokenHeaderName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// accessTokenInterceptor verifies the access token, when one is sent, and
// stores the caller in the context. Requests without a token pass through
// anonymously; handlers decide what that allows.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := tokenFromMetadata(ctx)
	if accessToken == "" {
		return handler(ctx, req)
	}

	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	id := identity{userID: claims.UserID, token: accessToken}
	if claims.ExpiresAt != nil {
		id.expiresAt = claims.ExpiresAt.Time
	}
	ctx = context.WithValue(ctx, identityKey, id)

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
