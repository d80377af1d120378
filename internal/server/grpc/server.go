// Package grpc serves the backend wire service on top of a local store.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/genzes/internal/logging"
	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
	"github.com/dmitrijs2005/genzes/internal/rpc"
	"github.com/dmitrijs2005/genzes/internal/server/auth"
	"google.golang.org/grpc"
)

// Store is the part of localstore.Store the server needs.
type Store interface {
	SignUp(ctx context.Context, email, password string, data models.UserData) (models.User, models.Profile, error)
	Authenticate(ctx context.Context, email, password string) (models.User, *models.Profile, error)
	UserByID(ctx context.Context, id string) (models.User, *models.Profile, error)
	Execute(ctx context.Context, req query.Request) (query.Result, error)
}

// Tokens issues and verifies access tokens.
type Tokens interface {
	Issue(userID string, now time.Time, ttl time.Duration) (string, error)
	Parse(token string) (*auth.Claims, error)
}

// AvatarPresigner hands out avatar upload URLs.
type AvatarPresigner interface {
	PresignPut(ctx context.Context, userID, fileName, contentType string) (rpc.AvatarUpload, error)
}

type GRPCServer struct {
	address string
	store   Store
	tokens  Tokens
	avatars AvatarPresigner
	ttl     time.Duration
	now     func() time.Time
	logger  logging.Logger
}

type Option func(*GRPCServer)

// WithAvatars enables CreateAvatarUpload.
func WithAvatars(p AvatarPresigner) Option {
	return func(s *GRPCServer) { s.avatars = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *GRPCServer) { s.now = now }
}

// NewGRPCServer returns a server for address whose sessions last ttl.
func NewGRPCServer(a string, l logging.Logger, store Store, tokens Tokens, ttl time.Duration, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		store:   store,
		tokens:  tokens,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	rpc.RegisterServer(srv, s)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
