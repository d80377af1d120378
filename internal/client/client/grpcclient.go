package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/genzes/internal/backend"
	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/query"
	"github.com/dmitrijs2005/genzes/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultCallTimeout bounds calls whose context has no deadline.
const DefaultCallTimeout = 5 * time.Second

// rpcClient is the subset of *rpc.Client used by GRPCClient.
type rpcClient interface {
	SignUp(ctx context.Context, req backend.SignUpRequest, opts ...grpc.CallOption) (backend.AuthResponse, error)
	SignInWithPassword(ctx context.Context, req backend.Credentials, opts ...grpc.CallOption) (backend.AuthResponse, error)
	GetSession(ctx context.Context, opts ...grpc.CallOption) (backend.AuthResponse, error)
	SignOut(ctx context.Context, opts ...grpc.CallOption) error
	Execute(ctx context.Context, req query.Request, opts ...grpc.CallOption) (query.Result, error)
	CreateAvatarUpload(ctx context.Context, req rpc.AvatarUploadRequest, opts ...grpc.CallOption) (rpc.AvatarUpload, error)
	Ping(ctx context.Context, opts ...grpc.CallOption) (rpc.PingResponse, error)
}

type GRPCClient struct {
	endpointURL string
	dialOpts    []grpc.DialOption
	callTimeout time.Duration

	conn   *grpc.ClientConn
	client rpcClient

	mu          sync.RWMutex
	accessToken string

	listeners backend.Listeners
}

// Option configures a GRPCClient.
type Option func(*GRPCClient)

// WithDialOptions appends options to the connection setup.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

// WithCallTimeout replaces DefaultCallTimeout. Zero disables it.
func WithCallTimeout(d time.Duration) Option {
	return func(c *GRPCClient) { c.callTimeout = d }
}

// WithAccessToken restores a token obtained earlier.
func WithAccessToken(token string) Option {
	return func(c *GRPCClient) { c.accessToken = token }
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the current token and the call timeout.
// A token the server reports as expired is dropped and SIGNED_OUT is
// emitted.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if _, ok := ctx.Deadline(); !ok && s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	token := s.AccessToken()
	ctx = withAccessToken(ctx, token)

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil || token == "" {
		return err
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	if s.clearToken(token) {
		s.listeners.Emit(backend.EventSignedOut, nil)
	}
	return err
}

// NewGRPCClient connects lazily to endpointURL.
func NewGRPCClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, callTimeout: DefaultCallTimeout}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// AccessToken returns the token of the current remote session, if any.
func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// clearToken drops token if it is still the current one.
func (s *GRPCClient) clearToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken != token {
		return false
	}
	s.accessToken = ""
	return true
}

func (s *GRPCClient) SignUp(ctx context.Context, req backend.SignUpRequest) (backend.AuthResponse, error) {
	resp, err := s.client.SignUp(ctx, req)
	if err != nil {
		return backend.AuthResponse{}, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) SignInWithPassword(ctx context.Context, c backend.Credentials) (backend.AuthResponse, error) {
	resp, err := s.client.SignInWithPassword(ctx, c)
	if err != nil {
		return backend.AuthResponse{}, s.mapError(err)
	}
	if resp.Session != nil {
		s.setToken(resp.Session.AccessToken)
		s.listeners.Emit(backend.EventSignedIn, resp.Session)
	}
	return resp, nil
}

// GetSession asks the server to resolve the current token. Without a token
// there is no remote session and no call is made.
func (s *GRPCClient) GetSession(ctx context.Context) (backend.AuthResponse, error) {
	if s.AccessToken() == "" {
		return backend.AuthResponse{}, nil
	}
	resp, err := s.client.GetSession(ctx)
	if err != nil {
		return backend.AuthResponse{}, s.mapError(err)
	}
	return resp, nil
}

// SignOut notifies the server and forgets the token even when the call
// fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	token := s.AccessToken()
	err := s.client.SignOut(ctx)
	if token != "" && s.clearToken(token) {
		s.listeners.Emit(backend.EventSignedOut, nil)
	}
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) OnAuthStateChange(cb backend.AuthCallback) backend.Subscription {
	return s.listeners.Subscribe(cb)
}

func (s *GRPCClient) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	res, err := s.client.Execute(ctx, req)
	if err != nil {
		return query.Result{}, s.mapError(err)
	}
	return res, nil
}

// CreateAvatarUpload returns a presigned upload for fileName.
func (s *GRPCClient) CreateAvatarUpload(ctx context.Context, fileName, contentType string) (rpc.AvatarUpload, error) {
	res, err := s.client.CreateAvatarUpload(ctx, rpc.AvatarUploadRequest{FileName: fileName, ContentType: contentType})
	if err != nil {
		return rpc.AvatarUpload{}, s.mapError(err)
	}
	return res, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx)
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != rpc.StatusOK {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("%w: %s", common.ErrRemoteCallFailed, st.Err())
	}
}
