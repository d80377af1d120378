package rpc

import (
	"context"

	"github.com/dmitrijs2005/genzes/internal/backend"
	"github.com/dmitrijs2005/genzes/internal/query"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is the typed client stub of the Backend service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any, opts ...grpc.CallOption) (Resp, error) {
	var resp Resp
	in, err := Encode(req)
	if err != nil {
		return resp, status.Error(codes.InvalidArgument, err.Error())
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return resp, err
	}
	if err := Decode(out, &resp); err != nil {
		return resp, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func (c *Client) SignUp(ctx context.Context, req backend.SignUpRequest, opts ...grpc.CallOption) (backend.AuthResponse, error) {
	return invoke[backend.AuthResponse](ctx, c.cc, MethodSignUp, req, opts...)
}

func (c *Client) SignInWithPassword(ctx context.Context, req backend.Credentials, opts ...grpc.CallOption) (backend.AuthResponse, error) {
	return invoke[backend.AuthResponse](ctx, c.cc, MethodSignInWithPassword, req, opts...)
}

func (c *Client) GetSession(ctx context.Context, opts ...grpc.CallOption) (backend.AuthResponse, error) {
	return invoke[backend.AuthResponse](ctx, c.cc, MethodGetSession, Empty{}, opts...)
}

func (c *Client) SignOut(ctx context.Context, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodSignOut, Empty{}, opts...)
	return err
}

func (c *Client) Execute(ctx context.Context, req query.Request, opts ...grpc.CallOption) (query.Result, error) {
	return invoke[query.Result](ctx, c.cc, MethodExecute, req, opts...)
}

func (c *Client) CreateAvatarUpload(ctx context.Context, req AvatarUploadRequest, opts ...grpc.CallOption) (AvatarUpload, error) {
	return invoke[AvatarUpload](ctx, c.cc, MethodCreateAvatarUpload, req, opts...)
}

func (c *Client) Ping(ctx context.Context, opts ...grpc.CallOption) (PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, Empty{}, opts...)
}
