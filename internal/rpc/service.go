// Package rpc is the wire protocol between the remote backend client and
// the reference server: one gRPC service whose unary methods carry JSON
// objects as google.protobuf.Struct, the same shapes the backend package
// uses in Go.
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

const ServiceName = "genzes.backend.v1.Backend"

// Method names.
const (
	MethodSignUp             = "SignUp"
	MethodSignInWithPassword = "SignInWithPassword"
	MethodGetSession         = "GetSession"
	MethodSignOut            = "SignOut"
	MethodExecute            = "Execute"
	MethodCreateAvatarUpload = "CreateAvatarUpload"
	MethodPing               = "Ping"
)

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Empty is the payload of methods without arguments or results.
type Empty struct{}

// AvatarUploadRequest asks for a presigned upload of an avatar image.
type AvatarUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
}

// AvatarUpload is where to PUT the image and the URL it is served from
// afterwards.
type AvatarUpload struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}

type PingResponse struct {
	Status string `json:"status"`
}

// StatusOK is the status of a healthy server.
const StatusOK = "OK"

// Server is implemented by the backend service.
type Server interface {
	SignUp(ctx context.Context, req backend.SignUpRequest) (backend.AuthResponse, error)
	SignInWithPassword(ctx context.Context, req backend.Credentials) (backend.AuthResponse, error)
	GetSession(ctx context.Context, req Empty) (backend.AuthResponse, error)
	SignOut(ctx context.Context, req Empty) (Empty, error)
	Execute(ctx context.Context, req query.Request) (query.Result, error)
	CreateAvatarUpload(ctx context.Context, req AvatarUploadRequest) (AvatarUpload, error)
	Ping(ctx context.Context, req Empty) (PingResponse, error)
}

// unary builds the descriptor of a method whose payloads are Structs
// decoded into Req and encoded from Resp.
func unary[Req, Resp any](name string, call func(Server, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, raw any) (any, error) {
				var req Req
				if err := Decode(raw.(*structpb.Struct), &req); err != nil {
					return nil, status.Error(codes.InvalidArgument, err.Error())
				}
				resp, err := call(srv.(Server), ctx, req)
				if err != nil {
					return nil, err
				}
				out, err := Encode(resp)
				if err != nil {
					return nil, status.Error(codes.Internal, err.Error())
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the Backend service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodSignUp, Server.SignUp),
		unary(MethodSignInWithPassword, Server.SignInWithPassword),
		unary(MethodGetSession, Server.GetSession),
		unary(MethodSignOut, Server.SignOut),
		unary(MethodExecute, Server.Execute),
		unary(MethodCreateAvatarUpload, Server.CreateAvatarUpload),
		unary(MethodPing, Server.Ping),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterServer registers srv on s.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}
