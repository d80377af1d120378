package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/genzes/internal/backend"
	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/cryptox"
	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
	"github.com/dmitrijs2005/genzes/internal/rpc"
	"github.com/dmitrijs2005/genzes/internal/server/avatars"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// apiError translates store refusals into body-level errors. Anything else
// is a server failure.
func apiError(err error) *models.APIError {
	switch {
	case errors.Is(err, common.ErrDuplicateUser):
		return &models.APIError{Code: models.CodeUserExists, Message: "User already registered"}
	case errors.Is(err, common.ErrInvalidCredentials):
		return &models.APIError{Code: models.CodeInvalidCredential, Message: "Invalid login credentials"}
	case errors.Is(err, common.ErrAccountDisabled):
		return &models.APIError{Code: models.CodeUserBanned, Message: "User is banned"}
	case errors.Is(err, common.ErrProfileNotFound):
		return &models.APIError{Code: models.CodeProfileNotFound, Message: "Profile not found"}
	case errors.Is(err, cryptox.ErrPasswordTooLong):
		return &models.APIError{Code: models.CodeInvalidRequest, Message: err.Error()}
	default:
		return nil
	}
}

func (s *GRPCServer) authFailure(ctx context.Context, err error) (backend.AuthResponse, error) {
	if e := apiError(err); e != nil {
		return backend.AuthResponse{Error: e}, nil
	}
	s.logger.Error(ctx, err.Error())
	return backend.AuthResponse{}, status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) SignUp(ctx context.Context, req backend.SignUpRequest) (backend.AuthResponse, error) {
	s.logger.Info(ctx, "Registration request")

	u, p, err := s.store.SignUp(ctx, req.Email, req.Password, req.Data)
	if err != nil {
		return s.authFailure(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return backend.AuthResponse{User: &u, Profile: &p}, nil
}

func (s *GRPCServer) SignInWithPassword(ctx context.Context, req backend.Credentials) (backend.AuthResponse, error) {
	u, p, err := s.store.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return s.authFailure(ctx, err)
	}

	now := s.now()
	token, err := s.tokens.Issue(u.ID, now, s.ttl)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return backend.AuthResponse{}, status.Error(codes.Internal, "internal error")
	}

	sess := &models.Session{
		User:        u,
		Profile:     p,
		AccessToken: token,
		ExpiresAt:   now.Add(s.ttl).UnixMilli(),
	}
	s.logger.Info(ctx, "Signed in", "user_id", u.ID)
	return backend.AuthResponse{User: &sess.User, Profile: p, Session: sess}, nil
}

// GetSession resolves the caller's token. Anonymous callers and tokens of
// deleted users have no session.
func (s *GRPCServer) GetSession(ctx context.Context, _ rpc.Empty) (backend.AuthResponse, error) {
	id, ok := identityFrom(ctx)
	if !ok {
		return backend.AuthResponse{}, nil
	}

	u, p, err := s.store.UserByID(ctx, id.userID)
	if errors.Is(err, common.ErrUserNotFound) {
		return backend.AuthResponse{}, nil
	}
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return backend.AuthResponse{}, status.Error(codes.Internal, "internal error")
	}

	sess := &models.Session{User: u, Profile: p, AccessToken: id.token}
	if !id.expiresAt.IsZero() {
		sess.ExpiresAt = id.expiresAt.UnixMilli()
	}
	return backend.AuthResponse{User: &sess.User, Profile: p, Session: sess}, nil
}

// SignOut only acknowledges; tokens are stateless and expire on their own.
func (s *GRPCServer) SignOut(ctx context.Context, _ rpc.Empty) (rpc.Empty, error) {
	if userID, ok := UserIDFromContext(ctx); ok {
		s.logger.Info(ctx, "Signed out", "user_id", userID)
	}
	return rpc.Empty{}, nil
}

func (s *GRPCServer) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	req, refusal := s.authorize(ctx, req)
	if refusal != nil {
		return query.Result{Error: refusal}, nil
	}

	res, err := s.store.Execute(ctx, req)
	if err != nil {
		s.logger.Error(ctx, err.Error(), "table", req.Table, "op", string(req.Operation))
		return query.Result{}, status.Error(codes.Internal, "internal error")
	}
	return res, nil
}

// authorize lets anyone read and restricts writes to the caller's own rows:
// profile updates are narrowed to the caller's id, inserts must be made on
// the caller's behalf.
func (s *GRPCServer) authorize(ctx context.Context, req query.Request) (query.Request, *models.APIError) {
	if req.Operation == query.OpSelect {
		return req, nil
	}

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return req, &models.APIError{Code: models.CodeNotAuthenticated, Message: "sign in required"}
	}

	switch {
	case req.Table == query.TableProfiles && req.Operation == query.OpUpdate:
		filters := make([]query.Filter, 0, len(req.Filters)+1)
		filters = append(filters, req.Filters...)
		req.Filters = append(filters, query.Filter{Column: "id", Value: userID})
	case req.Table == query.TableProfiles && req.Operation == query.OpInsert:
		if req.Record["id"] != userID {
			return req, &models.APIError{Code: models.CodeInvalidRequest, Message: "profile id must be the signed-in user"}
		}
	case req.Table == query.TableMessages && req.Operation == query.OpInsert:
		if req.Record["sender_id"] != userID {
			return req, &models.APIError{Code: models.CodeInvalidRequest, Message: "sender_id must be the signed-in user"}
		}
	}
	return req, nil
}

func (s *GRPCServer) CreateAvatarUpload(ctx context.Context, req rpc.AvatarUploadRequest) (rpc.AvatarUpload, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return rpc.AvatarUpload{}, status.Error(codes.Unauthenticated, "missing token")
	}
	if s.avatars == nil {
		return rpc.AvatarUpload{}, status.Error(codes.Unimplemented, "avatar uploads are not configured")
	}

	up, err := s.avatars.PresignPut(ctx, userID, req.FileName, req.ContentType)
	if err != nil {
		if errors.Is(err, avatars.ErrInvalidFileName) {
			return rpc.AvatarUpload{}, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error(ctx, err.Error())
		return rpc.AvatarUpload{}, status.Error(codes.Internal, "internal error")
	}
	return up, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ rpc.Empty) (rpc.PingResponse, error) {
	return rpc.PingResponse{Status: rpc.StatusOK}, nil
}
