package backend

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/genzes/internal/localstore"
	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
)

// Local serves the Backend surface from a localstore.Store. Store errors
// such as common.ErrDuplicateUser are returned as errors.
type Local struct {
	store     *localstore.Store
	tables    []string
	listeners Listeners
}

// NewLocal returns a local backend over store. Queries are served only for
// tables; other tables yield no rows. Without tables only profiles is
// served.
func NewLocal(store *localstore.Store, tables ...string) *Local {
	if len(tables) == 0 {
		tables = []string{query.TableProfiles}
	}
	return &Local{store: store, tables: tables}
}

// Store returns the underlying store.
func (l *Local) Store() *localstore.Store { return l.store }

func (l *Local) SignUp(ctx context.Context, req SignUpRequest) (AuthResponse, error) {
	u, p, err := l.store.SignUp(ctx, req.Email, req.Password, req.Data)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{User: &u, Profile: &p}, nil
}

func (l *Local) SignInWithPassword(ctx context.Context, c Credentials) (AuthResponse, error) {
	s, err := l.store.SignIn(ctx, c.Email, c.Password)
	if err != nil {
		return AuthResponse{}, err
	}
	l.listeners.Emit(EventSignedIn, s)
	return AuthResponse{User: &s.User, Profile: s.Profile, Session: s}, nil
}

func (l *Local) GetSession(ctx context.Context) (AuthResponse, error) {
	s, err := l.store.GetSession(ctx)
	if err != nil {
		return AuthResponse{}, err
	}
	if s == nil {
		return AuthResponse{}, nil
	}
	return AuthResponse{User: &s.User, Profile: s.Profile, Session: s}, nil
}

func (l *Local) SignOut(ctx context.Context) error {
	if err := l.store.SignOut(ctx); err != nil {
		return err
	}
	l.listeners.Emit(EventSignedOut, nil)
	return nil
}

func (l *Local) OnAuthStateChange(cb AuthCallback) Subscription {
	return l.listeners.Subscribe(cb)
}

func (l *Local) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	if !slices.Contains(l.tables, req.Table) {
		return query.Result{Data: []query.Record{}}, nil
	}
	res, err := l.store.Execute(ctx, req)
	if err != nil || res.Error != nil {
		return res, err
	}
	if req.Table == query.TableProfiles && req.Operation == query.OpUpdate {
		l.notifyProfileUpdate(ctx, res.Data)
	}
	return res, nil
}

// notifyProfileUpdate emits USER_UPDATED when the signed-in user's profile
// was among the updated rows.
func (l *Local) notifyProfileUpdate(ctx context.Context, rows []query.Record) {
	s, err := l.store.GetSession(ctx)
	if err != nil || s == nil {
		return
	}
	for _, r := range rows {
		if r["id"] != s.User.ID {
			continue
		}
		var p models.Profile
		if err := query.Decode(r, &p); err == nil {
			s.Profile = &p
		}
		l.listeners.Emit(EventUserUpdated, s)
		return
	}
}
