package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/kv"
	"github.com/dmitrijs2005/genzes/internal/models"
)

// Demo account created by SeedDemo.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo123"
)

// SignUp registers email and creates its profile. Both tables are written
// together. The returned user has no password.
func (s *Store) SignUp(ctx context.Context, email, password string, data models.UserData) (models.User, models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, models.Profile{}, err
	}
	if _, ok := users[email]; ok {
		return models.User{}, models.Profile{}, common.ErrDuplicateUser
	}
	profiles, err := s.profiles(ctx)
	if err != nil {
		return models.User{}, models.Profile{}, err
	}

	encoded, err := s.codec.Encode(password)
	if err != nil {
		return models.User{}, models.Profile{}, fmt.Errorf("encode password: %w", err)
	}

	now := s.clock()
	u := models.User{ID: newID("user", now), Email: email, Password: encoded, CreatedAt: now}
	p := models.Profile{
		ID:        u.ID,
		Username:  data.UsernameFor(email),
		FullName:  data.FullName,
		Bio:       data.Bio,
		CreatedAt: now,
	}
	users[email] = u
	profiles[u.ID] = p

	ub, err := json.Marshal(users)
	if err != nil {
		return models.User{}, models.Profile{}, err
	}
	pb, err := json.Marshal(profiles)
	if err != nil {
		return models.User{}, models.Profile{}, err
	}
	if err := kv.SetAll(ctx, s.kv, map[string][]byte{common.UsersKey: ub, common.ProfilesKey: pb}); err != nil {
		return models.User{}, models.Profile{}, err
	}

	s.log.Debug(ctx, "user registered", "user_id", u.ID)
	return u.Public(), p, nil
}

// Authenticate checks credentials without creating a session.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, *models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authenticate(ctx, email, password)
}

func (s *Store) authenticate(ctx context.Context, email, password string) (models.User, *models.Profile, error) {
	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, nil, err
	}
	u, ok := users[email]
	if !ok || !s.codec.Verify(u.Password, password) {
		return models.User{}, nil, common.ErrInvalidCredentials
	}

	profiles, err := s.profiles(ctx)
	if err != nil {
		return models.User{}, nil, err
	}
	var profile *models.Profile
	if p, ok := profiles[u.ID]; ok {
		if p.IsDisabled {
			return models.User{}, nil, common.ErrAccountDisabled
		}
		profile = &p
	}
	return u.Public(), profile, nil
}

// SignIn authenticates and stores a new session that expires after the
// configured TTL. It replaces any previous session.
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, p, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	token, err := s.tokens.Issue(u.ID, now, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	sess := &models.Session{
		User:        u,
		Profile:     p,
		AccessToken: token,
		ExpiresAt:   now.Add(s.ttl).UnixMilli(),
	}
	if err := s.save(ctx, common.SessionKey, sess); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "session created", "user_id", u.ID, "expires_at", sess.Expiry())
	return sess, nil
}

// GetSession returns the stored session, or nil when there is none. An
// expired session is removed and reported as absent.
func (s *Store) GetSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sess *models.Session
	if err := s.load(ctx, common.SessionKey, &sess); err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if !sess.Valid(s.clock()) {
		if err := s.kv.Delete(ctx, common.SessionKey); err != nil {
			return nil, err
		}
		s.log.Debug(ctx, "session expired", "user_id", sess.User.ID)
		return nil, nil
	}
	return sess, nil
}

// SignOut removes the stored session, if any.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Delete(ctx, common.SessionKey)
}

// UserByID looks a user up by id. It returns common.ErrUserNotFound when
// there is no such user.
func (s *Store) UserByID(ctx context.Context, id string) (models.User, *models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, nil, err
	}
	for _, u := range users {
		if u.ID != id {
			continue
		}
		profiles, err := s.profiles(ctx)
		if err != nil {
			return models.User{}, nil, err
		}
		var profile *models.Profile
		if p, ok := profiles[id]; ok {
			profile = &p
		}
		return u.Public(), profile, nil
	}
	return models.User{}, nil, common.ErrUserNotFound
}

// SeedDemo registers the demo account unless it already exists.
func (s *Store) SeedDemo(ctx context.Context) error {
	_, _, err := s.SignUp(ctx, DemoEmail, DemoPassword, models.UserData{
		Username: "demo_user",
		FullName: "Demo User",
		Bio:      "This is a demo account for testing",
	})
	if errors.Is(err, common.ErrDuplicateUser) {
		return nil
	}
	return err
}
