package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/cryptox"
	"github.com/dmitrijs2005/genzes/internal/kv"
	"github.com/dmitrijs2005/genzes/internal/logging"
	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/google/uuid"
)

// TokenIssuer mints the access token of a new session.
type TokenIssuer interface {
	Issue(userID string, now time.Time, ttl time.Duration) (string, error)
}

// TokenIssuerFunc adapts a function to TokenIssuer.
type TokenIssuerFunc func(userID string, now time.Time, ttl time.Duration) (string, error)

func (f TokenIssuerFunc) Issue(userID string, now time.Time, ttl time.Duration) (string, error) {
	return f(userID, now, ttl)
}

// OpaqueTokens issues "local_token_<unix-ms>_<hex>" tokens. They carry no
// claims and are only meaningful to the store that issued them.
var OpaqueTokens TokenIssuer = TokenIssuerFunc(func(_ string, now time.Time, _ time.Duration) (string, error) {
	suffix, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	return "local_token_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix, nil
})

// Store is the local store. Construct it with New.
type Store struct {
	mu sync.Mutex

	kv     kv.Storage
	now    func() time.Time
	ttl    time.Duration
	codec  cryptox.PasswordCodec
	tokens TokenIssuer
	log    logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSessionTTL sets the lifetime of sessions created by SignIn.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPasswordCodec sets how passwords are encoded and verified.
func WithPasswordCodec(c cryptox.PasswordCodec) Option {
	return func(s *Store) { s.codec = c }
}

// WithTokenIssuer sets the issuer of session access tokens.
func WithTokenIssuer(t TokenIssuer) Option {
	return func(s *Store) { s.tokens = t }
}

// WithLogger sets the logger for store events.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a store over storage. Defaults: 24h sessions, bcrypt
// passwords, opaque tokens, no logging.
func New(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		kv:     storage,
		now:    time.Now,
		ttl:    common.DefaultSessionTTL,
		codec:  cryptox.Bcrypt{},
		tokens: OpaqueTokens,
		log:    logging.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init creates the empty tables that do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := map[string][]byte{
		common.UsersKey:    []byte("{}"),
		common.ProfilesKey: []byte("{}"),
		common.MessagesKey: []byte("[]"),
	}
	for key, v := range empty {
		cur, err := s.kv.Get(ctx, key)
		if err != nil {
			return err
		}
		if cur != nil {
			continue
		}
		if err := s.kv.Set(ctx, key, v); err != nil {
			return err
		}
	}
	return nil
}

// newID returns "<prefix>_<unix-ms>_<9 random chars>".
func newID(prefix string, now time.Time) string {
	r := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + r[:9]
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

// load decodes the document under key into v. A missing key leaves v as is.
func (s *Store) load(ctx context.Context, key string, v any) error {
	b, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) users(ctx context.Context) (map[string]models.User, error) {
	users := map[string]models.User{}
	if err := s.load(ctx, common.UsersKey, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = map[string]models.User{}
	}
	return users, nil
}

func (s *Store) profiles(ctx context.Context) (map[string]models.Profile, error) {
	profiles := map[string]models.Profile{}
	if err := s.load(ctx, common.ProfilesKey, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = map[string]models.Profile{}
	}
	return profiles, nil
}

func (s *Store) messages(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.load(ctx, common.MessagesKey, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, b)
}
