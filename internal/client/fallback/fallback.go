// Package fallback implements the client facade that tries the remote
// backend once and, when it is absent or the call fails, serves the same
// request from the local backend.
//
// Remote failures are never returned to the caller: they are logged as
// warnings and downgraded to the local path. Refusals reported by a
// reachable remote (AuthResponse.Error, Result.Error) are returned as is,
// and so are errors of the local backend.
package fallback

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/genzes/internal/backend"
	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/logging"
	"github.com/dmitrijs2005/genzes/internal/netx"
	"github.com/dmitrijs2005/genzes/internal/query"
	"github.com/dmitrijs2005/genzes/internal/rpc"
)

// ErrNoRemote is returned by Ping when no remote backend is configured.
var ErrNoRemote = fmt.Errorf("no remote backend configured: %w", common.ErrRemoteUnavailable)

// Pinger is implemented by remotes that support health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AvatarUploader is implemented by remotes that can presign avatar uploads.
type AvatarUploader interface {
	CreateAvatarUpload(ctx context.Context, fileName, contentType string) (rpc.AvatarUpload, error)
}

// Client is the fallback facade. It implements backend.Backend.
type Client struct {
	local     backend.Backend
	remote    backend.Backend
	log       logging.Logger
	avatarDir string
	upload    func(ctx context.Context, url string, file []byte, contentType string) error
}

var _ backend.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithRemote sets the backend tried first. Without it every call is
// served locally.
func WithRemote(r backend.Backend) Option {
	return func(c *Client) { c.remote = r }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithAvatarDir sets where avatars are kept when they cannot be uploaded.
func WithAvatarDir(dir string) Option {
	return func(c *Client) { c.avatarDir = dir }
}

// New returns a facade over local.
func New(local backend.Backend, opts ...Option) *Client {
	c := &Client{
		local:     local,
		log:       logging.NewNop(),
		avatarDir: "avatars",
		upload:    netx.UploadToPresignedURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// HasRemote reports whether a remote backend is configured.
func (c *Client) HasRemote() bool { return c.remote != nil }

func (c *Client) warn(ctx context.Context, op string, err error, args ...any) {
	c.log.Warn(ctx, "remote call failed, using local backend", append([]any{"op", op, "err", err}, args...)...)
}

func (c *Client) SignUp(ctx context.Context, req backend.SignUpRequest) (backend.AuthResponse, error) {
	if c.remote != nil {
		resp, err := c.remote.SignUp(ctx, req)
		if err == nil {
			return resp, nil
		}
		c.warn(ctx, "sign_up", err)
	}
	return c.local.SignUp(ctx, req)
}

func (c *Client) SignInWithPassword(ctx context.Context, cred backend.Credentials) (backend.AuthResponse, error) {
	if c.remote != nil {
		resp, err := c.remote.SignInWithPassword(ctx, cred)
		if err == nil {
			return resp, nil
		}
		c.warn(ctx, "sign_in", err)
	}
	return c.local.SignInWithPassword(ctx, cred)
}

// GetSession prefers a remote session and otherwise returns the local one.
func (c *Client) GetSession(ctx context.Context) (backend.AuthResponse, error) {
	if c.remote != nil {
		resp, err := c.remote.GetSession(ctx)
		if err != nil {
			c.warn(ctx, "get_session", err)
		} else if resp.Session != nil {
			return resp, nil
		}
	}
	return c.local.GetSession(ctx)
}

// SignOut signs out of both backends. Only the local result is returned.
func (c *Client) SignOut(ctx context.Context) error {
	if c.remote != nil {
		if err := c.remote.SignOut(ctx); err != nil {
			c.warn(ctx, "sign_out", err)
		}
	}
	return c.local.SignOut(ctx)
}

// OnAuthStateChange subscribes cb to both backends, so it sees events from
// whichever one serves the session.
func (c *Client) OnAuthStateChange(cb backend.AuthCallback) backend.Subscription {
	subs := multiSubscription{c.local.OnAuthStateChange(cb)}
	if c.remote != nil {
		subs = append(subs, c.remote.OnAuthStateChange(cb))
	}
	return subs
}

type multiSubscription []backend.Subscription

func (m multiSubscription) Unsubscribe() {
	for _, s := range m {
		s.Unsubscribe()
	}
}

func (c *Client) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	if c.remote != nil {
		res, err := c.remote.Execute(ctx, req)
		if err == nil {
			return res, nil
		}
		c.warn(ctx, string(req.Operation), err, "table", req.Table)
	}
	return c.local.Execute(ctx, req)
}

// From starts a query served by this client.
func (c *Client) From(table string) query.Table {
	return query.From(c, table)
}

// Ping checks the remote backend.
func (c *Client) Ping(ctx context.Context) error {
	if c.remote == nil {
		return ErrNoRemote
	}
	p, ok := c.remote.(Pinger)
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}
