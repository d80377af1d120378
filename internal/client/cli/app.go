package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/genzes/internal/backend"
	"github.com/dmitrijs2005/genzes/internal/client/client"
	"github.com/dmitrijs2005/genzes/internal/client/config"
	"github.com/dmitrijs2005/genzes/internal/client/fallback"
	"github.com/dmitrijs2005/genzes/internal/cryptox"
	"github.com/dmitrijs2005/genzes/internal/kv"
	"github.com/dmitrijs2005/genzes/internal/localstore"
	"github.com/dmitrijs2005/genzes/internal/logging"
	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	// ModeLocal means no remote backend is configured.
	ModeLocal Mode = "local"
)

// dataClient is the fallback surface the commands use.
type dataClient interface {
	backend.Backend
	From(table string) query.Table
	Ping(ctx context.Context) error
	UploadAvatar(ctx context.Context, userID, fileName string, content []byte) (string, error)
}

// directory keeps messages when the remote cannot take them.
type directory interface {
	SendMessage(ctx context.Context, senderID, receiverID, content string) (models.Message, error)
	GetMessages(ctx context.Context, a, b string) ([]models.Message, error)
}

type App struct {
	config  *config.Config
	data    dataClient
	dir     directory
	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer

	mu      sync.Mutex
	session *models.Session
	Mode    Mode
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewApp opens the configured storage, prepares the local store and connects
// the remote backend when an address is configured.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, c.LogLevel)

	codec, err := cryptox.CodecByName(c.PasswordEncoding)
	if err != nil {
		return nil, err
	}

	storage, err := kv.Open(ctx, c.StorageOptions())
	if err != nil {
		log.Printf("error initializing storage: %s", err.Error())
		return nil, err
	}
	closers := []io.Closer{closerFunc(func() error { return kv.Close(storage) })}

	store := localstore.New(storage,
		localstore.WithSessionTTL(c.SessionTTL),
		localstore.WithPasswordCodec(codec),
		localstore.WithLogger(logger.With("module", "localstore")),
	)
	if err := store.Init(ctx); err != nil {
		_ = kv.Close(storage)
		return nil, fmt.Errorf("store init: %w", err)
	}
	if c.SeedDemo {
		if err := store.SeedDemo(ctx); err != nil {
			_ = kv.Close(storage)
			return nil, fmt.Errorf("seed demo: %w", err)
		}
	}

	opts := []fallback.Option{fallback.WithLogger(logger), fallback.WithAvatarDir(c.AvatarDir)}
	mode := ModeLocal
	if c.ServerEndpointAddr != "" {
		remote, err := client.NewGRPCClient(c.ServerEndpointAddr, client.WithCallTimeout(c.CallTimeout))
		if err != nil {
			_ = kv.Close(storage)
			return nil, err
		}
		closers = append(closers, remote)
		opts = append(opts, fallback.WithRemote(remote))
		mode = ModeOffline
	}

	app := newApp(c, fallback.New(backend.NewLocal(store), opts...), store, os.Stdin, os.Stdout)
	app.Mode = mode
	app.closers = closers
	return app, nil
}

func newApp(c *config.Config, data dataClient, dir directory, in io.Reader, out io.Writer) *App {
	return &App{config: c, data: data, dir: dir, reader: bufio.NewReader(in), out: out, Mode: ModeLocal}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) setSession(s *models.Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

func (a *App) currentSession() *models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) isLoggedIn() bool {
	return a.currentSession() != nil
}

// onAuthEvent keeps the prompt in step with sign-ins, sign-outs and profile
// edits, whichever backend reported them.
func (a *App) onAuthEvent(event backend.AuthEvent, s *models.Session) {
	switch event {
	case backend.EventSignedOut:
		a.setSession(nil)
	case backend.EventSignedIn, backend.EventUserUpdated:
		if s != nil {
			a.setSession(s)
		}
	}
}

// restoreSession picks up a session persisted by an earlier run.
func (a *App) restoreSession(ctx context.Context) {
	resp, err := a.data.GetSession(ctx)
	if err != nil {
		log.Printf("session restore failed: %s", err.Error())
		return
	}
	if resp.Session != nil {
		a.setSession(resp.Session)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// StartOnlineStatusWatcher pings the remote every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.data.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}
