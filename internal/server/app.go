// Package server wires the reference backend: storage, the local store, JWT
// issuing, optional S3 avatar uploads and the gRPC endpoint with graceful
// shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/cryptox"
	"github.com/dmitrijs2005/genzes/internal/kv"
	"github.com/dmitrijs2005/genzes/internal/localstore"
	"github.com/dmitrijs2005/genzes/internal/logging"
	"github.com/dmitrijs2005/genzes/internal/server/auth"
	"github.com/dmitrijs2005/genzes/internal/server/avatars"
	"github.com/dmitrijs2005/genzes/internal/server/config"

	gs "github.com/dmitrijs2005/genzes/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage kv.Storage
	server  *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	codec, err := cryptox.CodecByName(c.PasswordEncoding)
	if err != nil {
		return nil, err
	}

	secret := c.SecretKey
	if secret == "" {
		// tokens will not survive a restart
		if secret, err = common.MakeRandHexString(32); err != nil {
			return nil, fmt.Errorf("secret key: %w", err)
		}
		logger.Warn(ctx, "no secret key configured, using a random one")
	}
	tokens := auth.NewJWT(secret)

	storage, err := kv.Open(ctx, c.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	store := localstore.New(storage,
		localstore.WithSessionTTL(c.AccessTokenValidityDuration),
		localstore.WithPasswordCodec(codec),
		localstore.WithTokenIssuer(tokens),
		localstore.WithLogger(logger.With("module", "localstore")),
	)
	if err := store.Init(ctx); err != nil {
		_ = kv.Close(storage)
		return nil, fmt.Errorf("store init error: %w", err)
	}
	if c.SeedDemo {
		if err := store.SeedDemo(ctx); err != nil {
			_ = kv.Close(storage)
			return nil, fmt.Errorf("seed demo: %w", err)
		}
	}

	var opts []gs.Option
	if c.S3Bucket != "" {
		p, err := avatars.NewPresigner(ctx, c.S3Options(), c.S3PublicURL)
		if err != nil {
			_ = kv.Close(storage)
			return nil, fmt.Errorf("avatars init error: %w", err)
		}
		opts = append(opts, gs.WithAvatars(p))
	}

	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, store, tokens, c.AccessTokenValidityDuration, opts...)

	return &App{config: c, logger: logger, storage: storage, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := kv.Close(app.storage); err != nil {
		app.logger.Error(ctx, "storage close error", "err", err)
	}
	app.logger.Info(ctx, "App stopped")
}
