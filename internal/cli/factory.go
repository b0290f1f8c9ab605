// Package cli wires configuration into a ready bot for the colloquy binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/adapters/file"
	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/adapters/dynamodb"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/adapters/redis"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/observability"
	"github.com/aretw0/colloquy/pkg/persistence/middleware"
	"github.com/aretw0/colloquy/pkg/ports"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
)

// App is a bot together with the collaborators it was built from.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Bot       *colloquy.Bot
	Store     ports.StateStore
	Directory ports.UserDirectory
	Metrics   *observability.Metrics

	closers []io.Closer
}

// BuildOption adjusts how Build creates collaborators.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logOutput io.Writer
	dynamo    func(ctx context.Context) (*awsdynamodb.Client, error)
}

// WithLogOutput redirects the application log (default: stderr).
func WithLogOutput(w io.Writer) BuildOption {
	return func(o *buildOptions) {
		o.logOutput = w
	}
}

// Build creates every collaborator named by cfg and the bot over them.
// Call Close on the result to release network clients.
func Build(ctx context.Context, cfg *config.Config, opts ...BuildOption) (*App, error) {
	o := buildOptions{logOutput: os.Stderr, dynamo: newDynamoDB}
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := newLogger(cfg.Log, o.logOutput)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	var rds *redis.Store
	if cfg.UsesRedis() {
		r := cfg.Store.Redis
		rds = redis.New(r.Addr, r.Password, r.DB, redis.WithPrefix(r.Prefix), redis.WithTTL(r.TTL))
		app.closers = append(app.closers, rds)
		if err := rds.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis %s unreachable: %w", r.Addr, err)
		}
	}

	var dynamo *awsdynamodb.Client
	if cfg.UsesDynamoDB() {
		if dynamo, err = o.dynamo(ctx); err != nil {
			return nil, err
		}
	}

	if app.Store, err = newStore(cfg, rds, dynamo); err != nil {
		return nil, err
	}
	if app.Directory, err = newDirectory(ctx, cfg.Users, dynamo); err != nil {
		return nil, err
	}

	hooks := []domain.LifecycleHooks{observability.LoggingHooks(logger)}
	if cfg.Metrics.Enabled {
		app.Metrics = observability.NewMetrics(prometheus.NewRegistry())
		hooks = append(hooks, app.Metrics.Hooks())
	}

	botOpts := []colloquy.Option{
		colloquy.WithLogger(logger),
		colloquy.WithStore(app.Store),
		colloquy.WithDirectory(app.Directory),
		colloquy.WithLifecycleHooks(domain.ChainHooks(hooks...)),
	}
	if cfg.Lock.Redis {
		botOpts = append(botOpts, colloquy.WithLocker(redis.NewLocker(rds.Client(), cfg.Store.Redis.Prefix), cfg.Lock.TTL))
	}
	app.Bot = colloquy.New(botOpts...)

	ok = true
	logger.Debug("Bot ready",
		"store", cfg.Store.Backend,
		"users", cfg.Users.Backend,
		"encrypted", cfg.Store.EncryptionKey != "",
		"distributed_lock", cfg.Lock.Redis,
	)
	return app, nil
}

// Close releases the clients opened by Build.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return logging.NewWithOptions(logging.Options{
		Level:  level,
		Format: format,
		Output: w,
		Redact: cfg.Redact,
	}), nil
}

func newDynamoDB(ctx context.Context) (*awsdynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsdynamodb.NewFromConfig(awsCfg), nil
}

func newStore(cfg *config.Config, rds *redis.Store, dynamo *awsdynamodb.Client) (ports.StateStore, error) {
	var store ports.StateStore
	switch cfg.Store.Backend {
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendFile:
		store = file.New(cfg.Store.File.Dir)
	case config.BackendRedis:
		store = rds
	case config.BackendDynamoDB:
		s, err := dynamodb.NewStore(dynamo, cfg.Store.DynamoDB.Table)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	enc, err := cfg.Encryption()
	if err != nil {
		return nil, err
	}
	if enc != nil {
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(*enc))
	}
	return store, nil
}

func newDirectory(ctx context.Context, cfg config.UsersConfig, dynamo *awsdynamodb.Client) (ports.UserDirectory, error) {
	var seed []domain.UserRecord
	if cfg.Seed != "" {
		var err error
		if seed, err = config.LoadSeed(cfg.Seed); err != nil {
			return nil, err
		}
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewDirectory(seed...), nil
	case config.BackendDynamoDB:
		dir, err := dynamodb.NewDirectory(dynamo, cfg.DynamoDB.Table)
		if err != nil {
			return nil, err
		}
		for _, rec := range seed {
			if err := dir.Add(ctx, rec); err != nil {
				return nil, fmt.Errorf("failed to seed user %s: %w", rec.Key(), err)
			}
		}
		return dir, nil
	default:
		return nil, fmt.Errorf("unknown users backend %q", cfg.Backend)
	}
}
