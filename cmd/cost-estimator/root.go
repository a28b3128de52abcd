package main

import (
	"context"
	"fmt"
	"io"

	"github.com/iwvelando/cost-estimator/internal/config"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/iwvelando/cost-estimator/internal/plans"
	"github.com/iwvelando/cost-estimator/internal/ratelimit"
	"github.com/iwvelando/cost-estimator/internal/storage/postgres"
	"github.com/iwvelando/cost-estimator/internal/storage/sqlite"
	"github.com/iwvelando/cost-estimator/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by every subcommand once the persistent
// pre-run has loaded configuration.
type app struct {
	configPath string
	envPath    string
	logLevel   string

	cfg    *config.Configuration
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cost-estimator",
		Short:         "Relocation cost-of-living estimator",
		Long:          "Estimate monthly living costs abroad, save plans and capture guide leads.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&a.envPath, "env-file", ".env", "optional .env file loaded before configuration")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(a),
		newEstimateCmd(a),
		newDestinationsCmd(a),
		newLeadsCmd(a),
		newTokenCmd(a),
		newHashPasswordCmd(a),
	)
	return root
}

func (a *app) load() error {
	if err := config.LoadDotEnv(a.envPath); err != nil {
		return err
	}
	cfg, err := config.LoadConfiguration(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}
	logger, err := initializeLogger(cfg.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) table() (*estimator.Table, error) {
	if a.cfg.Destinations == "" {
		return estimator.DefaultTable()
	}
	table, err := estimator.LoadTableFile(a.cfg.Destinations)
	if err != nil {
		return nil, fmt.Errorf("loading destinations from %s: %w", a.cfg.Destinations, err)
	}
	a.logger.Info("loaded destination table",
		zap.String("op", "main.table"),
		zap.String("path", a.cfg.Destinations),
		zap.Int("destinations", table.Len()),
	)
	return table, nil
}

// stores opens the configured plan and lead stores. The returned closer
// releases any underlying connection.
func (a *app) stores(ctx context.Context) (plans.Store, leads.Store, io.Closer, error) {
	switch a.cfg.Storage.Driver {
	case constants.StorageSQLite:
		db, err := sqlite.Open(a.cfg.Storage.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.Plans(), db.Leads(), db, nil
	case constants.StoragePostgres:
		db, err := postgres.Open(ctx, a.cfg.Storage.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.Plans(), db.Leads(), closerFunc(func() error { db.Close(); return nil }), nil
	default:
		a.logger.Warn("using in-memory storage, plans and leads are lost on restart",
			zap.String("op", "main.stores"),
		)
		return plans.NewMemoryStore(), leads.NewMemoryStore(), closerFunc(func() error { return nil }), nil
	}
}

// limiter builds the lead rate limiter. The returned stop func releases its
// resources.
// limiters builds the lead submission and admin sign-in limiters on the
// configured backend. Both share one Redis client under distinct key prefixes.
func (a *app) limiters(ctx context.Context) (ratelimit.Limiter, ratelimit.Limiter, func(), error) {
	rl := a.cfg.RateLimit
	leadPolicy := ratelimit.Policy{Window: rl.Window, Max: rl.Max}
	sessionPolicy := ratelimit.Policy{Window: rl.SessionWindow, Max: rl.SessionMax}

	if rl.Backend == constants.RateLimitRedis {
		client, err := ratelimit.NewRedisClient(ctx, ratelimit.RedisOptions{
			Address:  rl.Redis.Address,
			Password: rl.Redis.Password,
			DB:       rl.Redis.DB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return ratelimit.NewRedis(client, leadPolicy, rl.KeyPrefix),
			ratelimit.NewRedis(client, sessionPolicy, rl.KeyPrefix+":"+constants.SessionKeyPrefix),
			func() { _ = client.Close() }, nil
	}

	leadLimiter := ratelimit.NewMemory(leadPolicy)
	sessionLimiter := ratelimit.NewMemory(sessionPolicy)
	return leadLimiter, sessionLimiter, func() {
		leadLimiter.Stop()
		sessionLimiter.Stop()
	}, nil
}

// identifierKey is the secret client addresses are hashed with, falling back
// to the token signing key.
func (a *app) identifierKey() []byte {
	if a.cfg.RateLimit.IdentifierKey != "" {
		return []byte(a.cfg.RateLimit.IdentifierKey)
	}
	return []byte(a.cfg.Auth.SigningKey)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
