package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/cost-estimator/internal/auth"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/iwvelando/cost-estimator/internal/plans"
	"github.com/iwvelando/cost-estimator/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				a.cfg.Server.Address = address
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	const op = "main.serve"

	if a.cfg.Auth.SigningKey == "" {
		return errors.New("auth.signingKey is required to serve (set COST_ESTIMATOR_AUTH_SIGNINGKEY)")
	}
	tokens, err := auth.NewJWTAuthority(a.cfg.Auth.SigningKey, a.cfg.Auth.Issuer, a.cfg.Auth.Audience)
	if err != nil {
		return err
	}
	adminCred, err := auth.NewAdminCredential(a.cfg.Auth.AdminPasswordHash)
	if err != nil {
		return err
	}
	if !adminCred.Enabled() {
		a.logger.Warn("auth.adminPasswordHash not set, admin sessions are disabled", zap.String("op", op))
	}

	table, err := a.table()
	if err != nil {
		return err
	}
	est := estimator.New(table)

	planStore, leadStore, closer, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			a.logger.Error("failed to close storage", zap.String("op", op), zap.Error(err))
		}
	}()

	leadLimiter, sessionLimiter, stopLimiters, err := a.limiters(ctx)
	if err != nil {
		return err
	}
	defer stopLimiters()
	identifierKey := a.identifierKey()

	handler := server.NewHandler(server.Dependencies{
		Logger:            a.logger,
		Estimator:         est,
		Plans:             plans.NewService(planStore, est, a.logger),
		Leads:             leads.NewService(leadStore, est, leadLimiter, a.logger, leads.WithIdentifierKey(identifierKey)),
		Tokens:            tokens,
		AdminPassword:     adminCred,
		TokenTTL:          a.cfg.Auth.TokenTTL,
		RetryAfter:        a.cfg.RateLimit.Window,
		MaxBodySize:       a.cfg.Server.BodySizeBytes(),
		AllowedOrigins:    a.cfg.Server.AllowedOrigins,
		Version:           version,
		TrustedProxies:    a.cfg.Server.TrustedProxyPrefixes(),
		SessionLimiter:    sessionLimiter,
		SessionRetryAfter: a.cfg.RateLimit.SessionWindow,
		IdentifierKey:     identifierKey,
	})

	a.logger.Info("starting cost-estimator",
		zap.String("op", op),
		zap.String("version", version),
		zap.String("storage", a.cfg.Storage.Driver),
		zap.String("rateLimit", a.cfg.RateLimit.Backend),
		zap.Int("trustedProxies", len(a.cfg.Server.TrustedProxyPrefixes())),
		zap.Int("destinations", table.Len()),
	)
	return server.Run(ctx, a.cfg.Server, handler, a.logger)
}
