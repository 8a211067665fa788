// Command dirverifyd serves the directory verification API over HTTP.
// Business logic lives in the dirverify package; this wires configuration,
// the directory client, and the server lifecycle.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netresearch/dirverify"
	"github.com/netresearch/dirverify/internal/config"
	"github.com/netresearch/dirverify/internal/httpapi"
	"github.com/netresearch/dirverify/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "dirverifyd",
	Short: "dirverifyd - directory identity verification service",
	Long: `dirverifyd verifies claimed identities against an LDAP-compatible
directory: credential authentication via two-phase bind, and profile
resolution from partial identifying fields. Configuration is read from
DIRVERIFY_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	dirCfg := &dirverify.Config{
		ServerURL:        cfg.ServerURL,
		BaseDN:           cfg.BaseDN,
		ServiceDN:        cfg.ServiceDN,
		ServicePassword:  cfg.ServicePassword,
		DialTimeout:      cfg.DialTimeout,
		SizeLimit:        cfg.SizeLimit,
		TimeLimitSeconds: cfg.TimeLimitSecs,
		Logger:           logger,
	}

	var opts []dirverify.Option
	if cfg.InsecureTLS {
		opts = append(opts,
			dirverify.WithTLSConfig(&tls.Config{InsecureSkipVerify: true})) // #nosec G402 -- operator opt-in for test directories
	}

	client, err := dirverify.NewClient(dirCfg, opts...)
	if err != nil {
		return err
	}

	svc := dirverify.NewService(client,
		dirverify.WithServiceLogger(logger),
		dirverify.WithMetrics(metrics.New()),
	)

	handler := httpapi.New(svc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server_stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
