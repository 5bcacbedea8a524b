package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shaun/pagesmith/internal/api"
	"github.com/shaun/pagesmith/internal/auth"
	"github.com/shaun/pagesmith/internal/config"
	"github.com/shaun/pagesmith/internal/deploy"
	"github.com/shaun/pagesmith/internal/github"
	"github.com/shaun/pagesmith/internal/llm"
	"github.com/shaun/pagesmith/internal/memstore"
	"github.com/shaun/pagesmith/internal/notify"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var envFile string
	cmd := &cobra.Command{
		Use:           "pagesmith",
		Short:         "Build and publish single-page apps from a webhook brief",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotenv(envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load(v))
		},
	}
	f := cmd.Flags()
	f.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	f.String("addr", "", "listen address (default :$PORT or :7860)")
	f.String("backend", "", "publish backend: github or memory")
	f.String("log-level", "", "debug, info, warn or error")
	for key, flag := range map[string]string{"addr": "addr", "backend": "backend", "log_level": "log-level"} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

func serve(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}
	if cfg.Secret == "" {
		log.Warn("PAGESMITH_SECRET not set; every task request will be rejected")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return err
	}
	var store deploy.RepoStore
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("publishing to in-memory store; nothing reaches GitHub")
		store = memstore.NewStore("local")
	default:
		store = github.NewClient(ctx, cfg.GitHubToken)
	}
	notifier := notify.New(log.Named("notify"),
		notify.WithAttempts(cfg.NotifyAttempts),
		notify.WithInitialDelay(cfg.NotifyInitialDelay),
		notify.WithTimeout(cfg.NotifyTimeout))
	svc := deploy.NewService(auth.NewVerifier(cfg.Secret), store, gen, notifier, log.Named("deploy"),
		deploy.WithPauses(cfg.DeletePause, cfg.CommitPause))
	handler := api.NewHandler(svc, cfg.UserCode, log.Named("api"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(handler, log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("pagesmith listening", zap.String("addr", cfg.Addr),
			zap.String("backend", cfg.Backend), zap.String("llm", cfg.LLMProvider))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
