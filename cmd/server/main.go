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

	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/internal/httpapi"
	"github.com/DoyleJ11/skaters-limit/internal/hub"
	"github.com/DoyleJ11/skaters-limit/internal/lobby"
	"github.com/DoyleJ11/skaters-limit/internal/logx"
	"github.com/DoyleJ11/skaters-limit/internal/settings"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := settings.Flags("server")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	s, err := settings.Load(flags)
	if err != nil {
		return err
	}

	logger, level, err := logx.New(s.AppEnv, true)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.ReadServerConfig(s.ConfigDir, s.AdminIDs, logger)
	if err != nil {
		return err
	}
	level.SetLevel(logx.LevelFor(cfg.LogInfo))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rooms outlive the signal context so ShutdownHub can close them in order.
	h := hub.NewHub(context.Background(), lobby.Options{BuildID: s.BuildID, Config: cfg, Logger: logger})
	srv := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           httpapi.SetupRoutes(h, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Warn("Listening",
			zap.String("addr", s.ListenAddr),
			zap.String("buildId", s.BuildID),
			zap.Int("maxSkaters", cfg.MaxSkatersPerTeam),
			zap.Bool("teamBalancing", cfg.TeamBalancing))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Inbox() <- hub.ShutdownHub{}

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return err
	}
	logger.Warn("Server stopped")
	return nil
}
