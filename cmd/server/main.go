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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/tactics-server/internal/chat"
	"github.com/DoyleJ11/tactics-server/internal/config"
	"github.com/DoyleJ11/tactics-server/internal/httpapi"
	"github.com/DoyleJ11/tactics-server/internal/hub"
	"github.com/DoyleJ11/tactics-server/internal/server"
	"github.com/DoyleJ11/tactics-server/internal/ws"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tactics-server:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, hub.Options{
		Rules:  cfg.Rules,
		Censor: chat.NewWordList(cfg.Blocklist),
		Logger: logger,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.New(h, cfg.MaxFrame, logger).ListenAndServe(ctx, cfg.TCPAddr)
	})

	if cfg.HTTPAddr != "" {
		var origins []string
		if cfg.Dev {
			origins = []string{"localhost:*", "127.0.0.1:*"}
		}
		srv := &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: httpapi.SetupRoutes(h, ws.Options{
				MaxFrame:       cfg.MaxFrame,
				OriginPatterns: origins,
				Logger:         logger.Named("ws"),
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()

	// Close every live session before exiting.
	h.Inbox() <- hub.ShutdownHub{}
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		logger.Warn("hub did not stop in time")
	}
	logger.Info("server stopped", zap.Error(err))
	return err
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zc.Build()
}
