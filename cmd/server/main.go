package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/typeclash/typeclash-backend/internal/config"
	"github.com/typeclash/typeclash-backend/internal/httpapi"
	"github.com/typeclash/typeclash-backend/internal/matchmaking"
	"github.com/typeclash/typeclash-backend/internal/registry"
	"github.com/typeclash/typeclash-backend/internal/timer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	timers := timer.New(clock, log)
	// The actors live on the background context so the shutdown messages
	// below, not the signal, decide when they stop.
	reg := registry.New(context.Background(), cfg.Rules, timers, log)
	mm := matchmaking.New(context.Background(), reg, cfg.Rules, cfg.MinToStartMatch, cfg.MatchmakingInterval, clock, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(reg, mm, log),
		// Tie request contexts to the signal context so websocket read
		// loops unwind on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		mm.Inbox() <- matchmaking.Shutdown{}
		reg.Inbox() <- registry.ShutdownAll{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
