// Command awesome serves the blog application.
//
// Run against a local MySQL with the default configuration:
//
//	go run ./cmd/awesome -init-db
//
// Or against a SQLite file:
//
//	AWESOME_DB_DRIVER=sqlite AWESOME_DB_DSN=awesome.db go run ./cmd/awesome -init-db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/bjaus/web"
	"github.com/bjaus/web/config"
	"github.com/bjaus/web/db"
	"github.com/bjaus/web/internal/blog"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the default configuration")
	addr := flag.String("addr", "", "listen address (overrides the configuration)")
	initDB := flag.Bool("init-db", false, "create the application tables before serving")
	debug := flag.Bool("debug", false, "log at debug level, including SQL")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(*configPath, *addr, *initDB); err != nil {
		slog.Error("awesome failed", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(configPath, addr string, initDB bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			slog.Error("close database", "err", err)
		}
	}()

	if initDB {
		if err := blog.CreateTables(ctx, pool); err != nil {
			return err
		}
		slog.Info("tables created")
	}

	r, err := newRouter(cfg, blog.NewStore(pool))
	if err != nil {
		return err
	}

	if err := r.ListenAndServe(ctx, cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newRouter(cfg config.Config, store *blog.Store) (*web.Router, error) {
	r := web.New()

	// Global middleware.
	r.Use(web.Recovery())
	r.Use(web.RequestID())
	r.Use(web.Logger(slog.Default()))
	if cfg.Server.Rate > 0 {
		r.Use(web.RateLimit(web.RateLimitConfig{Rate: cfg.Server.Rate, Burst: cfg.Server.Burst}))
	}
	if cfg.Server.BodyLimit > 0 {
		r.Use(web.BodyLimit(cfg.Server.BodyLimit))
	}
	if cfg.Server.Timeout > 0 {
		r.Use(web.Timeout(cfg.Server.Timeout))
	}

	if err := r.AddRoutes(blog.Routes(store, blog.WithCookieSecret(cfg.Session.Secret))...); err != nil {
		return nil, err
	}
	r.StaticDir("/static", cfg.Server.StaticDir)
	return r, nil
}
