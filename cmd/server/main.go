// Command server runs the Connexa HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/connexa-app/connexa/api"
	"github.com/connexa-app/connexa/auth/password"
	"github.com/connexa-app/connexa/auth/revocation"
	"github.com/connexa-app/connexa/auth/token"
	"github.com/connexa-app/connexa/config"
	"github.com/connexa-app/connexa/logger"
	"github.com/connexa-app/connexa/server"
	"github.com/connexa-app/connexa/server/middleware"
	"github.com/connexa-app/connexa/store"
	"github.com/connexa-app/connexa/version"
)

func main() {
	configFile := flag.String("config", "", "path to config file (yml)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users, err := store.NewSQLiteStore(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer users.Close()
	log.Info("User store ready", map[string]interface{}{
		"path": cfg.Database.Path,
	})

	tokens, err := token.NewService(cfg.Token)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	hasher := password.NewBcryptHasher(
		password.WithCost(cfg.Password.Cost),
		password.WithMinLength(cfg.Password.MinLength),
	)

	revoked := revocation.NewMemoryStore(log)
	revoked.StartSweeper(ctx, cfg.Revocation.SweepInterval, func(tok string) bool {
		return token.Expired(tok)
	})

	srv := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, log)

	engine := srv.GinEngine()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.SecurityHeaders(),
		middleware.CORS(&middleware.CORSConfig{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			ExposedHeaders:   cfg.CORS.ExposedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
		}),
	)

	authn := middleware.NewAuthenticator(tokens, revoked, users, log)
	handlers := api.New(users, hasher, tokens, revoked, log)
	handlers.RegisterRoutes(engine, authn, cfg.RateLimit)

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("Connexa API ready", map[string]interface{}{
		"addr":        srv.Addr(),
		"environment": cfg.Environment,
		"version":     version.Short(),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutdown signal received", map[string]interface{}{
		"signal": sig.String(),
	})

	return srv.Stop(context.Background())
}
