package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/calm/internal/api"
	"github.com/terraincognita07/calm/internal/cli"
	"github.com/terraincognita07/calm/internal/config"
	"github.com/terraincognita07/calm/internal/db"
	"github.com/terraincognita07/calm/internal/logger"
	"github.com/terraincognita07/calm/internal/metrics"
	"github.com/terraincognita07/calm/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

const usage = `usage: calm [command]

commands:
  serve                                 run the HTTP API (default)
  create-user --email EMAIL --name NAME create an account, prompting for its password
  reset-password EMAIL                  replace a password with a temporary one
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "calm: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve", "create-user", "reset-password":
	case "help", "-h", "--help":
		_, err := fmt.Fprint(stdout, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if command == "reset-password" && len(args) != 1 {
		return errors.New("reset-password takes exactly one email argument")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	switch command {
	case "create-user":
		return cli.RunCreateUserCommand(ctx, cliEnvironment(cfg, log, stdout), args)
	case "reset-password":
		return cli.RunResetPasswordCommand(ctx, cliEnvironment(cfg, log, stdout), args[0])
	default:
		return serve(ctx, cfg, log)
	}
}

func databaseOptions(cfg *config.Config, log *logger.Logger) db.Options {
	return db.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
		Logger: log,
	}
}

func cliEnvironment(cfg *config.Config, log *logger.Logger, stdout io.Writer) cli.Environment {
	return cli.Environment{
		Database: databaseOptions(cfg, log),
		Stdin:    os.Stdin,
		Stdout:   stdout,
	}
}

// server is the assembled API with the resources it must release.
type server struct {
	app     *fiber.App
	limiter ratelimit.Limiter
	close   func()
}

// newServer opens storage and wires the handler, limiter and app. The
// configured location travels through the handler options only.
func newServer(cfg *config.Config, log *logger.Logger) (*server, error) {
	database, err := db.Open(databaseOptions(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	handler, err := api.NewHandler(database, api.Options{
		SecretKey:             cfg.SecretKey,
		CookieSecure:          cfg.CookieSecure,
		TokenTTL:              cfg.TokenTTL,
		Location:              cfg.Location,
		HealthDataOwnerWrites: cfg.HealthDataOwnerWrites,
		Logger:                log,
		Metrics:               metrics.New(),
	})
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	limiter, closeLimiter, err := ratelimit.New(cfg.RedisURL, cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("rate limiter init failed: %w", err)
	}

	return &server{
		app: api.NewApp(handler, api.AppOptions{
			AllowedOrigins: cfg.AllowedOrigins(),
			Limiter:        limiter,
		}),
		limiter: limiter,
		close: func() {
			_ = closeLimiter()
			closeDB()
		},
	}, nil
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	srv, err := newServer(cfg, log)
	if err != nil {
		return err
	}
	defer srv.close()
	app := srv.app

	lifecycleCtx, cancelLifecycle := context.WithCancel(ctx)
	defer cancelLifecycle()
	if memory, ok := srv.limiter.(*ratelimit.Memory); ok {
		go memory.Run(lifecycleCtx)
	}

	go func() {
		<-lifecycleCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithComponent("server").WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithComponent("server").WithFields(map[string]any{
		"port":      cfg.Port,
		"db_driver": cfg.DBDriver,
		"tz":        cfg.Location.String(),
		"redis":     cfg.RedisURL != "",
	}).Info("calm listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
