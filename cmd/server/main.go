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

	"dreamrelay/backend/internal/auth"
	"dreamrelay/backend/internal/config"
	"dreamrelay/backend/internal/events"
	"dreamrelay/backend/internal/gateway"
	"dreamrelay/backend/internal/handler"
	"dreamrelay/backend/internal/identity"
	"dreamrelay/backend/internal/registry"
	"dreamrelay/backend/pkg/jwt"

	// Swagger imports
	_ "dreamrelay/backend/docs" // This is important for swag to find the generated docs

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const shutdownTimeout = 10 * time.Second

// @title           Dream Relay API
// @version         1.0
// @description     Lobby and room session server. Realtime traffic runs over the /ws channels; these endpoints expose read-only snapshots and the identity proxy.
// @host            localhost:2567
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cmd := &cli.Command{
		Name:  "dreamrelay",
		Usage: "lobby and room session server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a .env file (default ./.env)",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "listen port, overrides PORT",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the server (default)",
				Action: serve,
			},
			{
				Name:  "token",
				Usage: "mint a development token signed with JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user-id", Usage: "subject of the token", Required: true},
					&cli.StringFlag{Name: "username", Usage: "display name carried in the token", Required: true},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime", Value: jwt.DefaultTTL},
				},
				Action: mintToken,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Printf("dreamrelay %s\n", Version)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("dreamrelay exited")
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if port := cmd.String("port"); port != "" {
		cfg.Port = port
	}
	return cfg, nil
}

// setupLogger configures the global logger from the config and returns it.
func setupLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Use console writer for development (colored output)
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return log.Logger
}

func newVerifier(cfg *config.Config, idClient *identity.Client) auth.Verifier {
	switch cfg.AuthMode {
	case config.AuthRemote:
		return auth.NewRemoteVerifier(idClient)
	case config.AuthNone:
		return auth.NoopVerifier{}
	default:
		return auth.NewJWTVerifier(cfg.JWTSecret)
	}
}

func newBus(cfg *config.Config, logger zerolog.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		return events.Noop{}, nil
	}
	return events.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, logger)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus, err := newBus(cfg, logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	var idClient *identity.Client
	if cfg.IdentityURL != "" {
		idClient = identity.NewClient(cfg.IdentityURL, cfg.IdentityAPIKey, nil)
	}
	if cfg.AuthMode == config.AuthNone {
		logger.Warn().Msg("AUTH_MODE=none: clients identify themselves, do not run this in production")
	}

	gw := gateway.New(registry.New(), gateway.Options{
		Logger:           logger,
		Bus:              bus,
		CountdownSeconds: cfg.CountdownSeconds,
		PasswordCost:     cfg.PasswordCost,
		SendBuffer:       cfg.SendBuffer,
		AllowedOrigins:   cfg.Origins(),
	})
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go gw.Run(loopCtx)

	h := handler.New(gw, idClient, newVerifier(cfg, idClient), logger)
	httpServer := &http.Server{
		Addr: cfg.Addr(),
		Handler: handler.NewRouter(h, handler.RouterOptions{
			AllowedOrigins: cfg.Origins(),
			Swagger:        !cfg.IsProduction(),
		}),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr()).
			Str("auth_mode", cfg.AuthMode).
			Bool("nats", cfg.NATSURL != "").
			Str("version", Version).
			Msg("Starting dreamrelay server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	}

	// Websocket connections are hijacked, so Shutdown does not wait for them;
	// stopping the loop closes every hub.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	stopLoop()
	<-gw.Done()

	logger.Info().Msg("Server stopped")
	return nil
}

func mintToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	token, err := jwt.GenerateToken(cfg.JWTSecret, cmd.String("user-id"), cmd.String("username"), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
