package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/gateway"
	"github.com/trackvision/portal-web/internal/config"
	"github.com/trackvision/portal-web/server"
	"github.com/trackvision/portal-web/storage"
)

const idleSweepInterval = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.LoadFile(path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load config file")
		}
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	clientStorage, closeStorage, err := newClientStorage(ctx, c)
	if err != nil {
		return err
	}
	defer closeStorage()

	api, err := gateway.New(c.GetAPIBaseURL(), gateway.WithTimeout(c.GetAPITimeout()))
	if err != nil {
		return fmt.Errorf("gateway.New: %w", err)
	}

	handler, err := server.New(c, api, clientStorage)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newClientStorage builds the per-browser storage for the configured backend.
func newClientStorage(ctx context.Context, c config.Config) (server.ClientStorage, func(), error) {
	cookie := server.CookieSettings{
		Name:   c.GetBrowserCookieName(),
		MaxAge: c.GetBrowserCookieMaxAge(),
		Secure: c.GetSecureCookies(),
	}

	switch c.GetStorageBackend() {
	case config.StorageBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("client storage: redis")
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Err(err).Msg("failed to close redis client")
			}
		}
		return server.NewRepoClientStorage(storage.NewRedisRepo(client, c.GetStorageTTL()), cookie), closeFn, nil

	case config.StorageBackendCookie:
		sealer, err := storage.NewSealer(c.GetStorageSecret())
		if err != nil {
			return nil, nil, fmt.Errorf("sealed cookie storage: %w", err)
		}
		log.Info().Msg("client storage: sealed cookie")
		return server.NewSealedClientStorage(sealer, cookie), func() {}, nil
	}

	repo := storage.NewInMemoryRepo()
	go repo.SweepIdle(ctx, c.GetStorageTTL(), idleSweepInterval)
	log.Info().Msg("client storage: in memory")
	return server.NewRepoClientStorage(repo, cookie), func() {}, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
