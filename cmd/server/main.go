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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/idp"
	"github.com/lefeverd/openid-proxy/internal/config"
	"github.com/lefeverd/openid-proxy/routes"
	"github.com/lefeverd/openid-proxy/server"
	"github.com/lefeverd/openid-proxy/sessions"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New: %w", err)
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	store, err := newSessionStore(c)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	ctx := context.Background()
	idpClient, err := idp.New(ctx, c, store)
	if err != nil {
		return fmt.Errorf("idp.New: %w", err)
	}

	proxyRoutes, err := routes.Load(c.GetRoutesFile())
	if err != nil {
		return fmt.Errorf("routes.Load: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           server.New(c, store, idpClient, proxyRoutes),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func setupLogging(c config.Config) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if c.GetDebug() || c.GetEnv() == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newSessionStore(c config.Config) (sessions.Store, error) {
	if c.GetRedisHost() == "" {
		log.Warn().Msg("REDIS_HOST not set, using the in-memory session store. " +
			"Sessions will not survive restarts and cannot be shared between processes.")
		return sessions.NewInMemoryStore(), nil
	}
	return sessions.NewRedisStore(context.Background(), c.GetRedisHost(), c.GetRedisPort(), c.GetRedisPassword())
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
