package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Tyrowin/roomchat/internal/chain"
	"github.com/Tyrowin/roomchat/internal/klipy"
	"github.com/Tyrowin/roomchat/internal/server"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Room chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// A missing .env file is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := server.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	s := server.New(cfg, logger,
		server.WithTrendingFetcher(klipy.New(cfg.KlipyBaseURL, cfg.KlipyAPIKey, cfg.KlipyCustomerID, nil, logger)),
		server.WithConnectivityChecker(chain.NewChecker(cfg.ChainRPCURL, nil, logger)),
	)
	httpServer := server.CreateServer(cfg.Port, s.Routes())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	errChan := make(chan error, 1)
	go func() {
		if err := server.StartServer(httpServer, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case sig := <-signals:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-errChan:
		return exitRuntime, fmt.Errorf("http server: %w", err)
	}

	// Stop accepting upgrades first, then close live connections so every
	// room empties before the process exits.
	if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, logger); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	if err := s.Shutdown(cfg.ShutdownTimeout); err != nil {
		logger.Warn("Connections did not close in time", "error", err)
	}

	logger.Info("Server stopped cleanly")
	return exitOK, nil
}
