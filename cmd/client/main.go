// Command client joins a room from the terminal. Lines read from stdin are
// sent as messages; the room's traffic is printed as it arrives.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Tyrowin/roomchat/internal/session"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()

	cfg, err := session.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s := session.New(cfg, session.NewTerminal(os.Stdout, cfg.Colours), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go readInput(ctx, s, stop)

	if err := s.Run(ctx); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

// readInput sends each stdin line. EOF ends the session.
func readInput(ctx context.Context, s *session.Session, stop context.CancelFunc) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := s.Send(scanner.Text()); err != nil {
			if errors.Is(err, session.ErrNotConnected) {
				fmt.Fprintln(os.Stderr, "not connected, message dropped")
				continue
			}
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		}
	}
	stop()
}
