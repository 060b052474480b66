// Command chaincheck verifies that the configured JSON-RPC node answers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"

	"github.com/Tyrowin/roomchat/internal/chain"
)

func main() {
	_ = godotenv.Load()

	rpcURL := os.Getenv("CHAIN_RPC_URL")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	checker := chain.NewChecker(rpcURL, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	status, err := checker.CheckConnectivity(ctx)
	if err != nil {
		color.Red.Println("FAILED")
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		os.Exit(1)
	}

	color.Green.Println("SUCCESS")
	fmt.Printf("  network: %s\n  chain id: %d\n  block: %d\n", status.NetworkName, status.ChainID, status.BlockHeight)
}
