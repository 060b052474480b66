// Package chain checks connectivity to an EVM JSON-RPC node by asking it for
// its chain id and latest block number.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrUpstream wraps every RPC failure.
var ErrUpstream = errors.New("chain rpc error")

// DefaultRPCURL is the public Arbitrum One endpoint.
const DefaultRPCURL = "https://arb1.arbitrum.io/rpc"

var networkNames = map[uint64]string{
	1:        "mainnet",
	10:       "optimism",
	56:       "bnb",
	137:      "matic",
	8453:     "base",
	42161:    "arbitrum",
	421614:   "arbitrum-sepolia",
	11155111: "sepolia",
}

// Status is the result of a successful connectivity check.
type Status struct {
	NetworkName string `json:"network"`
	ChainID     uint64 `json:"chainId"`
	BlockHeight uint64 `json:"blockNumber"`
}

// NetworkName returns the conventional name of chainID, or "unknown".
func NetworkName(chainID uint64) string {
	if name, ok := networkNames[chainID]; ok {
		return name
	}
	return "unknown"
}

// Checker talks to one JSON-RPC endpoint.
type Checker struct {
	url  string
	http *http.Client
	log  *slog.Logger
}

// NewChecker creates a checker for rpcURL, falling back to DefaultRPCURL.
func NewChecker(rpcURL string, httpClient *http.Client, log *slog.Logger) *Checker {
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Checker{url: rpcURL, http: httpClient, log: log}
}

// CheckConnectivity pings the node and reports which chain it serves and how
// far it has synced.
func (c *Checker) CheckConnectivity(ctx context.Context) (Status, error) {
	rpcClient, err := rpc.DialOptions(ctx, c.url, rpc.WithHTTPClient(c.http))
	if err != nil {
		return Status{}, fmt.Errorf("%w: dial %s: %v", ErrUpstream, c.url, err)
	}
	client := ethclient.NewClient(rpcClient)
	defer client.Close()

	id, err := client.ChainID(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("%w: eth_chainId: %v", ErrUpstream, err)
	}
	if !id.IsUint64() {
		return Status{}, fmt.Errorf("%w: eth_chainId: %s out of range", ErrUpstream, id)
	}
	height, err := client.BlockNumber(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("%w: eth_blockNumber: %v", ErrUpstream, err)
	}

	status := Status{NetworkName: NetworkName(id.Uint64()), ChainID: id.Uint64(), BlockHeight: height}
	c.log.Debug("Chain connectivity ok", "network", status.NetworkName, "chainId", status.ChainID, "block", height)
	return status, nil
}
