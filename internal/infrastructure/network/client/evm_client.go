package client

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"deploy_config/internal/app/port"
)

// EVMClient implements port.ChainClient for EVM-compatible endpoints. It only reads.
type EVMClient struct {
	ethClient      *ethclient.Client
	rpcURL         string
	rpcCallTimeout time.Duration
}

// NewEVMClient dials the first reachable URL out of rpcURLs.
func NewEVMClient(ctx context.Context, rpcURLs []string, connectionTimeout, rpcCallTimeout time.Duration) (port.ChainClient, error) {
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("no RPC URL given")
	}
	var lastErr error

	for _, rpcURL := range rpcURLs {
		dialCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
		client, err := ethclient.DialContext(dialCtx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{ethClient: client, rpcURL: rpcURL, rpcCallTimeout: rpcCallTimeout}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC: %w", err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed: %w", lastErr)
}

// ChainID asks the endpoint for its chain id (eth_chainId).
func (c *EVMClient) ChainID(ctx context.Context) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	id, err := c.ethClient.ChainID(callCtx)
	if err != nil {
		return 0, fmt.Errorf("eth_chainId failed: %w", err)
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("eth_chainId returned out-of-range value %s", id.String())
	}
	return id.Uint64(), nil
}

// BlockNumber returns the latest block height (eth_blockNumber).
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	n, err := c.ethClient.BlockNumber(callCtx)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}
	return n, nil
}

// Close releases the underlying RPC client.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
