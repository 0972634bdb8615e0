package port

import (
	"context"

	"deploy_config/internal/domain/entity"
)

// NetworkDefinitionProvider defines the interface for looking up known chains.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all known network definitions as a slice.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a definition by its identifier (e.g. "alfajores").
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)

	// GetNetworkDefinitionByChainID returns a definition by chain id.
	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool)
}

// ChainClient is a read-only view of a network endpoint.
type ChainClient interface {
	ChainID(ctx context.Context) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// ChainProber checks that configured endpoints answer with the expected chain id.
type ChainProber interface {
	Probe(ctx context.Context, network entity.ResolvedNetwork) entity.ProbeResult
	ProbeAll(ctx context.Context, networks []entity.ResolvedNetwork) []entity.ProbeResult
}
