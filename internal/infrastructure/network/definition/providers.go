package networkdefinition

import (
	"fmt"
	"sort"

	"deploy_config/internal/app/port"
	"deploy_config/internal/domain/entity"
)

// NetworkDefinitionProvider answers "which chain id does this network name mean".
type NetworkDefinitionProvider struct {
	logger  port.Logger
	byName  map[string]entity.NetworkDefinition
	byChain map[uint64]entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Localhost = entity.NetworkDefinition{
		ChainID:       31337,
		Name:          "Local development chain",
		Identifier:    "localhost",
		NativeSymbol:  "ETH",
		Decimals:      18,
		PrimaryRPCURL: "http://127.0.0.1:8545",
		Local:         true,
	}
	Hardhat = entity.NetworkDefinition{
		ChainID:       31337,
		Name:          "In-process development chain",
		Identifier:    "hardhat",
		NativeSymbol:  "ETH",
		Decimals:      18,
		PrimaryRPCURL: "http://127.0.0.1:8545",
		Local:         true,
	}
	Alfajores = entity.NetworkDefinition{
		ChainID:          44787,
		Name:             "Celo Alfajores Testnet",
		Identifier:       "alfajores",
		NativeSymbol:     "CELO",
		Decimals:         18,
		PrimaryRPCURL:    "https://alfajores-forno.celo-testnet.org",
		FallbackRPCURLs:  []string{},
		BlockExplorerURL: "https://alfajores.celoscan.io",
	}
	Baklava = entity.NetworkDefinition{
		ChainID:          62320,
		Name:             "Celo Baklava Testnet",
		Identifier:       "baklava",
		NativeSymbol:     "CELO",
		Decimals:         18,
		PrimaryRPCURL:    "https://baklava-forno.celo-testnet.org",
		FallbackRPCURLs:  []string{},
		BlockExplorerURL: "https://explorer.celo.org/baklava",
	}
	Celo = entity.NetworkDefinition{
		ChainID:          42220,
		Name:             "Celo Mainnet",
		Identifier:       "celo",
		NativeSymbol:     "CELO",
		Decimals:         18,
		PrimaryRPCURL:    "https://forno.celo.org",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/celo"},
		BlockExplorerURL: "https://celoscan.io",
	}
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "mainnet",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	Sepolia = entity.NetworkDefinition{
		ChainID:          11155111,
		Name:             "Sepolia Testnet",
		Identifier:       "sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		BlockExplorerURL: "https://sepolia.etherscan.io",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Identifier:       "polygon",
		NativeSymbol:     "POL",
		Decimals:         18,
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://mainnet.optimism.io",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com"},
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://mainnet.base.org",
		FallbackRPCURLs:  []string{"https://base.publicnode.com"},
		BlockExplorerURL: "https://basescan.org",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = []entity.NetworkDefinition{
	Localhost, Hardhat, Alfajores, Baklava, Celo,
	Ethereum, Sepolia, Polygon, Arbitrum, Optimism, Base,
}

// NewNetworkDefinitionProvider creates a provider over the built-in definitions plus extra.
// An extra definition replaces a built-in one with the same identifier.
func NewNetworkDefinitionProvider(log port.Logger, extra ...entity.NetworkDefinition) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:  log,
		byName:  make(map[string]entity.NetworkDefinition),
		byChain: make(map[uint64]entity.NetworkDefinition),
	}
	for _, def := range allKnownDefinitions {
		p.add(def)
	}
	for _, def := range extra {
		if _, exists := p.byName[def.Identifier]; exists {
			p.logger.Debug(fmt.Sprintf("Overriding built-in network definition '%s'", def.Identifier), "chain_id", def.ChainID)
		}
		p.add(def)
	}
	p.logger.Debug("NetworkDefinitionProvider initialized", "known_networks", len(p.byName))
	return p
}

func (p *NetworkDefinitionProvider) add(def entity.NetworkDefinition) {
	p.byName[def.Identifier] = def
	// Local dev chains share ids; the first one registered keeps the chain-id slot.
	if existing, taken := p.byChain[def.ChainID]; !taken || (existing.Local && !def.Local) {
		p.byChain[def.ChainID] = def
	}
}

// GetAllNetworkDefinitions returns known definitions sorted by identifier.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(p.byName))
	for _, def := range p.byName {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Identifier < defs[j].Identifier })
	return defs
}

// GetNetworkDefinitionByName returns a specific network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.byName[identifier]
	return def, ok
}

// GetNetworkDefinitionByChainID returns a specific network definition by its chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.byChain[chainID]
	return def, ok
}
