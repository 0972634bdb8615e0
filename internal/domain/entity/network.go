package entity

import "time"

// NetworkDefinition describes a chain this tool knows about independently of any config file.
type NetworkDefinition struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"` // matches the network key in deploy configs, e.g. "celo"
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	Local            bool     `json:"local" yaml:"local"` // dev chains; any chain id is accepted
}

// NetworkConfig is one `networks.<name>` entry before resolution.
type NetworkConfig struct {
	Name     string
	URL      string // may contain ${VAR} references
	ChainID  *int64 // nil when the entry omits chainId
	Accounts AccountSource
	Timeout  time.Duration
	Line     int
}

// ResolvedNetwork is a validated network entry with its accounts resolved.
type ResolvedNetwork struct {
	Name            string           `json:"name"`
	URL             string           `json:"-"`
	DisplayURL      string           `json:"url"` // URL without credentials or query
	ChainID         uint64           `json:"chainId,omitempty"`
	ChainIDDeclared bool             `json:"chainIdDeclared"`
	Accounts        ResolvedAccounts `json:"accounts"`
	Timeout         time.Duration    `json:"timeout"`
}
