package entity

// OptimizerSettings mirrors the solc optimizer block.
type OptimizerSettings struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Runs    int  `json:"runs" yaml:"runs"` // Trade-off between deploy size and per-call gas
}

// CompilerSettings is the compiler target after duplicate declarations have been resolved.
type CompilerSettings struct {
	Version    string            `json:"version" yaml:"version"`
	Optimizer  OptimizerSettings `json:"optimizer" yaml:"optimizer"`
	EVMVersion string            `json:"evmVersion,omitempty" yaml:"evmVersion,omitempty"`
}

// CompilerDeclarationForm tells whether a `solidity` entry was written as a bare version or as a mapping.
type CompilerDeclarationForm string

const (
	CompilerFormScalar  CompilerDeclarationForm = "scalar"
	CompilerFormMapping CompilerDeclarationForm = "mapping"
)

// CompilerDeclaration is one `solidity` entry as it appears in the source document.
// A document may carry several of them; Line keeps them ordered.
type CompilerDeclaration struct {
	Form       CompilerDeclarationForm
	Version    string
	Optimizer  *OptimizerDeclaration // nil when the entry has no settings.optimizer block
	EVMVersion string
	Line       int
}

// OptimizerDeclaration keeps pointer fields so "not set" can be told apart from false/0.
type OptimizerDeclaration struct {
	Enabled *bool
	Runs    *int
}
