package entity

// IssueKind classifies non-fatal findings recorded while building a DeployConfig.
type IssueKind string

const (
	IssueCompilerVersionConflict IssueKind = "compiler_version_conflict"
	IssueDuplicateCompiler       IssueKind = "duplicate_compiler_declaration"
	IssueChainIDInferred         IssueKind = "chain_id_inferred"
	IssueUnknownKey              IssueKind = "unknown_key"
	IssueDuplicateAccount        IssueKind = "duplicate_account"
)

// ConfigIssue is a discrepancy the loader resolved on its own but must not hide.
type ConfigIssue struct {
	Kind    IssueKind `json:"kind"`
	Network string    `json:"network,omitempty"`
	Message string    `json:"message"`
	Line    int       `json:"line,omitempty"`
}

// DeployConfig is the read-only settings record handed to the deployment toolchain.
type DeployConfig struct {
	Source         string                     `json:"source"`
	Compiler       CompilerSettings           `json:"compiler"`
	Networks       map[string]ResolvedNetwork `json:"networks"`
	NetworkOrder   []string                   `json:"networkOrder"`
	DefaultNetwork string                     `json:"defaultNetwork,omitempty"`
	Issues         []ConfigIssue              `json:"issues,omitempty"`
}

// Network returns the resolved entry for name.
func (c *DeployConfig) Network(name string) (ResolvedNetwork, bool) {
	if c == nil {
		return ResolvedNetwork{}, false
	}
	n, ok := c.Networks[name]
	return n, ok
}

// OrderedNetworks returns networks in declaration order.
func (c *DeployConfig) OrderedNetworks() []ResolvedNetwork {
	if c == nil {
		return []ResolvedNetwork{}
	}
	out := make([]ResolvedNetwork, 0, len(c.NetworkOrder))
	for _, name := range c.NetworkOrder {
		if n, ok := c.Networks[name]; ok {
			out = append(out, n)
		}
	}
	return out
}

// IssuesOfKind filters recorded issues.
func (c *DeployConfig) IssuesOfKind(kind IssueKind) []ConfigIssue {
	var out []ConfigIssue
	if c == nil {
		return out
	}
	for _, is := range c.Issues {
		if is.Kind == kind {
			out = append(out, is)
		}
	}
	return out
}
