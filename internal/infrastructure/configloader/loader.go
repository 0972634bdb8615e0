package configloader

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"deploy_config/internal/domain/entity"
	"deploy_config/internal/infrastructure/envresolver"
)

const (
	DefaultConfigPath     = "config/deploy.yml"
	DefaultOptimizerRuns  = 200
	DefaultHDPath         = "m/44'/60'/0'/0"
	DefaultHDAccountCount = 20
	DefaultNetworkTimeout = 20 * time.Second
)

var compilerVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Document is a parsed deploy config before environment resolution.
type Document struct {
	Source         string
	Compilers      []entity.CompilerDeclaration // declaration order
	Networks       map[string]entity.NetworkConfig
	NetworkOrder   []string
	DefaultNetwork string
	UnknownKeys    []string
}

type rawCompiler struct {
	Version  string `yaml:"version"`
	Settings struct {
		Optimizer *struct {
			Enabled *bool `yaml:"enabled"`
			Runs    *int  `yaml:"runs"`
		} `yaml:"optimizer"`
		EVMVersion string `yaml:"evmVersion"`
	} `yaml:"settings"`
}

type rawNetwork struct {
	URL       string    `yaml:"url"`
	ChainID   *int64    `yaml:"chainId"`
	Accounts  yaml.Node `yaml:"accounts"`
	TimeoutMs int64     `yaml:"timeout"`
}

type rawHDAccounts struct {
	Mnemonic     *string  `yaml:"mnemonic"`
	PrivateKeys  []string `yaml:"privateKeys"`
	Path         string   `yaml:"path"`
	InitialIndex int      `yaml:"initialIndex"`
	Count        int      `yaml:"count"`
	Passphrase   string   `yaml:"passphrase"`
}

// Load reads the YAML configuration file from the given path and parses it.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config data from %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// Parse decodes a deploy config document.
// The root mapping is walked node by node because the same top-level key
// (notably `solidity`) may legitimately appear more than once.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("config document is empty")
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config root must be a mapping (line %d)", top.Line)
	}

	doc := &Document{Networks: make(map[string]entity.NetworkConfig)}
	seenNetworks := false
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		switch key.Value {
		case "solidity":
			decl, err := decodeCompiler(val)
			if err != nil {
				return nil, fmt.Errorf("solidity (line %d): %w", key.Line, err)
			}
			decl.Line = key.Line
			doc.Compilers = append(doc.Compilers, decl)
		case "networks":
			if seenNetworks {
				return nil, fmt.Errorf("networks declared more than once (line %d)", key.Line)
			}
			seenNetworks = true
			if err := decodeNetworks(val, doc); err != nil {
				return nil, err
			}
		case "defaultNetwork":
			if err := val.Decode(&doc.DefaultNetwork); err != nil {
				return nil, fmt.Errorf("defaultNetwork (line %d): %w", key.Line, err)
			}
		default:
			doc.UnknownKeys = append(doc.UnknownKeys, key.Value)
		}
	}
	return doc, nil
}

func decodeCompiler(node *yaml.Node) (entity.CompilerDeclaration, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return entity.CompilerDeclaration{Form: entity.CompilerFormScalar, Version: node.Value}, nil
	case yaml.MappingNode:
		var raw rawCompiler
		if err := node.Decode(&raw); err != nil {
			return entity.CompilerDeclaration{}, err
		}
		decl := entity.CompilerDeclaration{
			Form:       entity.CompilerFormMapping,
			Version:    raw.Version,
			EVMVersion: raw.Settings.EVMVersion,
		}
		if opt := raw.Settings.Optimizer; opt != nil {
			decl.Optimizer = &entity.OptimizerDeclaration{Enabled: opt.Enabled, Runs: opt.Runs}
		}
		return decl, nil
	default:
		return entity.CompilerDeclaration{}, errors.New("expected a version string or a mapping")
	}
}

func decodeNetworks(node *yaml.Node, doc *Document) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("networks must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		name := key.Value
		if _, dup := doc.Networks[name]; dup {
			return fmt.Errorf("network %q declared more than once (line %d)", name, key.Line)
		}

		var raw rawNetwork
		if err := val.Decode(&raw); err != nil {
			return fmt.Errorf("network %q (line %d): %w", name, key.Line, err)
		}
		accounts, err := decodeAccounts(&raw.Accounts)
		if err != nil {
			return fmt.Errorf("network %q accounts (line %d): %w", name, key.Line, err)
		}

		timeout := DefaultNetworkTimeout
		if raw.TimeoutMs > 0 {
			timeout = time.Duration(raw.TimeoutMs) * time.Millisecond
		}

		doc.Networks[name] = entity.NetworkConfig{
			Name:     name,
			URL:      raw.URL,
			ChainID:  raw.ChainID,
			Accounts: accounts,
			Timeout:  timeout,
			Line:     key.Line,
		}
		doc.NetworkOrder = append(doc.NetworkOrder, name)
	}
	return nil
}

func decodeAccounts(node *yaml.Node) (entity.AccountSource, error) {
	var src entity.AccountSource
	switch node.Kind {
	case 0:
		return src, nil
	case yaml.SequenceNode:
		if err := node.Decode(&src.PrivateKeys); err != nil {
			return src, err
		}
		return src, nil
	case yaml.MappingNode:
		var raw rawHDAccounts
		if err := node.Decode(&raw); err != nil {
			return src, err
		}
		src.PrivateKeys = raw.PrivateKeys
		if raw.Mnemonic != nil {
			m := entity.MnemonicSource{
				Phrase:       *raw.Mnemonic,
				Path:         raw.Path,
				InitialIndex: raw.InitialIndex,
				Count:        raw.Count,
				Passphrase:   raw.Passphrase,
			}
			// Defaults for HD accounts if not set
			if m.Path == "" {
				m.Path = DefaultHDPath
			}
			if m.Count <= 0 {
				m.Count = DefaultHDAccountCount
			}
			src.Mnemonic = &m
		}
		return src, nil
	default:
		return src, fmt.Errorf("unsupported accounts value %q", node.Value)
	}
}

// ResolveCompiler picks the effective compiler settings from every `solidity` declaration.
// The last declaration carrying a version wins; each overridden version that differs is
// returned as an issue wrapping entity.ErrCompilerVersionConflict.
func ResolveCompiler(decls []entity.CompilerDeclaration) (entity.CompilerSettings, []entity.ConfigIssue, error) {
	settings := entity.CompilerSettings{Optimizer: entity.OptimizerSettings{Runs: DefaultOptimizerRuns}}

	winner := -1
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Version != "" {
			winner = i
			break
		}
	}
	if winner < 0 {
		return settings, nil, entity.ErrMissingCompilerVersion
	}
	w := decls[winner]
	if !compilerVersionPattern.MatchString(w.Version) {
		return settings, nil, fmt.Errorf("%w: %q (line %d)", entity.ErrInvalidCompilerVersion, w.Version, w.Line)
	}
	settings.Version = w.Version

	// Settings merge in declaration order so a later block overrides field by field.
	for _, d := range decls {
		if d.EVMVersion != "" {
			settings.EVMVersion = d.EVMVersion
		}
		if d.Optimizer == nil {
			continue
		}
		if d.Optimizer.Enabled != nil {
			settings.Optimizer.Enabled = *d.Optimizer.Enabled
		}
		if d.Optimizer.Runs != nil {
			settings.Optimizer.Runs = *d.Optimizer.Runs
		}
	}
	if settings.Optimizer.Runs <= 0 {
		settings.Optimizer.Runs = DefaultOptimizerRuns
	}

	var issues []entity.ConfigIssue
	for i, d := range decls {
		if i == winner || d.Version == "" {
			continue
		}
		if d.Version != w.Version {
			issues = append(issues, entity.ConfigIssue{
				Kind: entity.IssueCompilerVersionConflict,
				Message: fmt.Sprintf("%v: solidity %s (line %d) overrides %s (line %d)",
					entity.ErrCompilerVersionConflict, w.Version, w.Line, d.Version, d.Line),
				Line: d.Line,
			})
			continue
		}
		issues = append(issues, entity.ConfigIssue{
			Kind:    entity.IssueDuplicateCompiler,
			Message: fmt.Sprintf("solidity %s declared again at line %d", d.Version, d.Line),
			Line:    d.Line,
		})
	}
	return settings, issues, nil
}

// EnvReferences lists every environment variable the document references, sorted.
func (d *Document) EnvReferences() []string {
	seen := make(map[string]struct{})
	add := func(v string) {
		for _, name := range envresolver.References(v) {
			seen[name] = struct{}{}
		}
	}
	for _, n := range d.Networks {
		add(n.URL)
		for _, k := range n.Accounts.PrivateKeys {
			add(k)
		}
		if m := n.Accounts.Mnemonic; m != nil {
			add(m.Phrase)
			add(m.Passphrase)
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
