package entity

// AccountKind identifies how a network obtains its signing accounts.
type AccountKind string

const (
	AccountKindNone        AccountKind = "none"
	AccountKindMnemonic    AccountKind = "mnemonic"
	AccountKindPrivateKeys AccountKind = "privateKeys"
	AccountKindAmbiguous   AccountKind = "ambiguous" // both strategies declared
)

// MnemonicSource is an HD account descriptor. Phrase may hold a ${VAR} reference.
type MnemonicSource struct {
	Phrase       string `yaml:"mnemonic"`
	Path         string `yaml:"path"`
	InitialIndex int    `yaml:"initialIndex"`
	Count        int    `yaml:"count"`
	Passphrase   string `yaml:"passphrase"`
}

// AccountSource is the unresolved `accounts` entry of a network.
type AccountSource struct {
	Mnemonic    *MnemonicSource
	PrivateKeys []string // raw values, usually ${VAR} references
}

// Kind reports which strategy the source declares.
func (s AccountSource) Kind() AccountKind {
	hasMnemonic := s.Mnemonic != nil
	hasKeys := len(s.PrivateKeys) > 0
	switch {
	case hasMnemonic && hasKeys:
		return AccountKindAmbiguous
	case hasMnemonic:
		return AccountKindMnemonic
	case hasKeys:
		return AccountKindPrivateKeys
	default:
		return AccountKindNone
	}
}

// ResolvedAccounts is an account source after environment lookups and validation.
// Secret material is held in unexported fields so it never reaches JSON, YAML or logs.
type ResolvedAccounts struct {
	Kind           AccountKind `json:"kind"`
	Addresses      []string    `json:"addresses,omitempty"` // derived from private keys
	MnemonicWords  int         `json:"mnemonicWords,omitempty"`
	DerivationPath string      `json:"derivationPath,omitempty"`
	InitialIndex   int         `json:"initialIndex,omitempty"`
	Count          int         `json:"count,omitempty"`
	EnvVars        []string    `json:"envVars,omitempty"`

	privateKeys []string
	mnemonic    string
	passphrase  string
}

// NewPrivateKeyAccounts builds a resolved key-list source.
func NewPrivateKeyAccounts(keys, addresses, envVars []string) ResolvedAccounts {
	return ResolvedAccounts{
		Kind:        AccountKindPrivateKeys,
		Addresses:   addresses,
		EnvVars:     envVars,
		privateKeys: keys,
	}
}

// NewMnemonicAccounts builds a resolved HD source.
func NewMnemonicAccounts(phrase string, words int, src MnemonicSource, envVars []string) ResolvedAccounts {
	return ResolvedAccounts{
		Kind:           AccountKindMnemonic,
		MnemonicWords:  words,
		DerivationPath: src.Path,
		InitialIndex:   src.InitialIndex,
		Count:          src.Count,
		EnvVars:        envVars,
		mnemonic:       phrase,
		passphrase:     src.Passphrase,
	}
}

// PrivateKeys returns a copy of the resolved hex keys.
func (a ResolvedAccounts) PrivateKeys() []string {
	out := make([]string, len(a.privateKeys))
	copy(out, a.privateKeys)
	return out
}

// Mnemonic returns the resolved phrase and passphrase.
func (a ResolvedAccounts) Mnemonic() (phrase, passphrase string) {
	return a.mnemonic, a.passphrase
}

// IsEmpty is true when no usable secret was resolved.
func (a ResolvedAccounts) IsEmpty() bool {
	switch a.Kind {
	case AccountKindPrivateKeys:
		return len(a.privateKeys) == 0
	case AccountKindMnemonic:
		return a.mnemonic == ""
	default:
		return true
	}
}
