package accountloader

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"

	"deploy_config/internal/app/port"
	"deploy_config/internal/domain/entity"
	"deploy_config/internal/infrastructure/envresolver"
	"deploy_config/internal/pkg/utils"
)

var validMnemonicLengths = map[int]struct{}{12: {}, 15: {}, 18: {}, 21: {}, 24: {}}

// AccountResolver turns a network's account source into resolved, validated account material.
type AccountResolver struct {
	env    port.Environment
	logger port.Logger
}

// NewAccountResolver creates a resolver reading secrets from env only.
func NewAccountResolver(env port.Environment, log port.Logger) *AccountResolver {
	return &AccountResolver{env: env, logger: log}
}

// Resolve expands and validates src for the named network. The caller is expected to
// have checked src.Kind() already; none/ambiguous sources are rejected here as well.
// Duplicate keys are reported through the returned issues.
func (r *AccountResolver) Resolve(network string, src entity.AccountSource) (entity.ResolvedAccounts, []entity.ConfigIssue, error) {
	switch src.Kind() {
	case entity.AccountKindPrivateKeys:
		return r.resolvePrivateKeys(network, src.PrivateKeys)
	case entity.AccountKindMnemonic:
		acc, err := r.resolveMnemonic(network, *src.Mnemonic)
		return acc, nil, err
	case entity.AccountKindAmbiguous:
		return entity.ResolvedAccounts{}, nil, entity.ErrMultipleAccountStrategies
	default:
		return entity.ResolvedAccounts{}, nil, entity.ErrNoAccountStrategy
	}
}

func (r *AccountResolver) resolvePrivateKeys(network string, raw []string) (entity.ResolvedAccounts, []entity.ConfigIssue, error) {
	var (
		keys      = make([]string, 0, len(raw))
		addresses = make([]string, 0, len(raw))
		envVars   []string
		issues    []entity.ConfigIssue
		errs      []error
		seen      = make(map[string]int)
	)
	for i, value := range raw {
		envVars = append(envVars, envresolver.References(value)...)
		expanded, err := r.env.Expand(value)
		if err != nil {
			errs = append(errs, entity.AttachNetwork(err, network))
			continue
		}
		if !envresolver.IsReference(value) && strings.TrimSpace(value) != "" {
			r.logger.Warn("Private key is written inline in the config file, prefer an environment reference", "network", network, "index", i)
		}

		address, err := AddressFromPrivateKey(expanded)
		if err != nil {
			errs = append(errs, fmt.Errorf("private key #%d: %w", i, err))
			continue
		}
		if prev, dup := seen[address]; dup {
			issues = append(issues, entity.ConfigIssue{
				Kind:    entity.IssueDuplicateAccount,
				Network: network,
				Message: fmt.Sprintf("private key #%d repeats key #%d (%s)", i, prev, address),
			})
			continue
		}
		seen[address] = i
		keys = append(keys, normalizeKey(expanded))
		addresses = append(addresses, address)
	}
	if len(errs) > 0 {
		return entity.ResolvedAccounts{}, issues, errors.Join(errs...)
	}

	r.logger.Debug("Private key accounts resolved", "network", network, "count", len(addresses))
	return entity.NewPrivateKeyAccounts(keys, addresses, utils.Unique(envVars)), issues, nil
}

func (r *AccountResolver) resolveMnemonic(network string, src entity.MnemonicSource) (entity.ResolvedAccounts, error) {
	envVars := append(envresolver.References(src.Phrase), envresolver.References(src.Passphrase)...)

	var errs []error
	phrase, err := r.env.Expand(src.Phrase)
	if err != nil {
		errs = append(errs, entity.AttachNetwork(err, network))
	}
	passphrase, err := r.env.Expand(src.Passphrase)
	if err != nil {
		errs = append(errs, entity.AttachNetwork(err, network))
	}
	if len(errs) > 0 {
		return entity.ResolvedAccounts{}, errors.Join(errs...)
	}

	words, err := ValidateMnemonic(phrase)
	if err != nil {
		return entity.ResolvedAccounts{}, err
	}
	if err := ValidateDerivation(src); err != nil {
		return entity.ResolvedAccounts{}, err
	}

	src.Passphrase = passphrase
	r.logger.Debug("Mnemonic accounts resolved", "network", network, "words", words, "path", src.Path, "count", src.Count)
	return entity.NewMnemonicAccounts(normalizeMnemonic(phrase), words, src, utils.Unique(envVars)), nil
}

// AddressFromPrivateKey validates a hex secp256k1 key (optional 0x prefix) and returns its checksummed address.
// The key itself never appears in the returned error.
func AddressFromPrivateKey(hexKey string) (string, error) {
	key := normalizeKey(hexKey)
	if key == "" {
		return "", fmt.Errorf("%w: empty", entity.ErrInvalidPrivateKey)
	}
	if len(key) != 64 {
		return "", fmt.Errorf("%w: expected 64 hex characters, got %d", entity.ErrInvalidPrivateKey, len(key))
	}
	pk, err := crypto.HexToECDSA(key)
	if err != nil {
		return "", fmt.Errorf("%w: not a valid secp256k1 scalar", entity.ErrInvalidPrivateKey)
	}
	return crypto.PubkeyToAddress(pk.PublicKey).Hex(), nil
}

// ValidateMnemonic checks the word count and alphabet of a phrase and returns the word count.
func ValidateMnemonic(phrase string) (int, error) {
	words := strings.Fields(phrase)
	if _, ok := validMnemonicLengths[len(words)]; !ok {
		return 0, fmt.Errorf("%w: %d words, expected 12, 15, 18, 21 or 24", entity.ErrInvalidMnemonic, len(words))
	}
	for i, w := range words {
		for _, c := range w {
			if !unicode.IsLetter(c) {
				return 0, fmt.Errorf("%w: word %d contains non-letter characters", entity.ErrInvalidMnemonic, i+1)
			}
		}
	}
	return len(words), nil
}

// ValidateDerivation checks the HD path and index range of a mnemonic source.
func ValidateDerivation(src entity.MnemonicSource) error {
	if _, err := accounts.ParseDerivationPath(src.Path); err != nil {
		return fmt.Errorf("%w: %q: %v", entity.ErrInvalidDerivationPath, src.Path, err)
	}
	if src.InitialIndex < 0 {
		return fmt.Errorf("%w: initialIndex %d is negative", entity.ErrInvalidDerivationPath, src.InitialIndex)
	}
	if src.Count <= 0 {
		return fmt.Errorf("%w: count %d must be positive", entity.ErrInvalidDerivationPath, src.Count)
	}
	return nil
}

func normalizeKey(k string) string {
	k = strings.TrimSpace(k)
	k = strings.TrimPrefix(strings.TrimPrefix(k, "0x"), "0X")
	return strings.ToLower(k)
}

func normalizeMnemonic(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
