// Package validation holds the structural checks applied to every network entry.
package validation

import (
	"fmt"
	"net/url"
	"strings"

	"deploy_config/internal/app/port"
	"deploy_config/internal/domain/entity"
)

var allowedSchemes = map[string]struct{}{"http": {}, "https": {}, "ws": {}, "wss": {}}

// ValidateURL checks that raw is a non-empty absolute http(s)/ws(s) URL with a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: empty", entity.ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	if _, ok := allowedSchemes[strings.ToLower(u.Scheme)]; !ok {
		return fmt.Errorf("%w: unsupported scheme %q", entity.ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", entity.ErrInvalidURL)
	}
	return nil
}

// ChainIDCheck is the outcome of ValidateChainID.
type ChainIDCheck struct {
	ChainID  uint64 // effective id, 0 when neither declared nor known
	Declared bool
	Inferred bool // taken from the known-network registry
}

// ValidateChainID checks a declared chain id against the known definition for name.
// Local dev chains accept any positive id. An undeclared id on a known public network
// is inferred from the registry.
func ValidateChainID(name string, declared *int64, known port.NetworkDefinitionProvider) (ChainIDCheck, error) {
	def, isKnown := known.GetNetworkDefinitionByName(name)

	if declared == nil {
		if isKnown && !def.Local {
			return ChainIDCheck{ChainID: def.ChainID, Inferred: true}, nil
		}
		return ChainIDCheck{}, nil
	}
	if *declared <= 0 {
		return ChainIDCheck{}, fmt.Errorf("%w: %d must be a positive integer", entity.ErrInvalidChainID, *declared)
	}
	id := uint64(*declared)
	if isKnown && !def.Local && def.ChainID != id {
		return ChainIDCheck{}, fmt.Errorf("%w: declared %d, %s is %d", entity.ErrChainIDMismatch, id, def.Name, def.ChainID)
	}
	return ChainIDCheck{ChainID: id, Declared: true}, nil
}

// ValidateAccountStrategy enforces exactly one account strategy.
func ValidateAccountStrategy(src entity.AccountSource) error {
	switch src.Kind() {
	case entity.AccountKindMnemonic, entity.AccountKindPrivateKeys:
		return nil
	case entity.AccountKindAmbiguous:
		return entity.ErrMultipleAccountStrategies
	default:
		return entity.ErrNoAccountStrategy
	}
}

// RedactURL drops credentials, query and fragment so a URL can be shown or logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<invalid url>"
	}
	redacted := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	if u.User != nil {
		redacted.User = url.User("redacted")
	}
	return redacted.String()
}
