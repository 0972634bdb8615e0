package entity

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCompilerVersion    = errors.New("compiler version is not declared")
	ErrInvalidCompilerVersion    = errors.New("invalid compiler version")
	ErrCompilerVersionConflict   = errors.New("conflicting compiler versions")
	ErrNoNetworks                = errors.New("no networks declared")
	ErrInvalidURL                = errors.New("invalid network url")
	ErrInvalidChainID            = errors.New("invalid chain id")
	ErrChainIDMismatch           = errors.New("chain id mismatch")
	ErrNoAccountStrategy         = errors.New("no account strategy declared")
	ErrMultipleAccountStrategies = errors.New("both mnemonic and private keys declared")
	ErrInvalidPrivateKey         = errors.New("invalid private key")
	ErrInvalidMnemonic           = errors.New("invalid mnemonic")
	ErrInvalidDerivationPath     = errors.New("invalid derivation path")
	ErrUnknownNetwork            = errors.New("unknown network")
)

// MissingEnvError reports an environment variable that a config value references but that is unset or blank.
type MissingEnvError struct {
	Var     string
	Network string
}

func (e *MissingEnvError) Error() string {
	if e.Network != "" {
		return fmt.Sprintf("environment variable %s is not set (required by network %q)", e.Var, e.Network)
	}
	return fmt.Sprintf("environment variable %s is not set", e.Var)
}

// NetworkError attaches the network name to a validation failure.
type NetworkError struct {
	Network string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %q: %v", e.Network, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AttachNetwork sets Network on every *MissingEnvError inside err that has none yet, and returns err.
func AttachNetwork(err error, network string) error {
	var walk func(error)
	walk = func(e error) {
		switch x := e.(type) {
		case nil:
			return
		case *MissingEnvError:
			if x.Network == "" {
				x.Network = network
			}
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return err
}
