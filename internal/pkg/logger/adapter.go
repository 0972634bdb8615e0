package logger

import "deploy_config/internal/app/port"

// slogAdapter implements port.Logger on top of the package-level functions,
// so services can take a logger without knowing how it was initialized.
type slogAdapter struct{}

// NewSlogAdapter creates a new slogAdapter.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

func (a *slogAdapter) Info(msg string, args ...any)  { Info(msg, args...) }
func (a *slogAdapter) Debug(msg string, args ...any) { Debug(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { Error(msg, args...) }

type nopAdapter struct{}

// Nop returns a port.Logger that discards everything. Used in tests.
func Nop() port.Logger { return nopAdapter{} }

func (nopAdapter) Info(string, ...any)  {}
func (nopAdapter) Debug(string, ...any) {}
func (nopAdapter) Warn(string, ...any)  {}
func (nopAdapter) Error(string, ...any) {}
