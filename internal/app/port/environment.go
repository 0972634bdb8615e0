package port

// Environment is a snapshot of the process environment taken once at startup.
// Secret material is read only through it.
type Environment interface {
	// Lookup returns the captured value and whether the variable was set and non-blank.
	Lookup(key string) (string, bool)
	// Expand substitutes ${NAME} references. Unset variables yield *entity.MissingEnvError.
	Expand(value string) (string, error)
	// Keys lists the captured variable names, sorted.
	Keys() []string
}
