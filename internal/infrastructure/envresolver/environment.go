// Package envresolver captures the environment variables a deploy config references
// and expands ${NAME} references against that snapshot.
package envresolver

import (
	"errors"
	"os"
	"regexp"
	"sort"
	"strings"

	"deploy_config/internal/app/port"
	"deploy_config/internal/domain/entity"
)

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

var referencePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Environment is an immutable snapshot of selected environment variables.
type Environment struct {
	values map[string]string
}

var _ port.Environment = (*Environment)(nil)

// Capture reads keys through lookup once. Blank values are treated as unset.
func Capture(lookup LookupFunc, keys ...string) *Environment {
	env := &Environment{values: make(map[string]string, len(keys))}
	for _, key := range keys {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			env.values[key] = v
		}
	}
	return env
}

// FromOS captures keys from the process environment.
func FromOS(keys ...string) *Environment {
	return Capture(os.LookupEnv, keys...)
}

// FromMap builds a snapshot from fixed values.
func FromMap(values map[string]string) *Environment {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	return Capture(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}, keys...)
}

// Lookup returns a captured value.
func (e *Environment) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.values[key]
	return v, ok
}

// Expand replaces every ${NAME} in value. All missing names are reported, each as *entity.MissingEnvError.
func (e *Environment) Expand(value string) (string, error) {
	var errs []error
	seen := make(map[string]struct{})
	out := referencePattern.ReplaceAllStringFunc(value, func(ref string) string {
		name := referencePattern.FindStringSubmatch(ref)[1]
		v, ok := e.Lookup(name)
		if !ok {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				errs = append(errs, &entity.MissingEnvError{Var: name})
			}
			return ""
		}
		return v
	})
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return out, nil
}

// Keys lists the captured variable names.
func (e *Environment) Keys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// References returns the distinct variable names referenced by value, in order of appearance.
func References(value string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range referencePattern.FindAllStringSubmatch(value, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// IsReference is true when value consists of nothing but a single ${NAME}.
func IsReference(value string) bool {
	loc := referencePattern.FindStringIndex(strings.TrimSpace(value))
	return loc != nil && loc[0] == 0 && loc[1] == len(strings.TrimSpace(value))
}
