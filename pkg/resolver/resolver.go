package resolver

import (
	"errors"
	"fmt"
	"log/slog"

	"backendrouter/pkg/backend"
	"backendrouter/pkg/logger"
)

// ErrBackendNotFound is wrapped by every LookupError.
var ErrBackendNotFound = errors.New("backend not found")

// LookupError reports that a requested name could not be resolved to an
// available backend. Name is the name the caller asked for, not the
// intermediate candidate.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("backend '%s' not found", e.Name)
}

func (e *LookupError) Unwrap() error { return ErrBackendNotFound }

// Tables holds the renaming rules applied before looking a name up.
type Tables struct {
	// Deprecated maps a retired name to its replacement.
	Deprecated map[string]string `yaml:"deprecated"`
	// Aliased maps a group name to its candidates.
	Aliased map[string]Alias `yaml:"aliased"`
	// Alternatives suggests a fallback name. Only used in diagnostics.
	Alternatives map[string]string `yaml:"alternatives"`
}

// Option configures Resolve.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger injects the logger that receives resolution diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Resolve maps name through the deprecation and alias tables to the name of
// one of backends.
//
// Deprecated entries take precedence over aliases; a name in neither table is
// looked up as is. When the result is not available Resolve logs a hint and
// returns a *LookupError carrying name.
func Resolve(name string, backends []backend.Backend, tables Tables, opts ...Option) (string, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log == nil {
		o.log = logger.Default()
	}

	names := backend.Names(backends)
	available := make(map[string]struct{}, len(names))
	for _, n := range names {
		available[n] = struct{}{}
	}

	replacement, deprecated := tables.Deprecated[name]
	candidate := name
	if deprecated {
		candidate = replacement
	} else if alias, ok := tables.Aliased[name]; ok {
		candidate = alias.pick(available)
	}

	if _, ok := available[candidate]; !ok {
		if alt, ok := tables.Alternatives[candidate]; ok {
			o.log.Warn("backend not installed, consider a slower alternative",
				"backend", name, "alternative", alt)
		} else {
			o.log.Warn("backend not installed, consider one of the slower alternatives",
				"backend", name, "available", names)
		}
		return "", &LookupError{Name: name}
	}

	if deprecated {
		o.log.Warn("backend name is deprecated", "deprecated", name, "replacement", candidate)
	}
	return candidate, nil
}
