package backend

import (
	"context"
	"log/slog"

	"backendrouter/pkg/logger"
)

// Criteria maps an attribute name to the value it must equal.
type Criteria map[string]any

// Predicate is a final acceptance gate. A nil Predicate accepts everything.
type Predicate func(Backend) bool

// Option configures Filter.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger injects the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log == nil {
		o.log = logger.Default()
	}
	return o
}

// Classify splits criteria into the keys every backend exposes in its
// configuration and the rest, which are matched against status.
//
// The first pass collects the configuration keys shared by all backends, the
// second routes each criterion. With no backends every key is shared.
func Classify(backends []Backend, criteria Criteria) (configuration, status Criteria) {
	configuration = Criteria{}
	status = Criteria{}
	if len(criteria) == 0 {
		return configuration, status
	}

	var shared map[string]struct{}
	if len(backends) > 0 {
		shared = make(map[string]struct{}, len(criteria))
		for key := range criteria {
			shared[key] = struct{}{}
		}
		for _, b := range backends {
			cfg := b.Configuration()
			for key := range shared {
				if !cfg.Has(key) {
					delete(shared, key)
				}
			}
		}
	}

	for key, value := range criteria {
		if _, ok := shared[key]; ok || shared == nil {
			configuration[key] = value
		} else {
			status[key] = value
		}
	}
	return configuration, status
}

// Filter returns the backends, in input order, whose configuration and status
// match every criterion and that accept admits.
//
// Configuration criteria are applied first so status is only queried for the
// survivors, once each. A failed status query drops the backend and is
// logged; Filter itself never fails; an empty result is a valid outcome.
func Filter(ctx context.Context, backends []Backend, criteria Criteria, accept Predicate, opts ...Option) []Backend {
	o := buildOptions(opts)
	cfgCriteria, statusCriteria := Classify(backends, criteria)

	out := backends
	if len(cfgCriteria) > 0 {
		out = keep(out, func(b Backend) bool {
			return matchAll(b.Configuration(), cfgCriteria)
		})
	}

	if len(statusCriteria) > 0 {
		out = keep(out, func(b Backend) bool {
			status, err := b.Status(ctx)
			if err != nil {
				o.log.Warn("backend status query failed, excluding backend",
					"backend", b.Name(), "error", err)
				return false
			}
			return matchAll(status, statusCriteria)
		})
	}

	if accept != nil {
		out = keep(out, accept)
	}
	return out
}

func matchAll(attrs Attributes, criteria Criteria) bool {
	for key, want := range criteria {
		got, ok := attrs[key]
		if !ok || !Equal(got, want) {
			return false
		}
	}
	return true
}

// keep never writes into the caller's slice.
func keep(in []Backend, fn func(Backend) bool) []Backend {
	out := make([]Backend, 0, len(in))
	for _, b := range in {
		if fn(b) {
			out = append(out, b)
		}
	}
	return out
}
