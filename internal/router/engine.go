package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"backendrouter/pkg/backend"
	"backendrouter/pkg/logger"
	"backendrouter/pkg/resolver"
)

// ErrAmbiguous is returned by Get when more than one backend matches.
var ErrAmbiguous = errors.New("more than one backend matches the criteria")

// Query selects backends. Every field is optional.
type Query struct {
	// Name is resolved through the name tables against the filtered set.
	Name     string
	Criteria backend.Criteria
	Accept   backend.Predicate
}

// Engine picks backends out of a fixed inventory.
type Engine interface {
	Backends(ctx context.Context, q Query) ([]backend.Backend, error)
	Get(ctx context.Context, q Query) (backend.Backend, error)
}

type defaultEngine struct {
	backends []backend.Backend
	tables   resolver.Tables
	log      *slog.Logger
}

// NewEngine initializes a selection engine. A nil logger uses the process default.
func NewEngine(backends []backend.Backend, tables resolver.Tables, log *slog.Logger) Engine {
	if log == nil {
		log = logger.Default()
	}
	return &defaultEngine{backends: backends, tables: tables, log: log}
}

// Backends filters the inventory and, when a name is given, narrows the
// result to the backend that name resolves to. A name that does not resolve
// among the filtered backends yields the resolver's lookup error.
func (e *defaultEngine) Backends(ctx context.Context, q Query) ([]backend.Backend, error) {
	out := backend.Filter(ctx, e.backends, q.Criteria, q.Accept, backend.WithLogger(e.log))
	if q.Name == "" {
		return out, nil
	}

	name, err := resolver.Resolve(q.Name, out, e.tables, resolver.WithLogger(e.log))
	if err != nil {
		return nil, err
	}
	named := make([]backend.Backend, 0, 1)
	for _, b := range out {
		if b.Name() == name {
			named = append(named, b)
		}
	}
	return named, nil
}

// Get returns the single backend matching q.
func (e *defaultEngine) Get(ctx context.Context, q Query) (backend.Backend, error) {
	found, err := e.Backends(ctx, q)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, &resolver.LookupError{Name: q.Name}
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %v", ErrAmbiguous, backend.Names(found))
}
