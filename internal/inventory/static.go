package inventory

import (
	"context"
	"maps"

	"backendrouter/pkg/backend"
)

// Static is a backend whose status is fixed in config.
type Static struct {
	name   string
	config backend.Attributes
	status backend.Attributes
}

// NewStatic builds a Static backend. A nil status reports no attributes.
func NewStatic(name string, configuration, status backend.Attributes) *Static {
	if configuration == nil {
		configuration = backend.Attributes{}
	}
	return &Static{name: name, config: configuration, status: status}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Configuration() backend.Attributes { return s.config }

// Status returns a copy so callers cannot alter the declared status.
func (s *Static) Status(ctx context.Context) (backend.Attributes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(backend.Attributes, len(s.status))
	maps.Copy(out, s.status)
	return out, nil
}
