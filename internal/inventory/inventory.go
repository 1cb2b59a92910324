package inventory

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"backendrouter/internal/config"
	"backendrouter/pkg/backend"
)

// ErrDuplicateBackend is returned when two backends share a name.
var ErrDuplicateBackend = errors.New("duplicate backend name")

// FromConfig builds the backend handles declared in cfg, in declaration order.
func FromConfig(cfg *config.Config) ([]backend.Backend, error) {
	out := make([]backend.Backend, 0, len(cfg.Backends))
	seen := make(map[string]struct{}, len(cfg.Backends))
	for i, bc := range cfg.Backends {
		if bc.Name == "" {
			return nil, fmt.Errorf("backends[%d]: name is required", i)
		}
		if _, dup := seen[bc.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBackend, bc.Name)
		}
		seen[bc.Name] = struct{}{}

		if bc.StatusURL != "" {
			out = append(out, NewRemote(bc.Name, bc.Configuration, bc.StatusURL, bc.StatusTimeout))
		} else {
			out = append(out, NewStatic(bc.Name, bc.Configuration, bc.Status))
		}
	}
	return out, nil
}

// Report is one backend's status at snapshot time.
type Report struct {
	Name   string
	Status backend.Attributes
	Err    error
}

// Snapshot queries every backend's status concurrently. Failures are kept
// in the report rather than aborting the snapshot. Reports follow input order.
func Snapshot(ctx context.Context, backends []backend.Backend) []Report {
	reports := make([]Report, len(backends))

	var g errgroup.Group
	for i, b := range backends {
		g.Go(func() error {
			status, err := b.Status(ctx)
			reports[i] = Report{Name: b.Name(), Status: status, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return reports
}
