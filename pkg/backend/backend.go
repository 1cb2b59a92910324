package backend

import (
	"context"
	"reflect"
)

// Attributes maps an attribute name to its value, as reported by a backend's
// configuration or status.
type Attributes map[string]any

// Has reports whether the attribute is present, regardless of its value.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Backend is a remotely queryable resource.
//
// Configuration is static for the lifetime of the handle and cheap to read.
// Status is a live query: every call goes back to the collaborator, which owns
// latency, cancellation and failure behaviour.
type Backend interface {
	// Name returns the stable unique identifier of the backend.
	Name() string
	// Configuration returns the static attributes.
	Configuration() Attributes
	// Status queries the live attributes.
	Status(ctx context.Context) (Attributes, error)
}

// Names returns the backend names in input order.
func Names(backends []Backend) []string {
	out := make([]string, 0, len(backends))
	for _, b := range backends {
		out = append(out, b.Name())
	}
	return out
}

// Equal compares two attribute values. Numbers compare by value across Go
// numeric types, since YAML decodes integers as int and JSON as float64.
func Equal(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
