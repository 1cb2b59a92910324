package resolver

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// AliasKind tells the two shapes of an alias entry apart.
type AliasKind int

const (
	// SingleNameAlias maps to exactly one backend name.
	SingleNameAlias AliasKind = iota
	// PriorityListAlias maps to candidates tried in order.
	PriorityListAlias
)

// Alias is the target of an aliased name: either one name or an ordered
// list of candidates.
type Alias struct {
	kind  AliasKind
	names []string
}

// SingleName returns an alias resolving to name.
func SingleName(name string) Alias {
	return Alias{kind: SingleNameAlias, names: []string{name}}
}

// PriorityList returns an alias resolving to the first available name.
func PriorityList(names ...string) Alias {
	return Alias{kind: PriorityListAlias, names: append([]string(nil), names...)}
}

func (a Alias) Kind() AliasKind { return a.kind }

// Names returns a copy of the candidate names in priority order.
func (a Alias) Names() []string {
	return append([]string(nil), a.names...)
}

// pick returns the candidate to check against the available set. For a
// priority list that is the first available member, or "" when none is.
func (a Alias) pick(available map[string]struct{}) string {
	if a.kind == SingleNameAlias {
		if len(a.names) == 0 {
			return ""
		}
		return a.names[0]
	}
	for _, n := range a.names {
		if _, ok := available[n]; ok {
			return n
		}
	}
	return ""
}

// UnmarshalYAML accepts either a scalar or a sequence of scalars.
func (a *Alias) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*a = SingleName(name)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*a = PriorityList(names...)
		return nil
	}
	return fmt.Errorf("line %d: alias must be a name or a list of names", node.Line)
}

// MarshalYAML writes the alias back in the shape it was declared.
func (a Alias) MarshalYAML() (interface{}, error) {
	if a.kind == SingleNameAlias && len(a.names) == 1 {
		return a.names[0], nil
	}
	return a.Names(), nil
}
