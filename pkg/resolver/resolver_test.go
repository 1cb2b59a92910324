package resolver

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"backendrouter/pkg/backend"
)

type namedBackend string

func (n namedBackend) Name() string                      { return string(n) }
func (n namedBackend) Configuration() backend.Attributes { return backend.Attributes{} }
func (n namedBackend) Status(_ context.Context) (backend.Attributes, error) {
	return backend.Attributes{}, nil
}

func backends(names ...string) []backend.Backend {
	out := make([]backend.Backend, len(names))
	for i, n := range names {
		out[i] = namedBackend(n)
	}
	return out
}

// capture returns a logger writing to an in-memory buffer.
func capture() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestResolve(t *testing.T) {
	tables := Tables{
		Deprecated: map[string]string{
			"ibmqx4":          "ibmq_5_tenerife",
			"local_qasm_old":  "qasm_simulator",
			"retired_missing": "gone",
		},
		Aliased: map[string]Alias{
			"local_qasm_simulator": PriorityList("qasm_simulator_cpp", "qasm_simulator"),
			"statevector":          SingleName("statevector_simulator"),
			"no_members":           PriorityList("x", "y"),
			"empty_group":          PriorityList(),
		},
	}
	available := backends("ibmq_5_tenerife", "qasm_simulator", "statevector_simulator")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"direct", "ibmq_5_tenerife", "ibmq_5_tenerife", false},
		{"deprecated", "ibmqx4", "ibmq_5_tenerife", false},
		{"alias priority fallback", "local_qasm_simulator", "qasm_simulator", false},
		{"single name alias", "statevector", "statevector_simulator", false},
		{"alias with no member available", "no_members", "", true},
		{"empty alias", "empty_group", "", true},
		{"deprecated to missing", "retired_missing", "", true},
		{"unknown", "missing", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, _ := capture()
			got, err := Resolve(tc.in, available, tables, WithLogger(l))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Resolve(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestResolve_AliasPrefersFirstAvailable(t *testing.T) {
	tables := Tables{Aliased: map[string]Alias{"group": PriorityList("a", "b")}}
	l, _ := capture()

	got, err := Resolve("group", backends("b"), tables, WithLogger(l))
	if err != nil || got != "b" {
		t.Fatalf("expected b, got %q (%v)", got, err)
	}

	got, err = Resolve("group", backends("b", "a"), tables, WithLogger(l))
	if err != nil || got != "a" {
		t.Fatalf("expected a by priority, got %q (%v)", got, err)
	}
}

func TestResolve_DeprecatedWinsOverAlias(t *testing.T) {
	tables := Tables{
		Deprecated: map[string]string{"old": "new"},
		Aliased:    map[string]Alias{"old": SingleName("other")},
	}
	l, _ := capture()
	got, err := Resolve("old", backends("new", "other"), tables, WithLogger(l))
	if err != nil || got != "new" {
		t.Fatalf("expected new, got %q (%v)", got, err)
	}
}

func TestResolve_DeprecationWarning(t *testing.T) {
	l, buf := capture()
	got, err := Resolve("old", backends("new"), Tables{Deprecated: map[string]string{"old": "new"}}, WithLogger(l))
	if err != nil || got != "new" {
		t.Fatalf("expected new, got %q (%v)", got, err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "deprecated=old") || !strings.Contains(out, "replacement=new") {
		t.Errorf("expected deprecation warning, got: %s", out)
	}
}

func TestResolve_NoWarningOnPlainHit(t *testing.T) {
	l, buf := capture()
	if _, err := Resolve("ibmq_X", backends("ibmq_X"), Tables{}, WithLogger(l)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no diagnostics, got: %s", buf.String())
	}
}

func TestResolve_MissingWithAlternative(t *testing.T) {
	l, buf := capture()
	_, err := Resolve("missing", backends("a", "b"), Tables{Alternatives: map[string]string{"missing": "alt"}}, WithLogger(l))

	var lookup *LookupError
	if !errors.As(err, &lookup) || lookup.Name != "missing" {
		t.Fatalf("expected LookupError for missing, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "alternative=alt") || !strings.Contains(out, "backend=missing") {
		t.Errorf("expected single alternative diagnostic, got: %s", out)
	}
	if strings.Contains(out, "available=") {
		t.Errorf("did not expect the available list, got: %s", out)
	}
}

func TestResolve_MissingListsAvailable(t *testing.T) {
	l, buf := capture()
	_, err := Resolve("missing", backends("a", "b"), Tables{}, WithLogger(l))
	if !errors.Is(err, ErrBackendNotFound) {
		t.Fatalf("expected ErrBackendNotFound, got %v", err)
	}
	if err.Error() != "backend 'missing' not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	out := buf.String()
	if !strings.Contains(out, "available=\"[a b]\"") {
		t.Errorf("expected available backends in diagnostic, got: %s", out)
	}
}

func TestResolve_ErrorCarriesRequestedName(t *testing.T) {
	l, _ := capture()
	tables := Tables{Aliased: map[string]Alias{"group": PriorityList("x")}}
	_, err := Resolve("group", backends("a"), tables, WithLogger(l))

	var lookup *LookupError
	if !errors.As(err, &lookup) || lookup.Name != "group" {
		t.Fatalf("expected LookupError naming group, got %v", err)
	}
}

func TestResolve_NilLoggerFallsBackToDefault(t *testing.T) {
	if _, err := Resolve("x", backends("y"), Tables{}, WithLogger(nil)); err == nil {
		t.Fatal("expected error")
	}
}

func TestAlias_UnmarshalYAML(t *testing.T) {
	data := `
deprecated:
  ibmqx4: ibmq_5_tenerife
aliased:
  statevector: statevector_simulator
  local_qasm_simulator:
    - qasm_simulator_cpp
    - qasm_simulator_py
alternatives:
  qasm_simulator_cpp: qasm_simulator_py
`
	var tables Tables
	if err := yaml.Unmarshal([]byte(data), &tables); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	sv := tables.Aliased["statevector"]
	if sv.Kind() != SingleNameAlias || sv.Names()[0] != "statevector_simulator" {
		t.Errorf("unexpected single alias: %+v", sv)
	}
	group := tables.Aliased["local_qasm_simulator"]
	if group.Kind() != PriorityListAlias || len(group.Names()) != 2 || group.Names()[1] != "qasm_simulator_py" {
		t.Errorf("unexpected priority alias: %+v", group)
	}
	if tables.Deprecated["ibmqx4"] != "ibmq_5_tenerife" {
		t.Errorf("unexpected deprecated table: %v", tables.Deprecated)
	}
}

func TestAlias_UnmarshalYAML_RejectsMapping(t *testing.T) {
	var tables Tables
	err := yaml.Unmarshal([]byte("aliased:\n  bad:\n    key: value\n"), &tables)
	if err == nil {
		t.Fatal("expected error for mapping alias")
	}
}

func TestAlias_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(map[string]Alias{"a": SingleName("x"), "b": PriorityList("first", "second")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "a: x\nb:\n    - first\n    - second\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
