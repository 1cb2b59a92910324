package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"backendrouter/pkg/resolver"
)

const testConfig = `
log_level: error
backends:
  - name: ibmq_5_tenerife
    configuration: {n_qubits: 5, simulator: false}
    status: {operational: true, pending_jobs: 2}
  - name: ibmq_16_melbourne
    configuration: {n_qubits: 16, simulator: false}
    status: {operational: false}
  - name: qasm_simulator
    configuration: {n_qubits: 32, simulator: true}
    status: {operational: true}
names:
  deprecated:
    ibmqx4: ibmq_5_tenerife
  aliased:
    local_qasm_simulator: [qasm_simulator_cpp, qasm_simulator]
acceptors:
  real_devices: "simulator == false"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestRun(t *testing.T) {
	configPath := writeConfig(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"all", nil, "ibmq_5_tenerife\nibmq_16_melbourne\nqasm_simulator\n"},
		{"where", []string{"-where", "simulator=false", "-where", "operational=true"}, "ibmq_5_tenerife\n"},
		{"accept", []string{"-accept", "n_qubits > 10"}, "ibmq_16_melbourne\nqasm_simulator\n"},
		{"acceptor", []string{"-acceptor", "real_devices"}, "ibmq_5_tenerife\nibmq_16_melbourne\n"},
		{"deprecated name", []string{"-name", "ibmqx4"}, "ibmq_5_tenerife\n"},
		{"alias", []string{"-name", "local_qasm_simulator"}, "qasm_simulator\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			args := append([]string{"-config", configPath}, tc.args...)
			if err := run(context.Background(), args, &out); err != nil {
				t.Fatalf("run: %v", err)
			}
			if out.String() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, out.String())
			}
		})
	}
}

func TestRun_Status(t *testing.T) {
	var out bytes.Buffer
	args := []string{"-config", writeConfig(t), "-name", "ibmqx4", "-status"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "NAME") || !strings.Contains(s, "operational=true pending_jobs=2") {
		t.Errorf("unexpected status output: %q", s)
	}
}

func TestRun_UnknownName(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-config", writeConfig(t), "-name", "missing"}, &out)
	if !errors.Is(err, resolver.ErrBackendNotFound) {
		t.Fatalf("expected ErrBackendNotFound, got %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	configPath := writeConfig(t)
	tests := []struct {
		name string
		args []string
	}{
		{"bad where", []string{"-config", configPath, "-where", "novalue"}},
		{"bad expression", []string{"-config", configPath, "-accept", "invalid + )"}},
		{"unknown acceptor", []string{"-config", configPath, "-acceptor", "nope"}},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(context.Background(), tc.args, &out); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCriteriaFlag_String(t *testing.T) {
	c := criteriaFlag{}
	_ = c.Set("b=2")
	_ = c.Set("a=x")
	if c.String() != "a=x,b=2" {
		t.Errorf("unexpected String(): %q", c.String())
	}
}
