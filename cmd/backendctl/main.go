package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"backendrouter/internal/config"
	"backendrouter/internal/inventory"
	"backendrouter/internal/router"
	"backendrouter/pkg/backend"
	"backendrouter/pkg/logger"
	"backendrouter/pkg/strategy"
)

// criteriaFlag collects repeated -where key=value flags.
type criteriaFlag backend.Criteria

func (c criteriaFlag) String() string {
	parts := make([]string, 0, len(c))
	for k, v := range c {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (c criteriaFlag) Set(s string) error {
	key, value, err := backend.ParseCriterion(s)
	if err != nil {
		return err
	}
	c[key] = value
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		configPath string
		name       string
		accept     string
		acceptor   string
		showStatus bool
	)
	where := criteriaFlag{}

	fs := flag.NewFlagSet("backendctl", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to config file (default: $BACKENDROUTER_CONFIG_PATH or ~/.config/backendrouter/config.yaml)")
	fs.StringVar(&name, "name", "", "Backend name, alias or deprecated name to resolve")
	fs.Var(where, "where", "Criterion key=value; repeatable")
	fs.StringVar(&accept, "accept", "", "Acceptance expression, e.g. 'n_qubits >= 5'")
	fs.StringVar(&acceptor, "acceptor", "", "Named acceptance expression from config")
	fs.BoolVar(&showStatus, "status", false, "Print the live status of each matching backend")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 1. Load config
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadLocalConfig()
	}
	if err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(os.Stderr, level)

	// 2. Build inventory and predicates
	backends, err := inventory.FromConfig(cfg)
	if err != nil {
		return err
	}
	acceptors, err := strategy.CompileAll(cfg.Acceptors, log)
	if err != nil {
		return err
	}

	var preds []backend.Predicate
	if acceptor != "" {
		a, ok := acceptors[acceptor]
		if !ok {
			return fmt.Errorf("acceptor %s not found in config", acceptor)
		}
		preds = append(preds, a.Predicate())
	}
	if accept != "" {
		a, err := strategy.NewAcceptor(accept, log)
		if err != nil {
			return err
		}
		preds = append(preds, a.Predicate())
	}

	// 3. Select
	engine := router.NewEngine(backends, cfg.Names, log)
	found, err := engine.Backends(ctx, router.Query{
		Name:     name,
		Criteria: backend.Criteria(where),
		Accept:   strategy.All(preds...),
	})
	if err != nil {
		return err
	}

	// 4. Output
	if !showStatus {
		for _, b := range found {
			fmt.Fprintln(stdout, b.Name())
		}
		return nil
	}
	return printStatus(ctx, stdout, found)
}

func printStatus(ctx context.Context, stdout io.Writer, backends []backend.Backend) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS")
	var errs []error
	for _, r := range inventory.Snapshot(ctx, backends) {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\n", r.Name, r.Err)
			errs = append(errs, r.Err)
			continue
		}
		keys := make([]string, 0, len(r.Status))
		for k := range r.Status {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, r.Status[k]))
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, strings.Join(parts, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("status query failed for %d backend(s): %w", len(errs), errors.Join(errs...))
	}
	return nil
}
