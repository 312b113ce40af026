// Package cli assembles the Cobra command tree for the full command
// surface of §6: auth, analyze, parse, package, history, project, group,
// org, exception, firewall, init, status, ping, version, update, uninstall,
// and extension management.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phylum-dev/cli-go/internal/apiclient"
	"github.com/phylum-dev/cli-go/internal/auth"
	"github.com/phylum-dev/cli-go/internal/config"
	"github.com/phylum-dev/cli-go/internal/extreg"
	"github.com/phylum-dev/cli-go/pkg/version"
)

// Exit codes from §6.
const (
	ExitSuccess      = 0
	ExitPolicyFailed = 100
	ExitProjectNotFound = 125
	ExitIncompleteAnalysis = 126
	ExitPolicyViolation = 127
)

// app holds everything a subcommand needs: loaded config, lazily built API
// client, the extension store, and global flag values. Mirrors kcli's own
// `app` struct shape (root.go), generalized to this domain's dependencies.
type app struct {
	store     *config.Store
	cfg       *config.Config
	cfgErr    error
	extStore  *extreg.Store

	org         string
	verbosity   int // incremented per -v
	quiet       bool
	configPath  string
	noConfig    bool
	timeout     time.Duration
	ignoreCerts bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	log *slog.Logger
}

// NewRootCommand builds the production root command, wired to the real
// process stdio.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewRootCommandWithIO builds a root command over injected stdio, for tests.
func NewRootCommandWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return newRootCommand(in, out, errOut)
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	store, err := config.DefaultStore()
	var cfg *config.Config
	var cfgErr error
	if err == nil {
		cfg, cfgErr = store.Load()
	} else {
		cfgErr = err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	extStore, extErr := extreg.NewStore()
	if extErr != nil && cfgErr == nil {
		cfgErr = extErr
	}

	a := &app{
		store:    store,
		cfg:      cfg,
		cfgErr:   cfgErr,
		extStore: extStore,
		timeout:  60 * time.Second,
		stdin:    in,
		stdout:   out,
		stderr:   errOut,
	}

	cmd := &cobra.Command{
		Use:           "phylum",
		Short:         "Analyze software dependencies for supply-chain risk",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.quiet {
				a.verbosity = -1
			}
			a.log = newLogger(a.stderr, a.verbosity)
			if a.noConfig {
				a.cfg = config.Default()
			} else if a.configPath != "" {
				a.store = &config.Store{Path: a.configPath}
				cfg, err := a.store.Load()
				if err != nil {
					return err
				}
				a.cfg = cfg
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.org, "org", "", "organization to scope this command to")
	cmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "increase verbosity (repeatable)")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to an alternate settings file")
	cmd.PersistentFlags().BoolVar(&a.noConfig, "no-config", false, "run without reading or writing persisted config")
	cmd.PersistentFlags().DurationVarP(&a.timeout, "timeout", "t", 60*time.Second, "per-request API timeout")
	cmd.PersistentFlags().BoolVar(&a.ignoreCerts, "ignore-certs", false, "disable TLS certificate verification")

	cmd.AddCommand(
		newAuthCmd(a),
		newAnalyzeCmd(a),
		newParseCmd(a),
		newPackageCmd(a),
		newHistoryCmd(a),
		newProjectCmd(a),
		newGroupCmd(a),
		newOrgCmd(a),
		newExceptionCmd(a),
		newFirewallCmd(a),
		newInitCmd(a),
		newStatusCmd(a),
		newPingCmd(a),
		newVersionCmd(a),
		newUpdateCmd(a),
		newUninstallCmd(a),
		newExtensionCmd(a),
	)

	return cmd
}

// BuiltinNames returns every top-level command name registered on the root
// tree, the reserved-name source of truth for internal/dispatcher and
// internal/extreg's install-time collision check.
func BuiltinNames() map[string]bool {
	root := NewRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	return names
}

func newLogger(w io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity < 0:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// client lazily builds the typed API client, resolving the bearer through
// internal/auth's precedence rules (§8 scenario 5).
func (a *app) client(ctx context.Context) (*apiclient.Client, error) {
	if a.cfg == nil {
		return nil, fmt.Errorf("cli: no configuration loaded")
	}
	profile := a.cfg.ActiveProfile()
	tokenSource := func(ctx context.Context) (string, error) {
		return auth.ResolveToken(ctx, a.cfg, nil)
	}
	_ = profile
	return apiclient.New(a.cfg.APIBaseURL, tokenSource, a.timeout, a.ignoreCerts), nil
}

// renderError prints a one-line human summary to stderr (and, under -v, the
// full error chain), matching §7's dispatcher-boundary contract.
func (a *app) renderError(err error) {
	fmt.Fprintf(a.stderr, "error: %s\n", err)
	if a.verbosity > 0 {
		fmt.Fprintf(a.stderr, "%+v\n", err)
	}
}
