// Package cli parses the command line and runs the selected command.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasklist/internal/commands"
	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/logging"
	"tasklist/internal/service"
)

// defaultCommand runs when no arguments are given.
const defaultCommand = "list"

// ServiceFactory connects to the backend selected by cfg.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher resolves a command, parses its flags, builds the Config and
// backend, and runs it.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher returns a Dispatcher over registry. A nil factory selects
// BackendFactory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	if factory == nil {
		factory = BackendFactory
	}
	return &Dispatcher{registry: registry, factory: factory}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configDir, "config", "", "")
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.debug, "debug", false, "")
}

// Run executes args (without the program name) and returns the exit code.
// in feeds interactive prompts.
func (d *Dispatcher) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	name := defaultCommand
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	// Flags are only accepted after a command name.
	cmd, ok := d.registry.Find(name)
	if strings.HasPrefix(name, "-") || !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", describeFlagError(err))
		return exitcode.UserError
	}
	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	cfg, err := d.loadConfig(common, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	var svc service.Service
	if cmd.NeedsBackend() {
		if svc, err = d.factory(ctx, cfg); err != nil {
			return reportBackendError(errOut, err)
		}
	}

	return cmd.Run(ctx, cfg, svc, positional, in, out, errOut)
}

// loadConfig builds the Config and its stderr logger; --debug overrides the
// configured log level.
func (d *Dispatcher) loadConfig(common commonFlags, errOut io.Writer) (*config.Config, error) {
	cfg, err := config.New(common.configDir)
	if err != nil {
		return nil, err
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	level := cfg.Settings.LogLevel
	if common.debug {
		level = "debug"
	}
	cfg.Logger = logging.New(errOut, logging.ParseLevel(level))
	cfg.Logger.Debug("config loaded", "dir", cfg.Dir, "backend", cfg.Settings.Backend)
	return cfg, nil
}

// describeFlagError rewrites flag package errors into the CLI's wording.
func describeFlagError(err error) string {
	msg := err.Error()
	if name, ok := strings.CutPrefix(msg, "flag provided but not defined: "); ok {
		return "unknown flag: " + name
	}
	return msg
}

func reportBackendError(errOut io.Writer, err error) int {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %s\n", err)
	return exitcode.BackendError
}
