package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/service"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints the version and, with --verbose, the effective backend.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string       { return "version" }
func (c *VersionCmd) Aliases() []string  { return nil }
func (c *VersionCmd) Synopsis() string   { return "Print version" }
func (c *VersionCmd) Usage() string      { return "tasklist version [--verbose]" }
func (c *VersionCmd) NeedsBackend() bool { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "also print Go version, backend and config dir")
}

// SetVerbose sets the --verbose flag (for testing).
func (c *VersionCmd) SetVerbose(v bool) { c.verbose = v }

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprintf(out, "tasklist %s\n", Version)
	if !c.verbose {
		return exitcode.Success
	}

	s := cfg.Settings
	fmt.Fprintf(out, "go:      %s\n", runtime.Version())
	fmt.Fprintf(out, "config:  %s\n", cfg.Dir)
	switch s.Backend {
	case config.BackendGoogle:
		fmt.Fprintf(out, "backend: %s (list %s)\n", s.Backend, s.ListID)
	default:
		fmt.Fprintf(out, "backend: %s (%s)\n", s.Backend, s.APIURL)
	}
	return exitcode.Success
}
