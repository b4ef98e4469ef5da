package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/service"
	"tasklist/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Serve the task list in the browser" }
func (c *ServeCmd) Usage() string      { return "tasklist serve [common flags] [--addr <host:port>]" }
func (c *ServeCmd) NeedsBackend() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	addr := cfg.Settings.ListenAddr
	if c.addr != "" {
		addr = c.addr
	}
	opts := []web.Option{web.WithAddr(addr), web.WithLogger(cfg.Log())}
	if d := cfg.Settings.Timeout.Duration; d > 0 {
		opts = append(opts, web.WithTimeout(d))
	}

	if !cfg.Quiet {
		fmt.Fprintf(errOut, "serving on http://%s (Ctrl-C to stop)\n", addr)
	}
	if err := web.New(svc, opts...).Run(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
