package commands

import (
	"context"
	"flag"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "tasklist add [common flags] <title...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	s, code := openSession(ctx, cfg, svc, in, errOut)
	if code != exitcode.Success {
		return code
	}

	// The arguments play the part of the input field.
	s.input.value = joinArgs(args)
	if _, err := s.ctrl.AddTask(ctx); err != nil {
		return exitCode(err)
	}

	printOK(cfg, out)
	return exitcode.Success
}
