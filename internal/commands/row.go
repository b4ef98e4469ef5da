package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/controller"
	"tasklist/internal/exitcode"
	"tasklist/internal/render"
	"tasklist/internal/service"
)

func init() {
	Register(&EditCmd{})
	Register(&DoneCmd{})
	Register(&RmCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Rename a task (prompts when no title is given)" }
func (c *EditCmd) Usage() string      { return "tasklist edit [common flags] <n> [title...]" }
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	return runRowAction(ctx, cfg, svc, render.AffordanceEdit, args, in, out, errOut, func(s *session, rest []string) {
		if len(rest) > 0 {
			s.dialogs.Answer(joinArgs(rest))
		}
	})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a task done, or undone if it already is" }
func (c *DoneCmd) Usage() string      { return "tasklist done [common flags] <n>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	return runRowAction(ctx, cfg, svc, render.AffordanceDone, args, in, out, errOut, nil)
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes skips the confirmation (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return nil }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "tasklist rm [common flags] [--yes] <n>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	return runRowAction(ctx, cfg, svc, render.AffordanceDelete, args, in, out, errOut, func(s *session, rest []string) {
		s.dialogs.AssumeYes = c.yes
	})
}

// runRowAction loads the list, resolves the row number in args and runs
// the affordance on that row as if it had been clicked.
func runRowAction(ctx context.Context, cfg *config.Config, svc service.Service, affordance string, args []string, in io.Reader, out, errOut io.Writer, prepare func(s *session, rest []string)) int {
	num, rest, err := ParseTaskRef(args)
	if err != nil {
		reportTaskRefError(errOut, err)
		return exitcode.UserError
	}
	if affordance != render.AffordanceEdit && len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, svc, in, errOut)
	if code != exitcode.Success {
		return code
	}

	task, ok := s.task(num)
	if !ok {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return exitcode.UserError
	}
	if prepare != nil {
		prepare(s, rest)
	}

	err = s.ctrl.HandleAction(ctx, controller.Event{RowID: task.ID, Affordance: affordance})
	// Deletes finish in the background; the process must not exit first.
	s.ctrl.Wait()
	if err != nil {
		return exitCode(err)
	}

	if s.dialogs.Cancelled() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}
	printOK(cfg, out)
	return exitcode.Success
}
