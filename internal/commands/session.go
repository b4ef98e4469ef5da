package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tasklist/internal/config"
	"tasklist/internal/controller"
	"tasklist/internal/exitcode"
	"tasklist/internal/render"
	"tasklist/internal/service"
)

// session is a controller bound to the terminal for one command.
type session struct {
	ctrl    *controller.Controller
	list    *textList
	input   *argInput
	dialogs *TerminalDialogs
}

// openSession builds a controller over svc and loads the task list.
// On failure the error has already been reported and the exit code is
// returned.
func openSession(ctx context.Context, cfg *config.Config, svc service.Service, in io.Reader, errOut io.Writer) (*session, int) {
	s := &session{
		list:    &textList{},
		input:   &argInput{},
		dialogs: NewTerminalDialogs(in, errOut),
	}
	opts := []controller.Option{
		controller.WithListView(s.list),
		controller.WithInputView(s.input),
		controller.WithDialogs(s.dialogs),
		controller.WithRenderer(render.NewText()),
		controller.WithLogger(cfg.Log()),
	}
	if d := cfg.Settings.Timeout.Duration; d > 0 {
		opts = append(opts, controller.WithTimeout(d))
	}
	s.ctrl = controller.New(svc, opts...)

	if err := s.ctrl.LoadAndRender(ctx); err != nil {
		return nil, exitcode.BackendError
	}
	return s, exitcode.Success
}

// task returns the task shown at row n (1-based).
func (s *session) task(n int) (service.Task, bool) {
	tasks := s.ctrl.Tasks()
	if n < 1 || n > len(tasks) {
		return service.Task{}, false
	}
	return tasks[n-1], true
}

// exitCode maps a controller error to an exit code. The controller has
// already reported it through the dialogs.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case controller.IsUserError(err):
		return exitcode.UserError
	case errors.Is(err, context.Canceled):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}

// printOK prints "ok" unless quiet mode is on.
func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}

// textList keeps the last rendered list.
type textList struct {
	text string
}

func (l *textList) Replace(markup string) { l.text = markup }

// argInput is the new-task field, filled from command arguments.
type argInput struct {
	value string
}

func (i *argInput) Value() string { return i.value }
func (i *argInput) Clear()        { i.value = "" }

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
