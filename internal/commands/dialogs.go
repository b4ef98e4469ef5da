package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TerminalDialogs implements controller.Dialogs on a terminal: questions
// go to errOut and answers are read line by line from in.
type TerminalDialogs struct {
	in     *bufio.Reader
	errOut io.Writer

	// AssumeYes answers every confirmation with yes without asking.
	AssumeYes bool

	answer    *string
	cancelled bool
	declined  bool
}

// NewTerminalDialogs creates dialogs reading from in. A nil in behaves
// like a closed stdin: prompts are cancelled and confirmations declined.
func NewTerminalDialogs(in io.Reader, errOut io.Writer) *TerminalDialogs {
	if in == nil {
		in = strings.NewReader("")
	}
	return &TerminalDialogs{in: bufio.NewReader(in), errOut: errOut}
}

// Answer makes the next prompt return answer without reading input.
func (d *TerminalDialogs) Answer(answer string) {
	d.answer = &answer
}

// Cancelled reports whether a prompt was cancelled or a confirmation
// answered no.
func (d *TerminalDialogs) Cancelled() bool {
	return d.cancelled || d.declined
}

// Alert prints msg as an error line.
func (d *TerminalDialogs) Alert(msg string) {
	fmt.Fprintf(d.errOut, "error: %s\n", msg)
}

// Prompt asks for a line of text. An empty line keeps def; end of input
// cancels.
func (d *TerminalDialogs) Prompt(msg, def string) (string, bool) {
	if d.answer != nil {
		answer := *d.answer
		d.answer = nil
		return answer, true
	}

	fmt.Fprintf(d.errOut, "%s [%s] ", msg, def)
	line, ok := d.readLine()
	if !ok {
		fmt.Fprintln(d.errOut)
		d.cancelled = true
		return "", false
	}
	if line == "" {
		return def, true
	}
	return line, true
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (d *TerminalDialogs) Confirm(msg string) bool {
	if d.AssumeYes {
		return true
	}

	fmt.Fprintf(d.errOut, "%s [y/N] ", msg)
	line, ok := d.readLine()
	if !ok {
		fmt.Fprintln(d.errOut)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	d.declined = true
	return false
}

// readLine returns the next line without its line ending. ok is false at
// end of input with nothing read.
func (d *TerminalDialogs) readLine() (string, bool) {
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
