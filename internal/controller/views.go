package controller

import "tasklist/internal/service"

// ListView is the list container the controller renders into.
type ListView interface {
	// Replace swaps the whole list content for markup.
	Replace(markup string)
}

// InputView is the text field new task titles are typed into.
type InputView interface {
	Value() string
	Clear()
}

// Dialogs are the blocking user dialogs.
type Dialogs interface {
	// Alert shows a message.
	Alert(msg string)

	// Prompt asks for text, pre-filled with def. ok is false when the user
	// cancels.
	Prompt(msg, def string) (answer string, ok bool)

	// Confirm asks a yes/no question.
	Confirm(msg string) bool
}

// Renderer turns a task collection into list markup.
type Renderer interface {
	Render(tasks []service.Task) string
	RenderError(err error) string
}

type nopList struct{}

func (nopList) Replace(string) {}

type nopInput struct{}

func (nopInput) Value() string { return "" }
func (nopInput) Clear()        {}

type nopDialogs struct{}

func (nopDialogs) Alert(string)                         {}
func (nopDialogs) Prompt(string, string) (string, bool) { return "", false }
func (nopDialogs) Confirm(string) bool                  { return false }
