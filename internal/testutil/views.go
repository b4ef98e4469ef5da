package testutil

import (
	"slices"
	"sync"
)

// ListView records what the controller renders.
type ListView struct {
	mu      sync.Mutex
	markup  string
	renders int
}

// Replace implements controller.ListView.
func (v *ListView) Replace(markup string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.markup = markup
	v.renders++
}

// Markup returns the last rendered markup.
func (v *ListView) Markup() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.markup
}

// Renders returns how many times the list was replaced.
func (v *ListView) Renders() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders
}

// InputView is an in-memory text field.
type InputView struct {
	mu      sync.Mutex
	value   string
	cleared int
}

// NewInputView creates an input field holding value.
func NewInputView(value string) *InputView {
	return &InputView{value: value}
}

// Value implements controller.InputView.
func (v *InputView) Value() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Clear implements controller.InputView.
func (v *InputView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = ""
	v.cleared++
}

// Set types a new value into the field.
func (v *InputView) Set(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = value
}

// Cleared returns how many times the field was cleared.
func (v *InputView) Cleared() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cleared
}

// Dialogs answers prompts and confirmations from preset values and records
// every message shown.
type Dialogs struct {
	mu sync.Mutex

	// PromptAnswer and PromptOK are returned by Prompt.
	PromptAnswer string
	PromptOK     bool

	// ConfirmAnswer is returned by Confirm.
	ConfirmAnswer bool

	alerts   []string
	prompts  []string
	confirms []string
}

// Alert implements controller.Dialogs.
func (d *Dialogs) Alert(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, msg)
}

// Prompt implements controller.Dialogs.
func (d *Dialogs) Prompt(msg, def string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prompts = append(d.prompts, msg+"|"+def)
	return d.PromptAnswer, d.PromptOK
}

// Confirm implements controller.Dialogs.
func (d *Dialogs) Confirm(msg string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirms = append(d.confirms, msg)
	return d.ConfirmAnswer
}

// Alerts returns the alerts shown so far.
func (d *Dialogs) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.alerts)
}

// Prompts returns the prompts shown so far as "message|default".
func (d *Dialogs) Prompts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.prompts)
}

// Confirms returns the confirmation questions asked so far.
func (d *Dialogs) Confirms() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.confirms)
}
