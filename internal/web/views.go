package web

import (
	"html/template"
	"net/url"
)

// listBuffer holds the list markup between requests. The markup comes
// from render.HTML, which escapes every title.
type listBuffer struct {
	markup string
}

func (l *listBuffer) Replace(markup string) { l.markup = markup }

func (l *listBuffer) html() template.HTML {
	return template.HTML(l.markup)
}

// formInput is the add form's text field. A value that fails validation
// stays in the field for the next page view.
type formInput struct {
	value string
}

func (i *formInput) Value() string { return i.value }
func (i *formInput) Clear()        { i.value = "" }

// confirmation is a pending yes/no question shown on the next page view.
type confirmation struct {
	Message string
	Action  string
}

// formDialogs maps dialogs onto the current form submission. Alerts are
// kept as flash messages until the next page view.
type formDialogs struct {
	alerts []string

	// per request
	answer    string
	answered  bool
	confirmed bool
	action    string
	pending   *confirmation
}

// begin resets the per-request answers from the submitted form.
func (d *formDialogs) begin(action string, form url.Values) {
	d.action = action
	d.answer = form.Get("title")
	d.answered = form.Has("title")
	d.confirmed = form.Get("confirm") == "yes"
}

func (d *formDialogs) Alert(msg string) {
	d.alerts = append(d.alerts, msg)
}

// Prompt answers with the submitted title; a form without one was
// cancelled.
func (d *formDialogs) Prompt(msg, def string) (string, bool) {
	return d.answer, d.answered
}

// Confirm is true when the form carries confirm=yes. Otherwise the question
// is queued for the next page view and the action does not run yet.
func (d *formDialogs) Confirm(msg string) bool {
	if d.confirmed {
		d.pending = nil
		return true
	}
	d.pending = &confirmation{Message: msg, Action: d.action}
	return false
}

// flush returns and clears what the next page view shows once.
func (d *formDialogs) flush() ([]string, *confirmation) {
	alerts, pending := d.alerts, d.pending
	d.alerts, d.pending = nil, nil
	return alerts, pending
}
