// Package render turns a task collection into list markup for a front end.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"tasklist/internal/service"
)

// EmptyPlaceholder is the list markup for an empty collection.
const EmptyPlaceholder = `<li class="empty-message">No tasks available.</li>`

// Affordance names carried by row buttons.
const (
	AffordanceEdit   = "edit"
	AffordanceDone   = "done"
	AffordanceDelete = "delete"
)

const rowTemplate = `{{define "row"}}` +
	`<li class="task-item{{if .Completed}} completed{{end}}" data-id="{{.ID}}">` +
	`<span class="task-title">{{.Title}}</span>` +
	`<form class="task-action" method="post">` +
	`<input class="task-edit" type="text" name="title" value="{{.Title}}">` +
	`<button class="task-btn edit" type="submit" formaction="/tasks/{{.ID}}/edit">Edit</button>` +
	`<button class="task-btn done" type="submit" formaction="/tasks/{{.ID}}/done">{{doneLabel .Completed}}</button>` +
	`<button class="task-btn delete" type="submit" formaction="/tasks/{{.ID}}/delete">Delete</button>` +
	`</form>` +
	`</li>` +
	`{{end}}`

const errorTemplate = `{{define "error"}}<li class="empty-message">Error loading tasks: {{.}}</li>{{end}}`

// HTML renders tasks as list items. Titles are escaped by html/template, so
// markup in a title is shown as text and never becomes an element.
type HTML struct {
	tpl *template.Template
}

// NewHTML creates an HTML renderer.
func NewHTML() *HTML {
	tpl := template.New("list").Funcs(template.FuncMap{
		"doneLabel": DoneLabel,
	})
	tpl = template.Must(tpl.Parse(rowTemplate))
	tpl = template.Must(tpl.Parse(errorTemplate))
	return &HTML{tpl: tpl}
}

// Render returns the list markup for tasks. The output depends only on the
// input sequence.
func (h *HTML) Render(tasks []service.Task) string {
	if len(tasks) == 0 {
		return EmptyPlaceholder
	}
	var b strings.Builder
	for _, task := range tasks {
		if err := h.tpl.ExecuteTemplate(&b, "row", task); err != nil {
			// The templates are static and the data is a plain struct.
			panic(fmt.Sprintf("render: row template: %v", err))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderError returns an inline error row shown in place of the list.
func (h *HTML) RenderError(err error) string {
	var b strings.Builder
	if execErr := h.tpl.ExecuteTemplate(&b, "error", err.Error()); execErr != nil {
		panic(fmt.Sprintf("render: error template: %v", execErr))
	}
	return b.String()
}

// DoneLabel is the label of the toggle-done affordance.
func DoneLabel(completed bool) string {
	if completed {
		return "Mark as undone"
	}
	return "Mark as done"
}
