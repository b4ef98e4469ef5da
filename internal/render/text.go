package render

import (
	"fmt"
	"strings"

	"tasklist/internal/service"
)

// EmptyText is the terminal output for an empty collection.
const EmptyText = "no tasks found\n"

// Text renders tasks as numbered terminal lines.
// Format: "{N:>4}  [x] {TITLE}\n" ("[ ]" for open tasks).
type Text struct{}

// NewText creates a terminal renderer.
func NewText() *Text {
	return &Text{}
}

// Render returns one line per task, numbered from 1 in collection order.
func (Text) Render(tasks []service.Task) string {
	if len(tasks) == 0 {
		return EmptyText
	}
	var b strings.Builder
	for i, task := range tasks {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "%4d  [%s] %s\n", i+1, mark, normalizeTitle(task.Title))
	}
	return b.String()
}

// RenderError returns the terminal line shown when the list cannot load.
func (Text) RenderError(err error) string {
	return fmt.Sprintf("error loading tasks: %v\n", err)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
