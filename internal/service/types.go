// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single task item.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Draft is the payload for creating a task. It has no ID: IDs are only ever
// assigned by the API.
type Draft struct {
	Title     string `json:"title" validate:"required,max=1024"`
	Completed bool   `json:"completed"`
}

// Patch carries a subset of task fields. Nil fields are absent.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// TitlePatch returns a patch that changes only the title.
func TitlePatch(title string) Patch {
	return Patch{Title: &title}
}

// CompletedPatch returns a patch that changes only the completion flag.
func CompletedPatch(completed bool) Patch {
	return Patch{Completed: &completed}
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// Apply merges the fields present in p over t (shallow merge).
func (t *Task) Apply(p Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
