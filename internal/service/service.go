// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// Every task API call goes through this interface; the controller and the
// front ends never import a backend SDK directly.
type Service interface {
	// ListTasks returns the full task collection in API order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task from the draft and returns it with the
	// API-assigned ID.
	CreateTask(ctx context.Context, draft Draft) (Task, error)

	// UpdateTask sends the changed fields of a task and returns exactly the
	// fields the API reported back.
	UpdateTask(ctx context.Context, id string, patch Patch) (Patch, error)

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, id string) error
}
