// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"

	"tasklist/internal/service"
)

// ErrNotFound is returned when a task is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	calls  []string
	nextID int

	updateGate chan struct{}
	deleteGate chan struct{}

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// UpdateResponse, when set, replaces the fields UpdateTask reports back.
	UpdateResponse func(id string, patch service.Patch) service.Patch

	// OnCall is invoked with the operation name as each call starts.
	OnCall func(op string)
}

// NewFakeService creates an empty FakeService. Created tasks get IDs
// "1", "2", ... unless SetNextID is used.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1}
}

// SetNextID sets the ID assigned to the next created task.
func (f *FakeService) SetNextID(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID = id
}

// AddTask adds a task to the fake backend.
func (f *FakeService) AddTask(id, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Completed: completed})
}

// Tasks returns the backend's tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

// Calls returns the operations received so far, e.g. "create", "update:3".
func (f *FakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many times op was called.
func (f *FakeService) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// HoldUpdates makes UpdateTask block until the returned func is called.
func (f *FakeService) HoldUpdates() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.updateGate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// HoldDeletes makes DeleteTask block until the returned func is called.
func (f *FakeService) HoldDeletes() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.deleteGate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (f *FakeService) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	hook := f.OnCall
	f.mu.Unlock()
	if hook != nil {
		hook(op)
	}
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("list")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	f.record("create")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	task := service.Task{
		ID:        strconv.Itoa(f.nextID),
		Title:     draft.Title,
		Completed: draft.Completed,
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service. Like json-server it reports the
// whole updated task back.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.Patch) (service.Patch, error) {
	f.record("update:" + id)
	f.mu.Lock()
	gate := f.updateGate
	f.mu.Unlock()
	if err := wait(ctx, gate); err != nil {
		return service.Patch{}, err
	}
	if f.UpdateTaskErr != nil {
		return service.Patch{}, f.UpdateTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Apply(patch)
			if f.UpdateResponse != nil {
				return f.UpdateResponse(id, patch), nil
			}
			title, completed := f.tasks[i].Title, f.tasks[i].Completed
			return service.Patch{Title: &title, Completed: &completed}, nil
		}
	}
	return service.Patch{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("delete:" + id)
	f.mu.Lock()
	gate := f.deleteGate
	f.mu.Unlock()
	if err := wait(ctx, gate); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = slices.Delete(f.tasks, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}
