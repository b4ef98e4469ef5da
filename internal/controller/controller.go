package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"tasklist/internal/logging"
	"tasklist/internal/render"
	"tasklist/internal/service"
)

// DefaultTimeout bounds the background delete call.
const DefaultTimeout = 5 * time.Second

// NoExclude is the excludeID that matches no task. API-assigned IDs are
// never empty.
const NoExclude = ""

// User-facing messages.
const (
	msgAddEmpty      = "Please write something!"
	msgAddDuplicate  = "Task with this title already exists! Please use a different title."
	msgEditPrompt    = "Enter the new task title:"
	msgEditEmpty     = "Task title cannot be empty!"
	msgEditDuplicate = "Task with this title already exists! Please use a different task title!"
	msgTitleTooLong  = "Task title is too long!"
	msgDeleteConfirm = "Are you sure you want to delete %q?"
	msgLoadFailed    = "Error loading tasks: %v"
	msgCreateFailed  = "Could not add the new task: %v"
	msgUpdateFailed  = "Error while editing: %v"
)

// titleGuardPrefix namespaces title reservations in the in-flight set.
// Creates and edits that would produce the same title take the same key.
const titleGuardPrefix = "title:"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Controller holds the local task collection and binds user actions to the
// task API. It is safe for concurrent use.
type Controller struct {
	svc      service.Service
	list     ListView
	input    InputView
	dialogs  Dialogs
	renderer Renderer
	log      *log.Logger
	timeout  time.Duration

	mu    sync.Mutex
	tasks []service.Task

	guard   *inflight
	pending sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithListView sets the list container.
func WithListView(v ListView) Option {
	return func(c *Controller) { c.list = v }
}

// WithInputView sets the new-task input field.
func WithInputView(v InputView) Option {
	return func(c *Controller) { c.input = v }
}

// WithDialogs sets the alert/prompt/confirm dialogs.
func WithDialogs(d Dialogs) Option {
	return func(c *Controller) { c.dialogs = d }
}

// WithRenderer sets the renderer. The default is render.NewHTML().
func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithTimeout bounds background API calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// New creates a controller over svc with an empty collection.
func New(svc service.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:      svc,
		list:     nopList{},
		input:    nopInput{},
		dialogs:  nopDialogs{},
		renderer: render.NewHTML(),
		log:      logging.Discard(),
		timeout:  DefaultTimeout,
		guard:    newInflight(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tasks returns a copy of the local collection in render order.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tasks)
}

// LoadAndRender fetches the full collection, replaces the local one and
// renders it. On failure the list shows an inline error and the local
// collection is kept.
func (c *Controller) LoadAndRender(ctx context.Context) error {
	tasks, err := c.svc.ListTasks(ctx)
	if err != nil {
		c.log.Error("load tasks failed", "err", err)
		c.mu.Lock()
		c.list.Replace(c.renderer.RenderError(err))
		c.mu.Unlock()
		c.dialogs.Alert(fmt.Sprintf(msgLoadFailed, err))
		return &NetworkError{Op: "load tasks", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = slices.Clone(tasks)
	c.renderLocked()
	c.log.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// RenderTasks returns the markup for tasks without touching any view.
func (c *Controller) RenderTasks(tasks []service.Task) string {
	return c.renderer.Render(tasks)
}

// Render renders the local collection into the list view.
func (c *Controller) Render() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderLocked()
}

func (c *Controller) renderLocked() {
	c.list.Replace(c.renderer.Render(c.tasks))
}

// HandleAction runs the row action an event resolves to.
// Events outside a row or on an unknown affordance return ErrNoAction; rows
// that are no longer in the collection return ErrTaskNotFound. Neither
// changes anything.
func (c *Controller) HandleAction(ctx context.Context, ev Event) error {
	action := ResolveAction(ev.Affordance)
	if ev.RowID == "" || action == ActionNone {
		return ErrNoAction
	}

	task, ok := c.lookup(ev.RowID)
	if !ok {
		c.log.Warn("action on a task that is no longer listed", "id", ev.RowID, "action", action)
		return ErrTaskNotFound
	}

	switch action {
	case ActionEdit:
		return c.editTitle(ctx, task)
	case ActionToggleDone:
		_, err := c.toggleDone(ctx, task.ID)
		return err
	case ActionDelete:
		if !c.dialogs.Confirm(fmt.Sprintf(msgDeleteConfirm, task.Title)) {
			return nil
		}
		c.DeleteTask(ctx, task.ID)
		return nil
	}
	return ErrNoAction
}

func (c *Controller) editTitle(ctx context.Context, task service.Task) error {
	answer, ok := c.dialogs.Prompt(msgEditPrompt, task.Title)
	if !ok {
		return nil
	}
	title := strings.TrimSpace(answer)
	if title == "" {
		c.dialogs.Alert(msgEditEmpty)
		return ErrEmptyTitle
	}
	if c.IsDuplicate(title, task.ID) {
		c.dialogs.Alert(msgEditDuplicate)
		return ErrDuplicateTitle
	}

	release, err := c.reserveTitle(ctx, title)
	if err != nil {
		return err
	}
	defer release()
	if c.IsDuplicate(title, task.ID) {
		c.dialogs.Alert(msgEditDuplicate)
		return ErrDuplicateTitle
	}
	_, err = c.UpdateTask(ctx, task.ID, service.TitlePatch(title))
	return err
}

// reserveTitle holds title until release is called, so that two mutations
// producing the same title cannot both pass the duplicate check.
func (c *Controller) reserveTitle(ctx context.Context, title string) (func(), error) {
	return c.guard.acquire(ctx, titleGuardPrefix+strings.ToLower(title))
}

// AddTask creates a task from the input field. The field is cleared once
// the title passes validation, whatever the API outcome.
func (c *Controller) AddTask(ctx context.Context) (service.Task, error) {
	title := strings.TrimSpace(c.input.Value())
	if title == "" {
		c.dialogs.Alert(msgAddEmpty)
		return service.Task{}, ErrEmptyTitle
	}
	if c.IsDuplicate(title, NoExclude) {
		c.dialogs.Alert(msgAddDuplicate)
		return service.Task{}, ErrDuplicateTitle
	}

	c.input.Clear()
	return c.CreateTask(ctx, service.Draft{Title: title, Completed: false})
}

// CreateTask sends draft to the API and inserts the returned task at the
// front of the collection.
func (c *Controller) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if err := validateDraft(draft); err != nil {
		if errors.Is(err, ErrTitleTooLong) {
			c.dialogs.Alert(msgTitleTooLong)
		} else {
			c.dialogs.Alert(msgAddEmpty)
		}
		return service.Task{}, err
	}

	release, err := c.reserveTitle(ctx, draft.Title)
	if err != nil {
		return service.Task{}, err
	}
	defer release()
	if c.IsDuplicate(draft.Title, NoExclude) {
		c.dialogs.Alert(msgAddDuplicate)
		return service.Task{}, ErrDuplicateTitle
	}

	created, err := c.svc.CreateTask(ctx, draft)
	if err != nil {
		c.log.Error("create task failed", "title", draft.Title, "err", err)
		c.dialogs.Alert(fmt.Sprintf(msgCreateFailed, err))
		return service.Task{}, &NetworkError{Op: "create task", Err: err}
	}

	c.mu.Lock()
	c.tasks = slices.Insert(c.tasks, 0, created)
	c.renderLocked()
	c.mu.Unlock()

	c.log.Debug("task created", "id", created.ID)
	return created, nil
}

// UpdateTask sends patch for the task with id and merges the fields the API
// returns into the local task. Updates of the same task run one at a time.
func (c *Controller) UpdateTask(ctx context.Context, id string, patch service.Patch) (service.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateDraft(service.Draft{Title: title}); err != nil {
			if errors.Is(err, ErrTitleTooLong) {
				c.dialogs.Alert(msgTitleTooLong)
			} else {
				c.dialogs.Alert(msgEditEmpty)
			}
			return service.Task{}, err
		}
		patch.Title = &title
	}

	release, err := c.guard.acquire(ctx, id)
	if err != nil {
		return service.Task{}, err
	}
	defer release()
	return c.update(ctx, id, patch)
}

// toggleDone flips the completion flag. The current flag is read after
// earlier mutations of the task have settled.
func (c *Controller) toggleDone(ctx context.Context, id string) (service.Task, error) {
	release, err := c.guard.acquire(ctx, id)
	if err != nil {
		return service.Task{}, err
	}
	defer release()

	task, ok := c.lookup(id)
	if !ok {
		c.log.Warn("toggled task is no longer listed", "id", id)
		return service.Task{}, ErrTaskNotFound
	}
	return c.update(ctx, id, service.CompletedPatch(!task.Completed))
}

// update runs the API call for a mutation whose guard the caller holds.
func (c *Controller) update(ctx context.Context, id string, patch service.Patch) (service.Task, error) {
	returned, err := c.svc.UpdateTask(ctx, id, patch)
	if err != nil {
		c.log.Error("update task failed", "id", id, "err", err)
		c.dialogs.Alert(fmt.Sprintf(msgUpdateFailed, err))
		return service.Task{}, &NetworkError{Op: "update task", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		c.log.Warn("updated task is no longer listed", "id", id)
		return service.Task{}, ErrTaskNotFound
	}
	c.tasks[i].Apply(returned)
	c.renderLocked()

	c.log.Debug("task updated", "id", id)
	return c.tasks[i], nil
}

// DeleteTask removes the task with id from the collection, renders, and
// then deletes it through the API in the background. A failed API delete is
// logged and not rolled back. Use Wait to block until background deletes
// finish.
func (c *Controller) DeleteTask(ctx context.Context, id string) {
	c.mu.Lock()
	c.tasks = slices.DeleteFunc(c.tasks, func(t service.Task) bool { return t.ID == id })
	c.renderLocked()
	c.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()

		ctx, cancel := context.WithTimeout(bg, c.timeout)
		defer cancel()

		release, err := c.guard.acquire(ctx, id)
		if err != nil {
			c.log.Error("delete task abandoned", "id", id, "err", err)
			return
		}
		defer release()

		if err := c.svc.DeleteTask(ctx, id); err != nil {
			c.log.Error("delete task failed", "id", id, "err", err)
			return
		}
		c.log.Debug("task deleted", "id", id)
	}()
}

// Wait blocks until every background delete has finished.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Busy reports whether a mutation of the task with id is in flight.
func (c *Controller) Busy(id string) bool {
	return c.guard.isBusy(id)
}

// IsDuplicate reports whether a task other than excludeID already has
// title, compared case-insensitively.
func (c *Controller) IsDuplicate(title, excludeID string) bool {
	want := strings.ToLower(strings.TrimSpace(title))

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if excludeID != NoExclude && t.ID == excludeID {
			continue
		}
		if strings.ToLower(t.Title) == want {
			return true
		}
	}
	return false
}

func (c *Controller) lookup(id string) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return service.Task{}, false
	}
	return c.tasks[i], true
}

func (c *Controller) indexLocked(id string) int {
	return slices.IndexFunc(c.tasks, func(t service.Task) bool { return t.ID == id })
}

// validateDraft maps validator failures onto the package sentinels.
func validateDraft(d service.Draft) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Title" && fe.Tag() == "max" {
				return ErrTitleTooLong
			}
		}
		return ErrEmptyTitle
	}
	return err
}
