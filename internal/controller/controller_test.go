package controller_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tasklist/internal/controller"
	"tasklist/internal/render"
	"tasklist/internal/service"
	"tasklist/internal/testutil"
)

type fixture struct {
	svc     *testutil.FakeService
	list    *testutil.ListView
	input   *testutil.InputView
	dialogs *testutil.Dialogs
	ctrl    *controller.Controller
}

// newFixture creates a controller over svc and loads its tasks.
func newFixture(t *testing.T, svc *testutil.FakeService) *fixture {
	t.Helper()
	f := &fixture{
		svc:     svc,
		list:    &testutil.ListView{},
		input:   testutil.NewInputView(""),
		dialogs: &testutil.Dialogs{},
	}
	f.ctrl = controller.New(svc,
		controller.WithListView(f.list),
		controller.WithInputView(f.input),
		controller.WithDialogs(f.dialogs),
		controller.WithTimeout(time.Second),
	)
	if err := f.ctrl.LoadAndRender(context.Background()); err != nil {
		t.Fatalf("LoadAndRender: %v", err)
	}
	return f
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "Buy milk", false)
	svc.AddTask("2", "Write report", true)
	svc.SetNextID(3)
	return svc
}

func titles(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestLoadAndRender(t *testing.T) {
	f := newFixture(t, seeded())

	got := f.ctrl.Tasks()
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("unexpected tasks: %+v", got)
	}
	markup := f.list.Markup()
	if !strings.Contains(markup, `data-id="1"`) || !strings.Contains(markup, `data-id="2"`) {
		t.Errorf("expected both rows, got %q", markup)
	}
	if !strings.Contains(markup, `class="task-item completed" data-id="2"`) {
		t.Errorf("expected completed row for task 2, got %q", markup)
	}
}

func TestLoadAndRender_Empty(t *testing.T) {
	f := newFixture(t, testutil.NewFakeService())

	if f.list.Markup() != render.EmptyPlaceholder {
		t.Errorf("expected placeholder, got %q", f.list.Markup())
	}
}

func TestLoadAndRender_Failure(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	svc.ListTasksErr = errors.New("connection refused")

	err := f.ctrl.LoadAndRender(context.Background())

	var netErr *controller.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !strings.Contains(f.list.Markup(), "Error loading tasks: connection refused") {
		t.Errorf("expected inline error, got %q", f.list.Markup())
	}
	alerts := f.dialogs.Alerts()
	if len(alerts) != 1 || alerts[0] != "Error loading tasks: connection refused" {
		t.Errorf("unexpected alerts: %v", alerts)
	}
	if len(f.ctrl.Tasks()) != 2 {
		t.Errorf("expected local collection kept, got %d tasks", len(f.ctrl.Tasks()))
	}
}

func TestRenderTasks_EscapesTitles(t *testing.T) {
	ctrl := controller.New(testutil.NewFakeService())

	markup := ctrl.RenderTasks([]service.Task{{ID: "1", Title: `<script>alert("x")</script>`}})

	if strings.Contains(markup, "<script>") {
		t.Errorf("title was not escaped: %q", markup)
	}
	if !strings.Contains(markup, "&lt;script&gt;") {
		t.Errorf("expected escaped title, got %q", markup)
	}
}

func TestAddTask(t *testing.T) {
	svc := seeded()
	svc.SetNextID(42)
	f := newFixture(t, svc)
	f.input.Set("  Call mom  ")

	task, err := f.ctrl.AddTask(context.Background())
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	if task.ID != "42" || task.Title != "Call mom" || task.Completed {
		t.Errorf("unexpected task: %+v", task)
	}
	got := f.ctrl.Tasks()
	if got[0].ID != "42" {
		t.Errorf("expected new task first, got %v", titles(got))
	}
	if !strings.Contains(f.list.Markup(), `data-id="42"`) {
		t.Errorf("expected row for task 42, got %q", f.list.Markup())
	}
	if f.input.Value() != "" || f.input.Cleared() != 1 {
		t.Errorf("expected input cleared once, value=%q cleared=%d", f.input.Value(), f.input.Cleared())
	}
}

func TestAddTask_Empty(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.input.Set("   ")

	_, err := f.ctrl.AddTask(context.Background())

	if !errors.Is(err, controller.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if svc.CallCount("create") != 0 {
		t.Error("expected no create call")
	}
	alerts := f.dialogs.Alerts()
	if len(alerts) != 1 || alerts[0] != "Please write something!" {
		t.Errorf("unexpected alerts: %v", alerts)
	}
}

func TestAddTask_Duplicate(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.input.Set("  bUY MILK ")
	before := f.list.Renders()

	_, err := f.ctrl.AddTask(context.Background())

	if !errors.Is(err, controller.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	if svc.CallCount("create") != 0 {
		t.Error("expected no create call")
	}
	if f.input.Value() != "  bUY MILK " {
		t.Errorf("expected input kept, got %q", f.input.Value())
	}
	if f.list.Renders() != before {
		t.Error("expected no re-render")
	}
	alerts := f.dialogs.Alerts()
	if len(alerts) != 1 || !strings.HasPrefix(alerts[0], "Task with this title already exists!") {
		t.Errorf("unexpected alerts: %v", alerts)
	}
}

func TestAddTask_APIFailure(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	svc.CreateTaskErr = errors.New("server error")
	f.input.Set("Call mom")

	_, err := f.ctrl.AddTask(context.Background())

	var netErr *controller.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if len(f.ctrl.Tasks()) != 2 {
		t.Errorf("expected collection unchanged, got %v", titles(f.ctrl.Tasks()))
	}
	if f.input.Value() != "" {
		t.Errorf("expected input cleared before the call, got %q", f.input.Value())
	}
}

func TestCreateTask_TooLong(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)

	_, err := f.ctrl.CreateTask(context.Background(), service.Draft{Title: strings.Repeat("a", 1025)})

	if !errors.Is(err, controller.ErrTitleTooLong) {
		t.Fatalf("expected ErrTitleTooLong, got %v", err)
	}
	if svc.CallCount("create") != 0 {
		t.Error("expected no create call")
	}
}

func TestCreateTask_ConcurrentSameTitle(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.ctrl.CreateTask(context.Background(), service.Draft{Title: "Call mom"})
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, controller.ErrDuplicateTitle):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 || svc.CallCount("create") != 1 {
		t.Errorf("expected exactly one create, got %d (calls %d)", created, svc.CallCount("create"))
	}
}

func TestHandleAction_ConcurrentEditsSameTitle(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.PromptAnswer = "Same title"
	f.dialogs.PromptOK = true
	started := make(chan string, 4)
	svc.OnCall = func(op string) { started <- op }
	release := svc.HoldUpdates()

	errs := make(chan error, 2)
	for _, id := range []string{"1", "2"} {
		go func() {
			errs <- f.ctrl.HandleAction(context.Background(), controller.Event{RowID: id, Affordance: render.AffordanceEdit})
		}()
	}

	<-started
	select {
	case op := <-started:
		t.Fatalf("second edit reached the API while the first was in flight: %s", op)
	case <-time.After(50 * time.Millisecond):
	}
	release()

	var rejected int
	for range 2 {
		err := <-errs
		switch {
		case err == nil:
		case errors.Is(err, controller.ErrDuplicateTitle):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if rejected != 1 {
		t.Errorf("expected one edit rejected as duplicate, got %d", rejected)
	}
	if got := titles(f.ctrl.Tasks()); got[0] == got[1] {
		t.Errorf("two tasks share a title: %v", got)
	}
	if n := svc.CallCount("update:1") + svc.CallCount("update:2"); n != 1 {
		t.Errorf("expected one update call, got %d", n)
	}
}

func TestHandleAction_EditRacingCreate(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.PromptAnswer = "call MOM"
	f.dialogs.PromptOK = true
	started := make(chan string, 4)
	svc.OnCall = func(op string) { started <- op }
	release := svc.HoldUpdates()

	editDone := make(chan error, 1)
	go func() {
		editDone <- f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceEdit})
	}()
	if op := <-started; op != "update:1" {
		t.Fatalf("expected update:1, got %s", op)
	}

	createDone := make(chan error, 1)
	go func() {
		_, err := f.ctrl.CreateTask(context.Background(), service.Draft{Title: "Call mom"})
		createDone <- err
	}()
	select {
	case op := <-started:
		t.Fatalf("create reached the API while an edit to the same title was in flight: %s", op)
	case <-time.After(50 * time.Millisecond):
	}
	release()

	if err := <-editDone; err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if err := <-createDone; !errors.Is(err, controller.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle for the create, got %v", err)
	}
	if svc.CallCount("create") != 0 {
		t.Error("expected no create call")
	}
}

func TestIsDuplicate(t *testing.T) {
	f := newFixture(t, seeded())

	tests := []struct {
		title   string
		exclude string
		want    bool
	}{
		{"Buy milk", controller.NoExclude, true},
		{"BUY MILK", controller.NoExclude, true},
		{"  buy milk  ", controller.NoExclude, true},
		{"Buy milk", "1", false},
		{"Write report", "1", true},
		{"Buy bread", controller.NoExclude, false},
	}
	for _, tt := range tests {
		if got := f.ctrl.IsDuplicate(tt.title, tt.exclude); got != tt.want {
			t.Errorf("IsDuplicate(%q, %q) = %v, want %v", tt.title, tt.exclude, got, tt.want)
		}
	}
}

func TestAddTask_DuplicateOfTaskWithoutID(t *testing.T) {
	svc := seeded()
	svc.AddTask("", "Pay rent", false)
	f := newFixture(t, svc)
	f.input.Set("pay rent")

	_, err := f.ctrl.AddTask(context.Background())

	if !errors.Is(err, controller.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	if svc.CallCount("create") != 0 {
		t.Error("expected no create call")
	}
}

func TestHandleAction_Edit(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.PromptAnswer = "  Buy oat milk "
	f.dialogs.PromptOK = true

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceEdit})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}

	prompts := f.dialogs.Prompts()
	if len(prompts) != 1 || prompts[0] != "Enter the new task title:|Buy milk" {
		t.Errorf("unexpected prompts: %v", prompts)
	}
	if got := f.ctrl.Tasks()[0].Title; got != "Buy oat milk" {
		t.Errorf("expected edited title, got %q", got)
	}
	if !strings.Contains(f.list.Markup(), "Buy oat milk") {
		t.Errorf("expected re-render with new title, got %q", f.list.Markup())
	}
}

func TestHandleAction_EditSameTitleDifferentCase(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.PromptAnswer = "BUY MILK"
	f.dialogs.PromptOK = true

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceEdit})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if svc.CallCount("update:1") != 1 {
		t.Errorf("expected the update to be sent, calls: %v", svc.Calls())
	}
	if got := f.ctrl.Tasks()[0].Title; got != "BUY MILK" {
		t.Errorf("expected title %q, got %q", "BUY MILK", got)
	}
}

func TestHandleAction_EditDuplicate(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.PromptAnswer = "write REPORT"
	f.dialogs.PromptOK = true

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceEdit})

	if !errors.Is(err, controller.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	if svc.CallCount("update:1") != 0 {
		t.Error("expected no update call")
	}
}

func TestHandleAction_EditCancelled(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.PromptOK = false

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceEdit})

	if err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
	if svc.CallCount("update:1") != 0 || len(f.dialogs.Alerts()) != 0 {
		t.Errorf("expected nothing to happen, calls %v alerts %v", svc.Calls(), f.dialogs.Alerts())
	}
}

func TestHandleAction_EditEmpty(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.PromptAnswer = "   "
	f.dialogs.PromptOK = true

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceEdit})

	if !errors.Is(err, controller.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	alerts := f.dialogs.Alerts()
	if len(alerts) != 1 || alerts[0] != "Task title cannot be empty!" {
		t.Errorf("unexpected alerts: %v", alerts)
	}
}

func TestHandleAction_ToggleDone(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceDone})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if !f.ctrl.Tasks()[0].Completed {
		t.Error("expected task 1 completed")
	}
	if !strings.Contains(f.list.Markup(), `class="task-item completed" data-id="1"`) {
		t.Errorf("expected completed row, got %q", f.list.Markup())
	}

	err = f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceDone})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if f.ctrl.Tasks()[0].Completed {
		t.Error("expected task 1 back to not completed")
	}
}

func TestUpdateTask_MergesReturnedFields(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	svc.UpdateResponse = func(id string, patch service.Patch) service.Patch {
		return service.CompletedPatch(true)
	}

	task, err := f.ctrl.UpdateTask(context.Background(), "1", service.CompletedPatch(true))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Title != "Buy milk" || !task.Completed {
		t.Errorf("expected title kept and completed set, got %+v", task)
	}
}

func TestUpdateTask_Failure(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	svc.UpdateTaskErr = errors.New("timeout")
	before := f.list.Renders()

	_, err := f.ctrl.UpdateTask(context.Background(), "1", service.TitlePatch("Buy bread"))

	var netErr *controller.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if got := f.ctrl.Tasks()[0].Title; got != "Buy milk" {
		t.Errorf("expected title unchanged, got %q", got)
	}
	if f.list.Renders() != before {
		t.Error("expected no re-render")
	}
	alerts := f.dialogs.Alerts()
	if len(alerts) != 1 || alerts[0] != "Error while editing: timeout" {
		t.Errorf("unexpected alerts: %v", alerts)
	}
}

func TestUpdateTask_SerializedPerTask(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	started := make(chan string, 4)
	svc.OnCall = func(op string) { started <- op }
	release := svc.HoldUpdates()

	done := make(chan error, 2)
	go func() {
		_, err := f.ctrl.UpdateTask(context.Background(), "1", service.TitlePatch("Buy bread"))
		done <- err
	}()
	if op := <-started; op != "update:1" {
		t.Fatalf("expected update:1, got %s", op)
	}
	if !f.ctrl.Busy("1") {
		t.Error("expected task 1 busy while its update is in flight")
	}
	if f.ctrl.Busy("2") {
		t.Error("expected task 2 idle")
	}

	go func() {
		done <- f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceDone})
	}()

	select {
	case op := <-started:
		t.Fatalf("second mutation started while the first was in flight: %s", op)
	case <-time.After(50 * time.Millisecond):
	}

	release()
	for range 2 {
		if err := <-done; err != nil {
			t.Fatalf("mutation failed: %v", err)
		}
	}

	got := f.ctrl.Tasks()[0]
	if got.Title != "Buy bread" || !got.Completed {
		t.Errorf("expected both mutations applied, got %+v", got)
	}
	if f.ctrl.Busy("1") {
		t.Error("expected task 1 idle after both mutations")
	}
}

func TestToggleDone_ConcurrentTogglesNotLost(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceDone})
			if err != nil {
				t.Errorf("toggle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if f.ctrl.Tasks()[0].Completed {
		t.Error("expected two toggles to cancel out")
	}
	if svc.Tasks()[0].Completed {
		t.Error("expected backend task back to not completed")
	}
}

func TestHandleAction_Delete(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.ConfirmAnswer = true
	release := svc.HoldDeletes()

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceDelete})
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}

	confirms := f.dialogs.Confirms()
	if len(confirms) != 1 || confirms[0] != `Are you sure you want to delete "Buy milk"?` {
		t.Errorf("unexpected confirms: %v", confirms)
	}
	// The row is gone before the API call has finished.
	if got := titles(f.ctrl.Tasks()); len(got) != 1 || got[0] != "Write report" {
		t.Errorf("expected task removed locally, got %v", got)
	}
	if strings.Contains(f.list.Markup(), `data-id="1"`) {
		t.Errorf("expected row removed, got %q", f.list.Markup())
	}
	if len(svc.Tasks()) != 2 {
		t.Error("expected backend delete still pending")
	}

	release()
	f.ctrl.Wait()

	if len(svc.Tasks()) != 1 || svc.CallCount("delete:1") != 1 {
		t.Errorf("expected backend delete, calls %v", svc.Calls())
	}
}

func TestHandleAction_DeleteNotConfirmed(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	f.dialogs.ConfirmAnswer = false

	err := f.ctrl.HandleAction(context.Background(), controller.Event{RowID: "1", Affordance: render.AffordanceDelete})
	f.ctrl.Wait()

	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(f.ctrl.Tasks()) != 2 || svc.CallCount("delete:1") != 0 {
		t.Errorf("expected nothing deleted, calls %v", svc.Calls())
	}
}

func TestDeleteTask_FailureNotRolledBack(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	svc.DeleteTaskErr = errors.New("server error")

	f.ctrl.DeleteTask(context.Background(), "2")
	f.ctrl.Wait()

	if got := titles(f.ctrl.Tasks()); len(got) != 1 || got[0] != "Buy milk" {
		t.Errorf("expected task kept out of the local list, got %v", got)
	}
	if len(svc.Tasks()) != 2 {
		t.Error("expected backend task to survive the failed delete")
	}
	if len(f.dialogs.Alerts()) != 0 {
		t.Errorf("expected no alert, got %v", f.dialogs.Alerts())
	}
}

func TestDeleteTask_OutlivesRequestContext(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)
	release := svc.HoldDeletes()

	ctx, cancel := context.WithCancel(context.Background())
	f.ctrl.DeleteTask(ctx, "1")
	cancel()
	release()
	f.ctrl.Wait()

	if len(svc.Tasks()) != 1 {
		t.Errorf("expected backend delete to complete, calls %v", svc.Calls())
	}
}

func TestHandleAction_NoAction(t *testing.T) {
	svc := seeded()
	f := newFixture(t, svc)

	tests := []struct {
		name string
		ev   controller.Event
		want error
	}{
		{"outside any row", controller.Event{Affordance: render.AffordanceDone}, controller.ErrNoAction},
		{"unknown affordance", controller.Event{RowID: "1", Affordance: "archive"}, controller.ErrNoAction},
		{"row not listed", controller.Event{RowID: "99", Affordance: render.AffordanceDone}, controller.ErrTaskNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ctrl.HandleAction(context.Background(), tt.ev)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if calls := svc.Calls(); len(calls) != 1 {
		t.Errorf("expected only the initial load, got %v", calls)
	}
}

func TestResolveAction(t *testing.T) {
	tests := map[string]controller.Action{
		render.AffordanceEdit:   controller.ActionEdit,
		render.AffordanceDone:   controller.ActionToggleDone,
		render.AffordanceDelete: controller.ActionDelete,
		"":                      controller.ActionNone,
		"task-title":            controller.ActionNone,
	}
	for in, want := range tests {
		if got := controller.ResolveAction(in); got != want {
			t.Errorf("ResolveAction(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsUserError(t *testing.T) {
	if !controller.IsUserError(controller.ErrDuplicateTitle) {
		t.Error("expected duplicate title to be a user error")
	}
	if controller.IsUserError(&controller.NetworkError{Op: "load tasks", Err: errors.New("boom")}) {
		t.Error("expected network error not to be a user error")
	}
}
