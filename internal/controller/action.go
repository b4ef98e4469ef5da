package controller

import "tasklist/internal/render"

// Action is a row-level user action.
type Action int

const (
	// ActionNone means the event did not hit an affordance.
	ActionNone Action = iota
	ActionEdit
	ActionToggleDone
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionEdit:
		return "edit"
	case ActionToggleDone:
		return "done"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// ResolveAction maps an affordance name to its action.
func ResolveAction(affordance string) Action {
	switch affordance {
	case render.AffordanceEdit:
		return ActionEdit
	case render.AffordanceDone:
		return ActionToggleDone
	case render.AffordanceDelete:
		return ActionDelete
	default:
		return ActionNone
	}
}

// Event is a user interaction on the list: the row it happened in and the
// affordance that was activated. An empty RowID means the interaction was
// outside any row.
type Event struct {
	RowID      string
	Affordance string
}
