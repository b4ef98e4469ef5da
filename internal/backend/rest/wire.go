package rest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"tasklist/internal/service"
)

// wireTask is a task as the API sends it.
type wireTask struct {
	ID        flexID `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (w wireTask) task() service.Task {
	return service.Task{ID: string(w.ID), Title: w.Title, Completed: w.Completed}
}

// flexID accepts an id sent as a JSON string or number. Numbers keep their
// decimal text, so 7 and "7" name the same task.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = flexID(n.String())
	return nil
}
