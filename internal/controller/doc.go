// Package controller implements the task-list controller: it holds the local
// task collection, renders it into an injected list view and turns user
// actions (add, edit, toggle, delete) into task API calls, reconciling the
// collection with each response.
//
// Create and update are pessimistic: the collection changes only after the
// API acknowledges. Delete is optimistic: the task disappears locally at
// once and the API call finishes in the background with no rollback on
// failure. Mutations of the same task are serialized.
package controller
