// The tasks package implements a persisted task list: an ordered list of tasks, each with text, a completed flag
// and a priority, that can be added to, toggled, deleted from, and cleared of completed tasks.
//
// A Store holds the list in memory and writes all of it to a Storage slot after every change, so there is never
// unsaved state to lose. Storage is a small interface; this package provides a file-backed and an in-memory
// implementation and the sqlite sub-package a database-backed one.
//
// Tasks can be referred to by position, as a front-end showing the full list naturally would, or by ID, which
// stays valid while other tasks come and go. Position-based calls with a stale index fail with
// ErrIndexOutOfRange rather than changing some other task.
//
// Front-ends render Views: Project applies a Filter (all, active, completed) to the list and also computes the
// number of tasks left and the message to show when nothing matches. Store.OnChange tells a front-end when to
// render again.
package tasks // import "github.com/nicolagi/tasks"
