package tasks

// Entry is a task as shown in a view, together with its position in the full collection. Front-ends must use
// Index (or Task.ID), not the entry's position within the view, when calling back into the store: the two differ
// as soon as the view is filtered.
type Entry struct {
	Index int
	Task
}

// View is everything a front-end needs to render the task list under a filter.
type View struct {
	Filter    Filter
	Entries   []Entry
	Remaining int
}

// Project derives the view of tasks under filter f.
func Project(tasks []Task, f Filter) View {
	v := View{
		Filter:    f,
		Remaining: RemainingCount(tasks),
	}
	for _, i := range f.scan(tasks).Indexes() {
		v.Entries = append(v.Entries, Entry{Index: i, Task: tasks[i]})
	}
	return v
}

// Empty reports whether the filter selected no tasks.
func (v View) Empty() bool {
	return len(v.Entries) == 0
}

// EmptyMessage is EmptyStateMessage for the view's filter.
func (v View) EmptyMessage() string {
	return EmptyStateMessage(v.Filter)
}

// RemainingLabel is RemainingLabel for the view's remaining count.
func (v View) RemainingLabel() string {
	return RemainingLabel(v.Remaining)
}

// Tasks returns the tasks of the view's entries.
func (v View) Tasks() []Task {
	tasks := make([]Task, len(v.Entries))
	for i, e := range v.Entries {
		tasks[i] = e.Task
	}
	return tasks
}
