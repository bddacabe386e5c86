package tasks

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilter is returned by ParseFilter.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter selects which tasks a view shows. The zero value is FilterAll, which is also the filter a front-end
// starts with. Any filter may follow any other.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

// Filters lists all filters in the order front-ends present them.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

// ParseFilter is the inverse of Filter.String, case-insensitive.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed":
		return FilterCompleted, nil
	default:
		return FilterAll, fmt.Errorf("%q: %w", s, ErrInvalidFilter)
	}
}

// Next cycles all, active, completed, all.
func (f Filter) Next() Filter {
	return Filters[(int(f)+1)%len(Filters)]
}

func (f Filter) scan(tasks []Task) *TaskScan {
	s := Scan(tasks)
	switch f {
	case FilterActive:
		s.WithCompleted(false)
	case FilterCompleted:
		s.WithCompleted(true)
	}
	return s
}

// FilterTasks returns the tasks selected by f, in collection order. The input is not modified.
func FilterTasks(tasks []Task, f Filter) []Task {
	return f.scan(tasks).Results()
}

// RemainingCount is the number of tasks not yet completed.
func RemainingCount(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// RemainingLabel renders a remaining count, e.g., "1 task left", "0 tasks left".
func RemainingLabel(n int) string {
	if n == 1 {
		return "1 task left"
	}
	return fmt.Sprintf("%d tasks left", n)
}

// EmptyStateMessage is what to show in place of a view that selected no tasks.
func EmptyStateMessage(f Filter) string {
	switch f {
	case FilterActive:
		return "No active tasks!"
	case FilterCompleted:
		return "No completed tasks!"
	default:
		return "No tasks yet. Add one above!"
	}
}
