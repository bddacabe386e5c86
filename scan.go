package tasks

import "strings"

type taskPredicate func(*Task) bool

func negate(p taskPredicate) taskPredicate {
	return func(task *Task) bool {
		return !p(task)
	}
}

// TaskScan selects tasks matching all of its predicates. Unlike a map-backed search, results come back in
// collection order.
type TaskScan struct {
	tasks      []Task
	predicates []taskPredicate
}

// Scan starts a scan over the given tasks. With no predicates added, Results returns all of them.
func Scan(tasks []Task) *TaskScan {
	return &TaskScan{tasks: tasks}
}

// Not negates the last predicate added.  It will panic if no predicates were added.
func (s *TaskScan) Not() *TaskScan {
	i := len(s.predicates) - 1
	s.predicates[i] = negate(s.predicates[i])
	return s
}

func (s *TaskScan) WithCompleted(value bool) *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		return task.Completed == value
	})
	return s
}

// WithPriority looks for tasks having any of the given priorities, that is, arguments are ORed together.
func (s *TaskScan) WithPriority(value ...Priority) *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		for _, p := range value {
			if task.Priority == p {
				return true
			}
		}
		return false
	})
	return s
}

// WithText looks for tasks containing the given substring, case-insensitive.
func (s *TaskScan) WithText(needle string) *TaskScan {
	needle = strings.ToLower(needle)
	s.predicates = append(s.predicates, func(task *Task) bool {
		return strings.Contains(strings.ToLower(task.Text), needle)
	})
	return s
}

// Results returns copies of the matching tasks, in order.
func (s *TaskScan) Results() []Task {
	results := make([]Task, 0, len(s.tasks))
	for i := range s.tasks {
		if s.match(&s.tasks[i]) {
			results = append(results, s.tasks[i])
		}
	}
	return results
}

// Indexes is like Results but returns the positions of the matching tasks.
func (s *TaskScan) Indexes() []int {
	var indexes []int
	for i := range s.tasks {
		if s.match(&s.tasks[i]) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func (s *TaskScan) match(task *Task) bool {
	for _, match := range s.predicates {
		if !match(task) {
			return false
		}
	}
	return true
}
