package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	uuid "github.com/nu7hatch/gouuid"
)

// ErrInvalidPriority is returned when a priority is not one of low, medium, high.
var ErrInvalidPriority = errors.New("invalid priority")

// Priority is one of PriorityLow, PriorityMedium, PriorityHigh. The empty priority is accepted wherever a priority
// is taken as input and means PriorityMedium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priorities, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts the three priority names, case-insensitive and ignoring surrounding space. The empty
// string parses as PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidPriority)
	}
}

// Next cycles low, medium, high, low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityHigh:
		return PriorityLow
	default:
		return PriorityHigh
	}
}

// UnmarshalJSON implements json.Unmarshaler. A missing or empty priority means medium, anything else must be a
// valid priority name.
func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ID identifies a task for as long as it exists, unlike its position in the collection which changes when an
// earlier task is deleted.
type ID string

// NewID returns a random (version 4) UUID.
func NewID() ID {
	u, err := uuid.NewV4()
	if err != nil {
		// Only fails if the system's random source does.
		panic(fmt.Sprintf("generating task id: %v", err))
	}
	return ID(u.String())
}

// Task is one entry of the task list. The JSON form is what gets persisted.
type Task struct {
	ID        ID       `json:"id,omitempty"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
}

// UnmarshalJSON implements json.Unmarshaler, defaulting the priority of records stored without one.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	decoded := plain{Priority: PriorityMedium}
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}
	*t = Task(decoded)
	return nil
}

func (t Task) String() string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s (%s)", mark, t.Text, t.Priority)
}
