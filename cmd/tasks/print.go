package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nicolagi/tasks"
)

// printView writes one line per entry, numbered by position in the full list so that numbers shown under any
// filter can be passed to toggle and rm, then the remaining-tasks line.
func printView(w io.Writer, v tasks.View) {
	if v.Empty() {
		_, _ = fmt.Fprintln(w, v.EmptyMessage())
	}
	for _, e := range v.Entries {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Index+1, checkbox(e.Completed), e.Priority, e.Text)
	}
	_, _ = fmt.Fprintln(w, v.RemainingLabel())
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// narrow keeps the entries of v whose tasks match the given priority (if not empty) and contain the given text
// (if not empty).
func narrow(v tasks.View, priority tasks.Priority, text string) tasks.View {
	if priority == "" && text == "" {
		return v
	}
	s := tasks.Scan(v.Tasks())
	if priority != "" {
		s.WithPriority(priority)
	}
	if text != "" {
		s.WithText(text)
	}
	narrowed := v
	narrowed.Entries = nil
	for _, i := range s.Indexes() {
		narrowed.Entries = append(narrowed.Entries, v.Entries[i])
	}
	return narrowed
}

// parseTaskNumber converts a 1-based task number, as printed by printView, to a store index.
func parseTaskNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid task number: %q", arg)
	}
	return n - 1, nil
}

// resolveTaskNumbers maps task numbers to the ids of the tasks in list they refer to, each id once. Resolving all
// numbers first keeps them meaningful while the tasks they name are deleted one by one.
func resolveTaskNumbers(list []tasks.Task, args []string) ([]tasks.ID, error) {
	var ids []tasks.ID
	seen := make(map[int]bool, len(args))
	for _, arg := range args {
		i, err := parseTaskNumber(arg)
		if err != nil {
			return nil, err
		}
		if i >= len(list) {
			return nil, fmt.Errorf("task %s: %w", arg, tasks.ErrIndexOutOfRange)
		}
		if !seen[i] {
			seen[i] = true
			ids = append(ids, list[i].ID)
		}
	}
	return ids, nil
}

// savedTimer is implemented by storage backends that record when a slot was last written.
type savedTimer interface {
	UpdatedAt(slot string) (time.Time, error)
}

// printSaved prints when slot was last saved, or nothing if storage does not know or the slot was never saved.
func printSaved(w io.Writer, storage tasks.Storage, slot string) error {
	st, ok := storage.(savedTimer)
	if !ok {
		return nil
	}
	t, err := st.UpdatedAt(slot)
	if errors.Is(err, tasks.ErrSlotEmpty) {
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Saved %s\n", t.Format("2006-01-02 15:04:05"))
	return nil
}
