package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrIndexOutOfRange is returned by the index-based operations when the index does not refer to a task,
	// e.g., because it was taken from a view that is no longer current.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotFound is returned by the id-based operations when no task has the id.
	ErrNotFound = errors.New("task not found")

	// errMalformed marks persisted data that decodes but does not describe a valid task list.
	errMalformed = errors.New("malformed task list")
)

// DefaultSlot is the storage slot a store uses unless configured otherwise with WithSlot.
const DefaultSlot = "tasks"

type storeOption func(*Store)

// WithSlot is a store option to keep the task list in a slot other than DefaultSlot.
func WithSlot(slot string) storeOption {
	return func(s *Store) {
		s.slot = slot
	}
}

// WithObserver is a store option to register a change observer at construction, see Store.OnChange.
func WithObserver(fn func([]Task)) storeOption {
	return func(s *Store) {
		s.observers = append(s.observers, fn)
	}
}

// Store owns the task list and is the only writer of its persisted copy. Every mutating method rewrites the whole
// list to storage before returning, and only changes the in-memory list if that write succeeded, so what a caller
// can observe is always what is stored.
//
// Methods are safe to call from multiple goroutines; they are serialized.
type Store struct {
	mu        sync.Mutex
	storage   Storage
	slot      string
	tasks     []Task
	observers []func([]Task)
}

// NewStore creates an empty store persisting to the given storage. Call Load to pick up previously saved tasks.
func NewStore(storage Storage, opts ...storeOption) *Store {
	s := &Store{
		storage: storage,
		slot:    DefaultSlot,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one and returns it. A slot that is empty, corrupted or
// does not hold a valid task list loads as an empty list; only failing to read the storage is an error. Tasks
// saved without an id get one, and the list is saved back straight away.
func (s *Store) Load() ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logEntry := log.WithField("slot", s.slot)
	data, err := s.storage.Get(s.slot)
	switch {
	case errors.Is(err, ErrSlotEmpty):
		logEntry.Debug("Nothing stored, starting with an empty list")
		s.tasks = nil
		return nil, nil
	case errors.Is(err, ErrCorrupted):
		logEntry.WithField("cause", err).Warning("Ignoring corrupted task list")
		s.tasks = nil
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load: %w", err)
	}
	loaded, err := decodeTasks(data)
	if err != nil {
		logEntry.WithField("cause", err).Warning("Ignoring malformed task list")
		s.tasks = nil
		return nil, nil
	}
	if assignMissingIDs(loaded) {
		if err := s.write(loaded); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	}
	s.tasks = loaded
	return cloneTasks(loaded), nil
}

func decodeTasks(data []byte) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%v: %w", err, errMalformed)
	}
	for i, t := range tasks {
		if strings.TrimSpace(t.Text) == "" {
			return nil, fmt.Errorf("task %d has no text: %w", i, errMalformed)
		}
	}
	return tasks, nil
}

// assignMissingIDs gives a fresh id to tasks without one or sharing one with an earlier task, and reports
// whether it did anything.
func assignMissingIDs(tasks []Task) bool {
	seen := make(map[ID]bool, len(tasks))
	assigned := false
	for i := range tasks {
		if tasks[i].ID == "" || seen[tasks[i].ID] {
			tasks[i].ID = NewID()
			assigned = true
		}
		seen[tasks[i].ID] = true
	}
	return assigned
}

// Add appends a task that is not completed. The text is trimmed; if nothing is left, Add does nothing. The empty
// priority means PriorityMedium.
func (s *Store) Add(text string, priority Priority) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	priority, err := ParsePriority(string(priority))
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return s.mutate("add", func(tasks []Task) ([]Task, error) {
		return append(tasks, Task{
			ID:       NewID(),
			Text:     text,
			Priority: priority,
		}), nil
	})
}

// ToggleComplete flips the completed flag of the task at index.
func (s *Store) ToggleComplete(index int) error {
	return s.mutate("toggle", func(tasks []Task) ([]Task, error) {
		if err := checkIndex(tasks, index); err != nil {
			return nil, err
		}
		tasks[index].Completed = !tasks[index].Completed
		return tasks, nil
	})
}

// ToggleCompleteByID is like ToggleComplete but identifies the task by id.
func (s *Store) ToggleCompleteByID(id ID) error {
	return s.mutate("toggle", func(tasks []Task) ([]Task, error) {
		i, err := indexOf(tasks, id)
		if err != nil {
			return nil, err
		}
		tasks[i].Completed = !tasks[i].Completed
		return tasks, nil
	})
}

// Delete removes the task at index. Later tasks move down by one position.
func (s *Store) Delete(index int) error {
	return s.mutate("delete", func(tasks []Task) ([]Task, error) {
		if err := checkIndex(tasks, index); err != nil {
			return nil, err
		}
		return append(tasks[:index], tasks[index+1:]...), nil
	})
}

// DeleteByID is like Delete but identifies the task by id.
func (s *Store) DeleteByID(id ID) error {
	return s.mutate("delete", func(tasks []Task) ([]Task, error) {
		i, err := indexOf(tasks, id)
		if err != nil {
			return nil, err
		}
		return append(tasks[:i], tasks[i+1:]...), nil
	})
}

// ClearCompleted removes all completed tasks, keeping the others in order. The list is saved even if there was
// nothing to remove.
func (s *Store) ClearCompleted() error {
	return s.mutate("clear completed", func(tasks []Task) ([]Task, error) {
		return Scan(tasks).WithCompleted(false).Results(), nil
	})
}

// Persist saves the whole in-memory list. Mutating methods already do this; it is exported for callers that want
// to force a rewrite, e.g., to move a list to a new storage.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(s.tasks); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

// OnChange registers fn to be called with a copy of the task list after every successful mutation. Observers run
// synchronously, after the store has released its lock, so they may call back into the store.
func (s *Store) OnChange(fn func([]Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Tasks returns a copy of the task list.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// TaskByID looks up a task by id.
func (s *Store) TaskByID(id ID) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := indexOf(s.tasks, id)
	if err != nil {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Scan starts a scan over a copy of the current task list.
func (s *Store) Scan() *TaskScan {
	return Scan(s.Tasks())
}

// View projects the current task list under filter f.
func (s *Store) View(f Filter) View {
	return Project(s.Tasks(), f)
}

// mutate applies change to a copy of the list, saves the result and only then makes it current.
func (s *Store) mutate(op string, change func([]Task) ([]Task, error)) error {
	s.mu.Lock()
	next, err := change(cloneTasks(s.tasks))
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.write(next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.tasks = next
	observers := make([]func([]Task), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(cloneTasks(next))
	}
	return nil
}

// write must be called with s.mu held.
func (s *Store) write(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	if err := s.storage.Put(s.slot, data); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"slot":  s.slot,
		"count": len(tasks),
	}).Debug("Saved task list")
	return nil
}

func checkIndex(tasks []Task, index int) error {
	if index < 0 || index >= len(tasks) {
		return fmt.Errorf("%d not in [0, %d): %w", index, len(tasks), ErrIndexOutOfRange)
	}
	return nil
}

func indexOf(tasks []Task, id ID) (int, error) {
	for i := range tasks {
		if tasks[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s: %w", id, ErrNotFound)
}

func cloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	return append([]Task(nil), tasks...)
}
