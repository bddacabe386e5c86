package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"9fans.net/go/acme"
	"github.com/nicolagi/tasks"
	log "github.com/sirupsen/logrus"
)

const acmeTag = " All Active Completed Get Add Done Zap Clear "

var all struct {
	sync.Mutex
	m     map[*acme.Win]*window
	store *tasks.Store
	done  chan struct{}
}

// errWindowOpen is returned by runAcme when the window it would open already exists, e.g., in another process.
var errWindowOpen = errors.New("window already open")

// openFilterWindow reports whether it created a window; it does not when one with the same name is open.
var openFilterWindow func(tasks.Filter) (bool, error)

func init() {
	openFilterWindow = newFilterWindow
}

// window shows the task list under one filter, at /tasks/<filter>.
type window struct {
	*acme.Win
	filter tasks.Filter

	// Serializes reloads of the body.
	loading sync.Mutex
}

// runAcme opens a window for the given filter and returns once the last window owned by this process is deleted.
func runAcme(store *tasks.Store, filter tasks.Filter) error {
	all.Lock()
	all.m = make(map[*acme.Win]*window)
	all.store = store
	all.done = make(chan struct{})
	done := all.done
	all.Unlock()

	created, err := openFilterWindow(filter)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%s: %w", windowName(filter), errWindowOpen)
	}
	store.OnChange(func([]tasks.Task) {
		onTasksChanged()
	})
	<-done
	return nil
}

func windowName(f tasks.Filter) string {
	return "/tasks/" + f.String()
}

func newFilterWindow(f tasks.Filter) (bool, error) {
	title := windowName(f)
	if acme.Show(title) != nil {
		return false, nil
	}
	w, err := newWindow(title)
	if err != nil {
		return false, err
	}
	w.filter = f
	_ = w.Ctl("cleartag")
	_ = w.Fprintf("tag", acmeTag)
	go w.load()
	go w.loop()
	return true, nil
}

// newWindow creates a window in acme and registers it in the global map of windows.
func newWindow(pathname string) (*window, error) {
	all.Lock()
	defer all.Unlock()
	logEntry := log.WithField("path", pathname)
	aw, err := acme.New()
	if err != nil {
		logEntry.WithField("cause", err).Warning("Could not create acme window")
		time.Sleep(10 * time.Millisecond)
		aw, err = acme.New()
		if err != nil {
			return nil, fmt.Errorf("acme: %w", err)
		}
	}
	aw.SetErrorPrefix(pathname)
	_ = aw.Name(pathname)
	w := &window{Win: aw}
	all.m[w.Win] = w
	return w, nil
}

// exit is called after the window's event loop is over, i.e., the window has been closed in acme.
func (w *window) exit() {
	all.Lock()
	defer all.Unlock()
	if all.m[w.Win] == w {
		delete(all.m, w.Win)
	}
	if len(all.m) == 0 && all.done != nil {
		close(all.done)
		all.done = nil
	}
}

// loop handles events until the window is deleted. Looks are handled here rather than through acme.EventHandler,
// because telling a task number from any other number needs the position of the click.
func (w *window) loop() {
	defer w.exit()
	for e := range w.EventChan() {
		switch e.C2 {
		case 'x', 'X':
			cmd := strings.TrimSpace(string(e.Text))
			if arg := strings.TrimSpace(string(e.Arg)); arg != "" {
				cmd += " " + arg
			}
			if !w.Execute(cmd) {
				_ = w.WriteEvent(e)
			}
		case 'l', 'L':
			if !w.look(e) {
				_ = w.WriteEvent(e)
			}
		}
	}
}

func (w *window) load() {
	w.loading.Lock()
	defer w.loading.Unlock()
	var buf bytes.Buffer
	printView(&buf, all.store.View(w.filter))
	w.Clear()
	w.PrintTabbed(buf.String())
	_ = w.Ctl("clean")
	_ = w.Addr("0")
	_ = w.Ctl("dot=addr")
	_ = w.Ctl("show")
}

func onTasksChanged() {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		w.load()
	}
}

// look handles a button-3 click. Clicking on the number that starts a task line toggles the task.
func (w *window) look(e *acme.Event) bool {
	q0 := e.Q0
	if e.Flag&2 != 0 && e.OrigQ0 < q0 {
		q0 = e.OrigQ0
	}
	body, err := w.ReadAll("body")
	if err != nil {
		return false
	}
	i, ok := entryAt([]rune(string(body)), q0, strings.TrimSpace(string(e.Text)))
	if !ok {
		return false
	}
	if err := all.store.ToggleComplete(i); err != nil {
		w.Errf("%v", err)
	}
	return true
}

// entryAt returns the index of the task whose line, as printed by printView, starts at rune offset q0 of body
// with the number text.
func entryAt(body []rune, q0 int, text string) (int, bool) {
	if q0 < 0 || q0 > len(body) || (q0 > 0 && body[q0-1] != '\n') {
		return 0, false
	}
	line := body[q0:]
	n := len([]rune(text))
	if len(line) <= n || string(line[:n]) != text || line[n] != '\t' {
		return 0, false
	}
	i, err := parseTaskNumber(text)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Execute is triggered by button-2 click in acme.
func (w *window) Execute(cmd string) bool {
	switch cmd {
	case "All", "Active", "Completed":
		f, _ := tasks.ParseFilter(cmd)
		if _, err := openFilterWindow(f); err != nil {
			w.Errf("%v", err)
		}
		return true
	case "Get":
		w.load()
		return true
	}
	handled, err := execTaskCommand(all.store, cmd)
	if err != nil {
		w.Errf("%v", err)
	}
	return handled
}

// execTaskCommand runs the task list commands that can be typed in a window tag or body:
//
//	Add [low|medium|high] text
//	Done number...
//	Zap number...
//	Clear
//
// It reports false for anything else, so acme can handle it.
func execTaskCommand(store *tasks.Store, cmd string) (bool, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]
	switch fields[0] {
	case "Add":
		priority := tasks.PriorityMedium
		if len(args) > 1 {
			if p, err := tasks.ParsePriority(args[0]); err == nil {
				priority = p
				args = args[1:]
			}
		}
		if len(args) == 0 {
			return true, fmt.Errorf("usage: Add [low|medium|high] text")
		}
		return true, store.Add(strings.Join(args, " "), priority)
	case "Done", "Zap":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: %s number...", fields[0])
		}
		ids, err := resolveTaskNumbers(store.Tasks(), args)
		if err != nil {
			return true, err
		}
		for _, id := range ids {
			var err error
			if fields[0] == "Done" {
				err = store.ToggleCompleteByID(id)
			} else {
				err = store.DeleteByID(id)
			}
			if err != nil {
				return true, err
			}
		}
		return true, nil
	case "Clear":
		return true, store.ClearCompleted()
	default:
		return false, nil
	}
}
