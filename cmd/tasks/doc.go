// The tasks program keeps a prioritized list of tasks.
//
// Each subcommand loads the list, possibly changes it, and prints it under the filter given with -f (all, active
// or completed). Tasks are numbered by their position in the whole list, so the numbers printed under any filter
// can be given to toggle and rm.
//
//	tasks add [-p low|medium|high] text...
//	tasks toggle number...
//	tasks rm number...
//	tasks clear
//	tasks ls [--priority p] [--grep text] [--saved]
//	tasks export [--format json|yaml|csv|pdf] [-o file]
//	tasks tui
//	tasks acme
//
// The list lives in ~/lib/tasks unless the config file ($XDG_CONFIG_HOME/tasks/config.yaml) says otherwise. Keys
// are backend (file, sqlite or memory), dir, slot, log_level and log_path, and each can be overridden with a
// TASKS_ environment variable, e.g., TASKS_BACKEND=sqlite. Variables can also be set in tasks.env next to the
// config file.
//
// The acme subcommand opens a window named /tasks/<filter>. Middle-click All, Active or Completed to open the
// other views, "Add [priority] text" to add a task, "Done 3" to toggle task 3, "Zap 3" to delete it, and Clear
// to delete the completed tasks. Right-clicking a task number toggles the task. All windows are updated after
// every change. The program terminates when its last window is deleted.
package main // import "github.com/nicolagi/tasks/cmd/tasks"
