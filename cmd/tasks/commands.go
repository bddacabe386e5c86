package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicolagi/tasks"
	"github.com/nicolagi/tasks/export"
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Subcommands run against a, which the persistent pre-run fills in; the
// caller closes a after execution.
func newRootCmd(a *app) *cobra.Command {
	var (
		configPath string
		backend    string
		dir        string
		logLevel   string
		filterName string
		quiet      bool
		filter     tasks.Filter
	)

	root := &cobra.Command{
		Use:           appName,
		Short:         "Keep a list of tasks",
		Long:          "Tasks keeps a prioritized list of tasks and shows it filtered by completion state.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("backend") {
				conf.Backend = backend
			}
			if flags.Changed("dir") {
				// A log path derived from the old directory follows the new one; an explicit one stays.
				if conf.LogPath == filepath.Join(conf.Dir, appName+".log") {
					conf.LogPath = ""
				}
				conf.Dir = dir
			}
			if flags.Changed("log-level") {
				conf.LogLevel = logLevel
			}
			if a.conf, err = conf.normalize(); err != nil {
				return err
			}
			if filter, err = tasks.ParseFilter(filterName); err != nil {
				return err
			}
			return a.open()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", DefaultConfigPath(), "config file")
	pf.StringVar(&backend, "backend", backendFile, "storage backend: file, sqlite or memory")
	pf.StringVar(&dir, "dir", "", "directory holding the task list")
	pf.StringVar(&logLevel, "log-level", "warning", "log level")
	pf.StringVarP(&filterName, "filter", "f", tasks.FilterAll.String(), "show all, active or completed tasks")
	pf.BoolVarP(&quiet, "quiet", "q", false, "do not print the list after changing it")

	// show prints the current view after a mutation.
	show := func(w io.Writer) {
		if !quiet {
			printView(w, a.store.View(filter))
		}
	}

	var priorityName string
	addCmd := &cobra.Command{
		Use:   "add text...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := tasks.ParsePriority(priorityName)
			if err != nil {
				return err
			}
			if err := a.store.Add(strings.Join(args, " "), priority); err != nil {
				return err
			}
			show(cmd.OutOrStdout())
			return nil
		},
	}
	addCmd.Flags().StringVarP(&priorityName, "priority", "p", string(tasks.PriorityMedium), "low, medium or high")

	toggleCmd := &cobra.Command{
		Use:   "toggle number...",
		Short: "Mark tasks completed, or not completed if they were",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				i, err := parseTaskNumber(arg)
				if err != nil {
					return err
				}
				if err := a.store.ToggleComplete(i); err != nil {
					return err
				}
			}
			show(cmd.OutOrStdout())
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm number...",
		Aliases: []string{"delete"},
		Short:   "Delete tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := resolveTaskNumbers(a.store.Tasks(), args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := a.store.DeleteByID(id); err != nil {
					return err
				}
			}
			show(cmd.OutOrStdout())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.ClearCompleted(); err != nil {
				return err
			}
			show(cmd.OutOrStdout())
			return nil
		},
	}

	var (
		lsPriority string
		lsGrep     string
		lsSaved    bool
	)
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var priority tasks.Priority
			if lsPriority != "" {
				var err error
				if priority, err = tasks.ParsePriority(lsPriority); err != nil {
					return err
				}
			}
			if lsSaved {
				if err := printSaved(cmd.OutOrStdout(), a.storage, a.conf.Slot); err != nil {
					return err
				}
			}
			printView(cmd.OutOrStdout(), narrow(a.store.View(filter), priority, lsGrep))
			return nil
		},
	}
	lsCmd.Flags().StringVar(&lsPriority, "priority", "", "only list tasks with this priority")
	lsCmd.Flags().StringVar(&lsGrep, "grep", "", "only list tasks containing this text (case-insensitive)")
	lsCmd.Flags().BoolVar(&lsSaved, "saved", false, "first print when the list was last saved, if the backend records it")

	var (
		formatName string
		outPath    string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered tasks as JSON, YAML, CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			title := fmt.Sprintf("Tasks (%s)", filter)
			if err := export.Write(w, a.store.View(filter).Tasks(), format, title); err != nil {
				return err
			}
			if f, ok := w.(*os.File); ok && outPath != "" {
				return f.Sync()
			}
			return nil
		},
	}
	exportCmd.Flags().StringVar(&formatName, "format", string(export.JSON), "json, yaml, csv or pdf")
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "", "write to this file instead of standard output")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit tasks interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(a.store, filter)
		},
	}

	acmeCmd := &cobra.Command{
		Use:   "acme",
		Short: "Edit tasks in acme windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAcme(a.store, filter)
		},
	}

	root.AddCommand(addCmd, toggleCmd, rmCmd, clearCmd, lsCmd, exportCmd, tuiCmd, acmeCmd)
	return root
}
