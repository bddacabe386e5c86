package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nicolagi/tasks"
	"github.com/nicolagi/tasks/sqlite"
	log "github.com/sirupsen/logrus"
)

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "tasks:", err)
		os.Exit(1)
	}
}

// app is what every subcommand runs against: the loaded configuration and a store with the task list loaded.
type app struct {
	conf  Config
	store *tasks.Store

	// If non-nil, used instead of opening the configured backend.
	storage tasks.Storage

	closers []io.Closer
}

// open configures logging, opens the storage and loads the task list.
func (a *app) open() error {
	logFile, err := configureLogging(a.conf)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, logFile)
	log.WithField("config", fmt.Sprintf("%+v", a.conf)).Debug("Loaded config")

	if a.storage == nil {
		a.storage, err = a.openStorage()
		if err != nil {
			return err
		}
	}
	a.store = tasks.NewStore(a.storage, tasks.WithSlot(a.conf.Slot))
	if _, err := a.store.Load(); err != nil {
		return err
	}
	return nil
}

func (a *app) openStorage() (tasks.Storage, error) {
	switch a.conf.Backend {
	case backendSqlite:
		s, err := sqlite.Open(filepath.Join(a.conf.Dir, appName+".db"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case backendMemory:
		return tasks.NewMemoryStorage(), nil
	default:
		return tasks.NewFileStorage(a.conf.Dir), nil
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.WithField("cause", err).Warning("Could not close")
		}
	}
	a.closers = nil
	log.SetOutput(os.Stderr)
}

// configureLogging sends logrus output to the configured log file, so that it does not interfere with the
// terminal and acme interfaces.
func configureLogging(conf Config) (io.Closer, error) {
	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(conf.LogPath), 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(conf.LogPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	log.SetOutput(f)
	return f, nil
}
