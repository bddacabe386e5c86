package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicolagi/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the program with the given arguments against storage, and returns what it printed.
func run(t *testing.T, storage tasks.Storage, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	a := &app{storage: storage}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--dir", dir,
	}, args...))
	err := cmd.Execute()
	a.close()
	return out.String(), err
}

func mustRun(t *testing.T, storage tasks.Storage, args ...string) string {
	t.Helper()
	out, err := run(t, storage, args...)
	require.Nil(t, err, out)
	return out
}

func TestCommandsEndToEnd(t *testing.T) {
	storage := tasks.NewMemoryStorage()

	out := mustRun(t, storage, "ls")
	assert.Equal(t, "No tasks yet. Add one above!\n0 tasks left\n", out)

	out = mustRun(t, storage, "add", "-p", "high", "Buy", "milk")
	assert.Equal(t, "1\t[ ]\thigh\tBuy milk\n1 task left\n", out)

	mustRun(t, storage, "add", "Call mom")
	mustRun(t, storage, "add", "--priority", "low", "Water plants")

	out = mustRun(t, storage, "toggle", "2")
	assert.Equal(t, strings.Join([]string{
		"1\t[ ]\thigh\tBuy milk",
		"2\t[x]\tmedium\tCall mom",
		"3\t[ ]\tlow\tWater plants",
		"2 tasks left",
		"",
	}, "\n"), out)

	// Numbers are positions in the whole list, also under a filter.
	out = mustRun(t, storage, "ls", "-f", "active")
	assert.Equal(t, "1\t[ ]\thigh\tBuy milk\n3\t[ ]\tlow\tWater plants\n2 tasks left\n", out)
	out = mustRun(t, storage, "ls", "--filter", "completed")
	assert.Equal(t, "2\t[x]\tmedium\tCall mom\n2 tasks left\n", out)

	out = mustRun(t, storage, "clear", "-f", "completed")
	assert.Equal(t, "No completed tasks!\n2 tasks left\n", out)

	out = mustRun(t, storage, "rm", "1", "2")
	assert.Equal(t, "No tasks yet. Add one above!\n0 tasks left\n", out)
}

func TestCommandsPersistAcrossRuns(t *testing.T) {
	storage := tasks.NewMemoryStorage()
	mustRun(t, storage, "--quiet", "add", "Buy milk")
	data, err := storage.Get(tasks.DefaultSlot)
	require.Nil(t, err)
	var stored []tasks.Task
	require.Nil(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "Buy milk", stored[0].Text)
	assert.Equal(t, tasks.PriorityMedium, stored[0].Priority)
	assert.False(t, stored[0].Completed)
}

func TestCommandsQuiet(t *testing.T) {
	storage := tasks.NewMemoryStorage()
	out := mustRun(t, storage, "-q", "add", "Buy milk")
	assert.Equal(t, "", out)
}

func TestCommandsErrors(t *testing.T) {
	storage := tasks.NewMemoryStorage()
	mustRun(t, storage, "add", "Buy milk")

	_, err := run(t, storage, "toggle", "2")
	assert.True(t, errors.Is(err, tasks.ErrIndexOutOfRange))
	_, err = run(t, storage, "rm", "1", "5")
	assert.True(t, errors.Is(err, tasks.ErrIndexOutOfRange))
	_, err = run(t, storage, "toggle", "zero")
	assert.NotNil(t, err)
	_, err = run(t, storage, "toggle", "0")
	assert.NotNil(t, err)
	_, err = run(t, storage, "add", "-p", "urgent", "Something")
	assert.True(t, errors.Is(err, tasks.ErrInvalidPriority))
	_, err = run(t, storage, "ls", "-f", "done")
	assert.True(t, errors.Is(err, tasks.ErrInvalidFilter))
	_, err = run(t, storage, "--backend", "postgres", "ls")
	assert.True(t, errors.Is(err, errBadConfig))

	// Failed commands left the list alone.
	out := mustRun(t, storage, "ls")
	assert.Equal(t, "1\t[ ]\tmedium\tBuy milk\n1 task left\n", out)
}

func TestRmRepeatedNumber(t *testing.T) {
	storage := tasks.NewMemoryStorage()
	mustRun(t, storage, "-q", "add", "Buy milk")
	mustRun(t, storage, "-q", "add", "Call mom")
	out := mustRun(t, storage, "rm", "1", "1")
	assert.Equal(t, "1\t[ ]\tmedium\tCall mom\n1 task left\n", out)
}

func TestCommandsBlankAddIsNoOp(t *testing.T) {
	storage := tasks.NewMemoryStorage()
	out := mustRun(t, storage, "add", "   ")
	assert.Equal(t, "No tasks yet. Add one above!\n0 tasks left\n", out)
}

func TestLsNarrowing(t *testing.T) {
	storage := tasks.NewMemoryStorage()
	mustRun(t, storage, "-q", "add", "-p", "high", "Buy milk")
	mustRun(t, storage, "-q", "add", "Buy bread")
	mustRun(t, storage, "-q", "add", "-p", "high", "Call mom")

	out := mustRun(t, storage, "ls", "--priority", "high")
	assert.Equal(t, "1\t[ ]\thigh\tBuy milk\n3\t[ ]\thigh\tCall mom\n3 tasks left\n", out)
	out = mustRun(t, storage, "ls", "--grep", "BUY")
	assert.Equal(t, "1\t[ ]\thigh\tBuy milk\n2\t[ ]\tmedium\tBuy bread\n3 tasks left\n", out)
	out = mustRun(t, storage, "ls", "--grep", "buy", "--priority", "medium")
	assert.Equal(t, "2\t[ ]\tmedium\tBuy bread\n3 tasks left\n", out)
}

func TestExportCommand(t *testing.T) {
	storage := tasks.NewMemoryStorage()
	mustRun(t, storage, "-q", "add", "Buy milk")
	mustRun(t, storage, "-q", "add", "Call mom")
	mustRun(t, storage, "-q", "toggle", "1")

	out := mustRun(t, storage, "export", "-f", "active", "--format", "csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,text,completed,priority", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",Call mom,false,medium"), lines[1])

	pathname := filepath.Join(t.TempDir(), "tasks.pdf")
	out = mustRun(t, storage, "export", "--format", "pdf", "-o", pathname)
	assert.Equal(t, "", out)
	data, err := os.ReadFile(pathname)
	require.Nil(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = run(t, storage, "export", "--format", "docx")
	assert.NotNil(t, err)
}

func TestFileBackend(t *testing.T) {
	dir := t.TempDir()
	runFile := func(args ...string) string {
		t.Helper()
		a := &app{}
		cmd := newRootCmd(a)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.yaml"), "--dir", dir}, args...))
		err := cmd.Execute()
		a.close()
		require.Nil(t, err)
		return out.String()
	}
	runFile("-q", "add", "Buy milk")
	assert.Equal(t, "1\t[ ]\tmedium\tBuy milk\n1 task left\n", runFile("ls"))
	assert.FileExists(t, filepath.Join(dir, "tasks.data"))
	assert.FileExists(t, filepath.Join(dir, "tasks.log"))
}

func TestSqliteBackend(t *testing.T) {
	dir := t.TempDir()
	runSqlite := func(args ...string) string {
		t.Helper()
		a := &app{}
		cmd := newRootCmd(a)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{
			"--config", filepath.Join(dir, "missing.yaml"),
			"--dir", dir,
			"--backend", "sqlite",
		}, args...))
		err := cmd.Execute()
		a.close()
		require.Nil(t, err)
		return out.String()
	}
	runSqlite("-q", "add", "-p", "low", "Buy milk")
	assert.Equal(t, "1\t[ ]\tlow\tBuy milk\n1 task left\n", runSqlite("ls"))
	assert.FileExists(t, filepath.Join(dir, "tasks.db"))

	out := runSqlite("ls", "--saved")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Saved "), lines[0])
	assert.Equal(t, "1\t[ ]\tlow\tBuy milk", lines[1])
}

func TestLsSavedWithoutTimestamps(t *testing.T) {
	out := mustRun(t, tasks.NewMemoryStorage(), "ls", "--saved")
	assert.Equal(t, "No tasks yet. Add one above!\n0 tasks left\n", out)
}

func TestDirFlagKeepsExplicitLogPath(t *testing.T) {
	configDir := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "custom.log")
	configPath := filepath.Join(configDir, "config.yaml")
	require.Nil(t, os.WriteFile(configPath, []byte("log_path: "+logPath+"\n"), 0600))

	dataDir := t.TempDir()
	a := &app{storage: tasks.NewMemoryStorage()}
	cmd := newRootCmd(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", configPath, "--dir", dataDir, "ls"})
	err := cmd.Execute()
	a.close()
	require.Nil(t, err)
	assert.Equal(t, dataDir, a.conf.Dir)
	assert.Equal(t, logPath, a.conf.LogPath)
	assert.FileExists(t, logPath)

	// Without an explicit log path, the log follows the directory.
	a = &app{storage: tasks.NewMemoryStorage()}
	cmd = newRootCmd(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(configDir, "missing.yaml"), "--dir", dataDir, "ls"})
	err = cmd.Execute()
	a.close()
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(dataDir, "tasks.log"), a.conf.LogPath)
}
