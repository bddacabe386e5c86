package tasks_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicolagi/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	fs := tasks.NewFileStorage(dir)

	_, err := fs.Get("tasks")
	assert.True(t, errors.Is(err, tasks.ErrSlotEmpty))

	require.Nil(t, fs.Put("tasks", []byte(`[]`)))
	require.Nil(t, fs.Put("tasks", []byte(`[{"text":"a"}]`)))
	b, err := fs.Get("tasks")
	require.Nil(t, err)
	assert.Equal(t, `[{"text":"a"}]`, string(b))

	fi, err := os.Stat(filepath.Join(dir, "tasks.data"))
	require.Nil(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	// No temporary files left behind.
	entries, err := os.ReadDir(dir)
	require.Nil(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"tasks.data"}, names)
}

func TestFileStorageCorruption(t *testing.T) {
	dir := t.TempDir()
	pathname := filepath.Join(dir, "tasks.data")
	fs := tasks.NewFileStorage(dir)
	require.Nil(t, fs.Put("tasks", []byte(`[{"text":"a","completed":false,"priority":"low"}]`)))

	b, err := os.ReadFile(pathname)
	require.Nil(t, err)
	b[len(b)-3] = 'x'
	require.Nil(t, os.WriteFile(pathname, b, 0600))
	_, err = fs.Get("tasks")
	assert.True(t, errors.Is(err, tasks.ErrCorrupted))

	require.Nil(t, os.WriteFile(pathname, b[:10], 0600))
	_, err = fs.Get("tasks")
	assert.True(t, errors.Is(err, tasks.ErrCorrupted))

	// A store reading a corrupted slot starts empty, and its next write repairs the slot.
	s := tasks.NewStore(fs)
	loaded, err := s.Load()
	require.Nil(t, err)
	assert.Empty(t, loaded)
	require.Nil(t, s.Add("fresh", ""))
	loaded, err = tasks.NewStore(fs).Load()
	require.Nil(t, err)
	assert.Equal(t, []string{"fresh"}, texts(loaded))
}

func TestFileStorageInterruptedPut(t *testing.T) {
	dir := t.TempDir()
	fs := tasks.NewFileStorage(dir)
	s := tasks.NewStore(fs)
	for _, text := range []string{"a", "b", "c"} {
		require.Nil(t, s.Add(text, ""))
	}

	// A Put that died before its rename leaves a temporary file holding part of the new content.
	require.Nil(t, os.WriteFile(filepath.Join(dir, "tasks.data.123456"), []byte(`[{"text":"a"},{"te`), 0600))

	s = tasks.NewStore(fs)
	loaded, err := s.Load()
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts(loaded))
	require.Nil(t, s.Add("d", ""))
	loaded, err = tasks.NewStore(fs).Load()
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, texts(loaded))
}

func TestFileStorageStoreRoundTrip(t *testing.T) {
	fs := tasks.NewFileStorage(t.TempDir())
	s := tasks.NewStore(fs)
	require.Nil(t, s.Add("Buy milk", tasks.PriorityHigh))
	require.Nil(t, s.Add("Call mom", tasks.PriorityLow))
	require.Nil(t, s.ToggleComplete(0))

	loaded, err := tasks.NewStore(fs).Load()
	require.Nil(t, err)
	assert.Equal(t, s.Tasks(), loaded)
}

func TestMemoryStorageCopies(t *testing.T) {
	ms := tasks.NewMemoryStorage()
	data := []byte("abc")
	require.Nil(t, ms.Put("s", data))
	data[0] = 'x'
	got, err := ms.Get("s")
	require.Nil(t, err)
	assert.Equal(t, "abc", string(got))
	got[1] = 'x'
	again, err := ms.Get("s")
	require.Nil(t, err)
	assert.Equal(t, "abc", string(again))

	_, err = ms.Get("other")
	assert.True(t, errors.Is(err, tasks.ErrSlotEmpty))
}
