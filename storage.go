package tasks

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrSlotEmpty is returned by Storage.Get when nothing was ever put in the slot.
	ErrSlotEmpty = errors.New("slot is empty")

	// ErrCorrupted can be returned by Storage.Get when the stored bytes fail an integrity check.
	ErrCorrupted = errors.New("stored data is corrupted")
)

// Storage holds byte blobs under names (slots). Put replaces the whole content of a slot; implementations must
// not leave a partially written slot behind when Put fails.
type Storage interface {
	Get(slot string) ([]byte, error)
	Put(slot string, data []byte) error
}

// FileStorage keeps each slot in a file named <slot>.data in a directory. The file starts with the SHA-256 checksum
// of the content that follows, checked on Get.
type FileStorage struct {
	dir string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage returns a storage rooted at dir. The directory is created on the first Put.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

func (fs *FileStorage) dataPath(slot string) string {
	return filepath.Join(fs.dir, slot+".data")
}

// Get implements Storage.
func (fs *FileStorage) Get(slot string) ([]byte, error) {
	b, err := os.ReadFile(fs.dataPath(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", slot, ErrSlotEmpty)
	}
	if err != nil {
		return nil, err
	}
	if len(b) < sha256.Size {
		return nil, fmt.Errorf("%s: truncated: %w", slot, ErrCorrupted)
	}
	savedSum, data := b[:sha256.Size], b[sha256.Size:]
	sum := sha256.Sum256(data)
	if !bytes.Equal(savedSum, sum[:]) {
		return nil, fmt.Errorf("%s: checksum mismatch: %w", slot, ErrCorrupted)
	}
	return data, nil
}

// Put implements Storage. Checksum and content are written together to a temporary file which is then renamed
// over the slot file, so an interrupted Put leaves the previous content in place.
func (fs *FileStorage) Put(slot string, data []byte) error {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return err
	}
	sum := sha256.Sum256(data)
	b := make([]byte, 0, len(sum)+len(data))
	b = append(b, sum[:]...)
	b = append(b, data...)
	return writeFileAtomic(fs.dataPath(slot), b)
}

func writeFileAtomic(pathname string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(pathname), filepath.Base(pathname)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, pathname); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// MemoryStorage keeps slots in memory. Useful for tests and for sessions that should leave nothing behind.
type MemoryStorage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{slots: make(map[string][]byte)}
}

// Get implements Storage. The returned slice is a copy.
func (ms *MemoryStorage) Get(slot string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	data, ok := ms.slots[slot]
	if !ok {
		return nil, fmt.Errorf("%s: %w", slot, ErrSlotEmpty)
	}
	return append([]byte(nil), data...), nil
}

// Put implements Storage.
func (ms *MemoryStorage) Put(slot string, data []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.slots[slot] = append([]byte(nil), data...)
	return nil
}
