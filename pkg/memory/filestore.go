package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/aletheia-ai/retrace/pkg/errors"
)

// FileStore persists the snapshot as a single JSON document. Writes go to a
// temp file and rename into place, so a load never observes a partial write.
// A mutex covers in-process callers; a flock sidecar covers other processes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot from disk. A missing file yields an empty
// snapshot; an unreadable or schema-incompatible document is an error.
func (f *FileStore) Load() (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lockFile, err := f.acquireFileLock(lockShared)
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to lock state file")
	}
	defer f.releaseFileLock(lockFile)

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to read state file"),
			errors.Fields{"path": f.path})
	}

	snapshot := NewSnapshot()
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.SchemaIncompatible, "state file is not a valid snapshot document"),
			errors.Fields{"path": f.path})
	}

	// Documents written before versioning carry 0; anything newer than the
	// current schema is rejected rather than silently discarded.
	if snapshot.Version > snapshotVersion {
		return nil, errors.WithFields(
			errors.New(errors.SchemaIncompatible, "state file was written by a newer version"),
			errors.Fields{"path": f.path, "version": snapshot.Version})
	}
	snapshot.Version = snapshotVersion

	if snapshot.Patterns == nil {
		snapshot.Patterns = make(map[string]int)
	}

	return snapshot, nil
}

// Save writes the snapshot atomically.
func (f *FileStore) Save(snapshot *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	lockFile, err := f.acquireFileLock(lockExclusive)
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to lock state file")
	}
	defer f.releaseFileLock(lockFile)

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to create state directory")
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to encode snapshot")
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to write snapshot"),
			errors.Fields{"path": tmpPath})
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to replace state file"),
			errors.Fields{"path": f.path})
	}

	return nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
