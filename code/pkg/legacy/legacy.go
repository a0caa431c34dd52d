// legacy provides access to the older flat key-value store that the club
// used before the SQL store.  It holds a small number of keys ("socios",
// "amigos" and "eventos"), each containing a JSON array as a string.  The
// data is read once, when it's migrated, and the keys are then deleted.
package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// The keys used by the old system.
const (
	KeyMembers = "socios"
	KeyFriends = "amigos"
	KeyEvents  = "eventos"
)

// Keys is the list of all keys that the old system used.
var Keys = []string{KeyMembers, KeyFriends, KeyEvents}

// Store is a flat key-value store.
type Store interface {
	// Get returns the value and true if the key is present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes the key.  Deleting a missing key is not an error.
	Delete(key string) error
}

// MemoryStore holds the keys in memory.
type MemoryStore struct {
	mutex  sync.Mutex
	values map[string]string
}

// NewMemoryStore creates a MemoryStore containing the given values, which
// may be nil.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := MemoryStore{values: make(map[string]string)}
	for k, v := range values {
		m.values[k] = v
	}
	return &m
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.values, key)
	return nil
}

// FileStore keeps the keys as a JSON object in a file.  Every change
// rewrites the whole file.  The new contents are written to a temporary
// file in the same directory which is then renamed, so a crash leaves
// either the old or the new contents.
type FileStore struct {
	mutex sync.Mutex
	path  string
}

// NewFileStore creates a FileStore using the given file.  The file is
// created when a key is first set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the name of the file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}

	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}

	values[key] = value

	return f.save(values)
}

func (f *FileStore) Delete(key string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := values[key]; !ok {
		return nil
	}

	delete(values, key)

	return f.save(values)
}

// load reads the file.  A missing or empty file is an empty store.
func (f *FileStore) load() (map[string]string, error) {

	values := make(map[string]string)

	contents, readError := os.ReadFile(f.path)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return values, nil
		}
		return nil, readError
	}

	if len(contents) == 0 {
		return values, nil
	}

	jsonError := json.Unmarshal(contents, &values)
	if jsonError != nil {
		return nil, fmt.Errorf("legacy store %s: %w", f.path, jsonError)
	}

	return values, nil
}

func (f *FileStore) save(values map[string]string) error {

	contents, jsonError := json.MarshalIndent(values, "", "    ")
	if jsonError != nil {
		return jsonError
	}

	temp, createError := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if createError != nil {
		return createError
	}
	tempName := temp.Name()

	_, writeError := temp.Write(contents)
	if writeError == nil {
		writeError = temp.Sync()
	}
	closeError := temp.Close()
	if writeError == nil {
		writeError = closeError
	}
	if writeError != nil {
		os.Remove(tempName)
		return writeError
	}

	renameError := os.Rename(tempName, f.path)
	if renameError != nil {
		os.Remove(tempName)
		return renameError
	}

	return nil
}
