// Package keymap owns the mapping from a pressed key to the switch it is
// wired to, persisted as a single JSON object {key: switchId}.
package keymap

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/marcus/keytester/internal/config"
	"github.com/marcus/keytester/internal/jsonstore"
	"github.com/marcus/keytester/internal/models"
)

var (
	ErrInvalidKey    = errors.New("invalid key")
	ErrEmptySwitchID = errors.New("switch id is required")
)

// Repository is the single writable copy of the key map for the process.
// Every mutation is persisted before it becomes visible in memory.
type Repository struct {
	mu       sync.RWMutex
	path     string
	bindings map[string]models.SwitchID
}

// Open loads the key map at path. A missing file yields an empty map.
func Open(path string) (*Repository, error) {
	bindings, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Repository{path: path, bindings: bindings}, nil
}

// LoadFile parses the key map document at path.
// Keys are lowercased; a key outside the valid alphabet makes the document corrupt.
// Entries with an empty switch id are treated as unbound and dropped.
func LoadFile(path string) (map[string]models.SwitchID, error) {
	raw := map[string]models.SwitchID{}
	if _, err := jsonstore.Load(path, &raw); err != nil {
		return nil, err
	}

	bindings := make(map[string]models.SwitchID, len(raw))
	for k, id := range raw {
		if !models.IsValidKey(k) {
			return nil, fmt.Errorf("%s: %w: key %q is not bindable", path, jsonstore.ErrCorruptData, k)
		}
		if id == "" {
			continue
		}
		key := models.NormalizeKey(k)
		if _, dup := bindings[key]; dup {
			return nil, fmt.Errorf("%s: %w: key %q bound twice", path, jsonstore.ErrCorruptData, key)
		}
		bindings[key] = id
	}
	return bindings, nil
}

// Path returns the document location.
func (r *Repository) Path() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.path
}

// Load re-reads the document from disk, replacing the in-memory map.
// On error the current map is kept.
func (r *Repository) Load() (map[string]models.SwitchID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bindings, err := LoadFile(r.path)
	if err != nil {
		return nil, err
	}
	r.bindings = bindings
	return maps.Clone(bindings), nil
}

// SwitchID returns the switch bound to key, if any.
func (r *Repository) SwitchID(key string) (models.SwitchID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bindings[models.NormalizeKey(key)]
	return id, ok
}

// Set binds key to id, replacing any previous binding, and persists.
func (r *Repository) Set(key string, id models.SwitchID) error {
	if !models.IsValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if id == "" {
		return ErrEmptySwitchID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.bindings)
	next[models.NormalizeKey(key)] = id
	return r.commit(next)
}

// SetAll applies every binding in order with a single write.
// Nothing changes if any binding is invalid.
func (r *Repository) SetAll(bindings []models.Binding) error {
	for _, b := range bindings {
		if !models.IsValidKey(b.Key) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, b.Key)
		}
		if b.SwitchID == "" {
			return fmt.Errorf("%w: key %q", ErrEmptySwitchID, b.Key)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.bindings)
	for _, b := range bindings {
		next[models.NormalizeKey(b.Key)] = b.SwitchID
	}
	return r.commit(next)
}

// Delete removes the binding for key and persists. Unbound keys are a no-op.
func (r *Repository) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key = models.NormalizeKey(key)
	if _, ok := r.bindings[key]; !ok {
		return nil
	}
	next := maps.Clone(r.bindings)
	delete(next, key)
	return r.commit(next)
}

// Save writes the full map to disk.
func (r *Repository) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return jsonstore.Save(r.path, r.bindings)
}

// commit persists next and swaps it in. Caller holds the write lock.
func (r *Repository) commit(next map[string]models.SwitchID) error {
	if err := jsonstore.Save(r.path, next); err != nil {
		return err
	}
	r.bindings = next
	return nil
}

// Bindings returns every binding in keyboard order.
func (r *Repository) Bindings() []models.Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Binding, 0, len(r.bindings))
	for k, id := range r.bindings {
		out = append(out, models.Binding{Key: k, SwitchID: id})
	}
	models.SortBindings(out)
	return out
}

// KeysFor returns the keys bound to id in keyboard order.
func (r *Repository) KeysFor(id models.SwitchID) []string {
	var keys []string
	for _, b := range r.Bindings() {
		if b.SwitchID == id {
			keys = append(keys, b.Key)
		}
	}
	return keys
}

// PrepareReload parses the key map under the new base directory.
// The returned commit switches the repository over; nothing changes until then.
func (r *Repository) PrepareReload(paths config.Paths) (func(), error) {
	bindings, err := LoadFile(paths.KeyMap)
	if err != nil {
		return nil, err
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.path = paths.KeyMap
		r.bindings = bindings
	}, nil
}
