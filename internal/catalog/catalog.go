// Package catalog owns the switch catalog: switch id → attribute record,
// persisted as one JSON object, plus the managed copies of product images.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/marcus/keytester/internal/config"
	"github.com/marcus/keytester/internal/jsonstore"
	"github.com/marcus/keytester/internal/models"
)

var (
	ErrDuplicateID       = errors.New("switch already exists")
	ErrNotFound          = errors.New("switch not found")
	ErrEmptyID           = errors.New("switch id is required")
	ErrInvalidSwitchType = errors.New("invalid switch type")
)

// ImageDirer reports the current managed image directory.
type ImageDirer interface {
	ImageDir() string
}

// Repository is the single writable copy of the catalog for the process.
type Repository struct {
	mu      sync.RWMutex
	path    string
	images  ImageDirer
	records map[models.SwitchID]models.SwitchRecord
}

// Open loads the catalog at path. A missing file yields an empty catalog.
func Open(path string, images ImageDirer) (*Repository, error) {
	records, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Repository{path: path, images: images, records: records}, nil
}

// LoadFile parses the catalog document at path.
// Switch types are canonicalized; an unknown type makes the document corrupt.
func LoadFile(path string) (map[models.SwitchID]models.SwitchRecord, error) {
	records := map[models.SwitchID]models.SwitchRecord{}
	if _, err := jsonstore.Load(path, &records); err != nil {
		return nil, err
	}
	for id, rec := range records {
		if id == "" {
			return nil, fmt.Errorf("%s: %w: empty switch id", path, jsonstore.ErrCorruptData)
		}
		st, ok := models.ParseSwitchType(string(rec.SwitchType))
		if !ok {
			return nil, fmt.Errorf("%s: %w: switch %q has unknown type %q", path, jsonstore.ErrCorruptData, id, rec.SwitchType)
		}
		rec.SwitchType = st
		records[id] = rec
	}
	return records, nil
}

// Path returns the document location.
func (r *Repository) Path() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.path
}

// Load re-reads the document from disk, replacing the in-memory catalog.
// On error the current catalog is kept.
func (r *Repository) Load() (map[models.SwitchID]models.SwitchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := LoadFile(r.path)
	if err != nil {
		return nil, err
	}
	r.records = records
	return maps.Clone(records), nil
}

// Record returns the record stored under id.
func (r *Repository) Record(id models.SwitchID) (models.SwitchRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	return rec, ok
}

// Records returns a copy of the whole catalog.
func (r *Repository) Records() map[models.SwitchID]models.SwitchRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.records)
}

// IDs returns every switch id, sorted.
func (r *Repository) IDs() []models.SwitchID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]models.SwitchID, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of switches in the catalog.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Create adds a new switch. An existing id is never overwritten.
func (r *Repository) Create(id models.SwitchID, rec models.SwitchRecord) error {
	if id == "" {
		return ErrEmptyID
	}
	rec, err := normalize(rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	next := maps.Clone(r.records)
	next[id] = rec
	return r.commit(next)
}

// Update replaces the record stored under id. Use Create for new switches.
func (r *Repository) Update(id models.SwitchID, rec models.SwitchRecord) error {
	rec, err := normalize(rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := maps.Clone(r.records)
	next[id] = rec
	return r.commit(next)
}

// Delete removes a switch. Absent ids are a no-op.
// Key bindings that reference id are left in place.
func (r *Repository) Delete(id models.SwitchID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return nil
	}
	next := maps.Clone(r.records)
	delete(next, id)
	return r.commit(next)
}

// Save writes the full catalog to disk.
func (r *Repository) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return jsonstore.Save(r.path, r.records)
}

// ApplyImage imports src (if given) and stores rec under id with the
// imported file name. The record is untouched if the import fails.
func (r *Repository) ApplyImage(id models.SwitchID, rec models.SwitchRecord, src string) (models.SwitchRecord, error) {
	name, ok, err := r.ImportImage(src)
	if err != nil {
		return models.SwitchRecord{}, err
	}
	if ok {
		rec.Image = name
	}
	if err := r.Update(id, rec); err != nil {
		return models.SwitchRecord{}, err
	}
	return rec, nil
}

// PrepareReload parses the catalog under the new base directory.
// The returned commit switches the repository over.
func (r *Repository) PrepareReload(paths config.Paths) (func(), error) {
	records, err := LoadFile(paths.Catalog)
	if err != nil {
		return nil, err
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.path = paths.Catalog
		r.records = records
	}, nil
}

// commit persists next and swaps it in. Caller holds the write lock.
func (r *Repository) commit(next map[models.SwitchID]models.SwitchRecord) error {
	if err := jsonstore.Save(r.path, next); err != nil {
		return err
	}
	r.records = next
	return nil
}

func normalize(rec models.SwitchRecord) (models.SwitchRecord, error) {
	if !rec.SwitchType.IsValid() {
		return rec, fmt.Errorf("%w: %q", ErrInvalidSwitchType, rec.SwitchType)
	}
	rec.SwitchType = rec.SwitchType.Normalize()
	return rec, nil
}
