// Package selection tracks which key is currently pressed and which switch
// record it resolves to, and drives the catalog editing workflow.
package selection

import (
	"errors"

	"github.com/marcus/keytester/internal/models"
)

// ErrNoKey is returned by binding operations before any key has been pressed
var ErrNoKey = errors.New("no key selected")

// State is the resolution state of the current key
type State int

const (
	Idle    State = iota // no key pressed yet
	Bound                // current key resolves to an existing record
	Unbound              // current key has no binding, or its switch was deleted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Bound:
		return "bound"
	case Unbound:
		return "unbound"
	default:
		return "unknown"
	}
}

// KeyMap is the subset of the key map repository the selection needs.
type KeyMap interface {
	SwitchID(key string) (models.SwitchID, bool)
	Set(key string, id models.SwitchID) error
	Delete(key string) error
}

// RecordSource resolves switch ids to records.
type RecordSource interface {
	Record(id models.SwitchID) (models.SwitchRecord, bool)
}

// Selection is the state of the key tester's main view.
type Selection struct {
	keys    KeyMap
	records RecordSource

	state    State
	key      string
	switchID models.SwitchID
	record   models.SwitchRecord
}

// New returns a Selection in the Idle state.
func New(keys KeyMap, records RecordSource) *Selection {
	return &Selection{keys: keys, records: records}
}

// Press makes key the current key and resolves it through both stores.
// Keys outside the valid alphabet are ignored and report false.
func (s *Selection) Press(key string) bool {
	if !models.IsValidKey(key) {
		return false
	}
	s.key = models.NormalizeKey(key)
	s.Refresh()
	return true
}

// Refresh re-resolves the current key, picking up edits to either store.
func (s *Selection) Refresh() {
	if s.key == "" {
		s.state = Idle
		return
	}

	s.switchID, s.record = "", models.SwitchRecord{}
	id, ok := s.keys.SwitchID(s.key)
	if !ok {
		s.state = Unbound
		return
	}
	s.switchID = id

	rec, ok := s.records.Record(id)
	if !ok {
		// Dangling reference: keep the id for display
		s.state = Unbound
		return
	}
	s.record = rec
	s.state = Bound
}

// State returns the current resolution state.
func (s *Selection) State() State { return s.state }

// Key returns the current key, or "" when Idle.
func (s *Selection) Key() string { return s.key }

// SwitchID returns the id the current key is bound to, even if dangling.
func (s *Selection) SwitchID() (models.SwitchID, bool) {
	return s.switchID, s.switchID != ""
}

// Record returns the resolved record when Bound.
func (s *Selection) Record() (models.SwitchRecord, bool) {
	return s.record, s.state == Bound
}

// Dangling reports whether the current key references a missing switch.
func (s *Selection) Dangling() bool {
	return s.state == Unbound && s.switchID != ""
}

// Bind binds the current key to id.
func (s *Selection) Bind(id models.SwitchID) error {
	if s.key == "" {
		return ErrNoKey
	}
	if err := s.keys.Set(s.key, id); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

// Unbind removes the current key's binding.
func (s *Selection) Unbind() error {
	if s.key == "" {
		return ErrNoKey
	}
	if err := s.keys.Delete(s.key); err != nil {
		return err
	}
	s.Refresh()
	return nil
}
