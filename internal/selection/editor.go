package selection

import (
	"errors"
	"fmt"

	"github.com/marcus/keytester/internal/models"
)

var (
	// ErrSelectionLocked is returned when switching records while a new one is pending
	ErrSelectionLocked = errors.New("finish or cancel the new switch first")
	// ErrNothingSelected is returned when the catalog is empty
	ErrNothingSelected = errors.New("no switch selected")
	// ErrUnknownSwitch is returned when selecting an id the catalog does not have
	ErrUnknownSwitch = errors.New("unknown switch")
)

// Mode is the editor's local state
type Mode int

const (
	Viewing    Mode = iota
	EditingNew      // a freshly created record is pending Save or Cancel
)

func (m Mode) String() string {
	if m == EditingNew {
		return "editing-new"
	}
	return "viewing"
}

// Catalog is the subset of the switch catalog the editor needs.
type Catalog interface {
	RecordSource
	IDs() []models.SwitchID
	Create(id models.SwitchID, rec models.SwitchRecord) error
	Delete(id models.SwitchID) error
	ApplyImage(id models.SwitchID, rec models.SwitchRecord, src string) (models.SwitchRecord, error)
}

// Editor walks the catalog one record at a time and supports creating,
// saving and deleting records.
type Editor struct {
	catalog Catalog
	mode    Mode
	current models.SwitchID
}

// NewEditor opens the editor on initial, or on the first switch if initial
// is not in the catalog.
func NewEditor(catalog Catalog, initial models.SwitchID) *Editor {
	e := &Editor{catalog: catalog}
	if _, ok := catalog.Record(initial); ok {
		e.current = initial
	} else {
		e.current = e.first()
	}
	return e
}

// Mode returns the editor's state.
func (e *Editor) Mode() Mode { return e.mode }

// CanSelect reports whether another record may be selected.
func (e *Editor) CanSelect() bool { return e.mode == Viewing }

// Current returns the id being viewed or edited, "" if the catalog is empty.
func (e *Editor) Current() models.SwitchID { return e.current }

// IDs lists the selectable switch ids.
func (e *Editor) IDs() []models.SwitchID { return e.catalog.IDs() }

// Record returns the record under the cursor.
func (e *Editor) Record() (models.SwitchRecord, bool) {
	if e.current == "" {
		return models.SwitchRecord{}, false
	}
	return e.catalog.Record(e.current)
}

// Select moves to another record. Not allowed while a new record is pending.
func (e *Editor) Select(id models.SwitchID) error {
	if !e.CanSelect() {
		return ErrSelectionLocked
	}
	if _, ok := e.catalog.Record(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSwitch, id)
	}
	e.current = id
	return nil
}

// BeginCreate adds a blank record named id and enters EditingNew.
func (e *Editor) BeginCreate(id models.SwitchID) error {
	if !e.CanSelect() {
		return ErrSelectionLocked
	}
	rec := models.BlankRecord()
	rec.SwitchName = id
	if err := e.catalog.Create(id, rec); err != nil {
		return err
	}
	e.current = id
	e.mode = EditingNew
	return nil
}

// Save stores rec for the current id, importing imageSrc if given, and
// returns to Viewing. On failure the editor stays in its current mode.
func (e *Editor) Save(rec models.SwitchRecord, imageSrc string) (models.SwitchRecord, error) {
	if e.current == "" {
		return models.SwitchRecord{}, ErrNothingSelected
	}
	saved, err := e.catalog.ApplyImage(e.current, rec, imageSrc)
	if err != nil {
		return models.SwitchRecord{}, err
	}
	e.mode = Viewing
	return saved, nil
}

// Cancel discards a pending new record. In Viewing it does nothing.
func (e *Editor) Cancel() error {
	if e.mode != EditingNew {
		return nil
	}
	if err := e.catalog.Delete(e.current); err != nil {
		return err
	}
	e.mode = Viewing
	e.current = e.first()
	return nil
}

// Delete removes the current record and moves to the first remaining one.
func (e *Editor) Delete() error {
	if !e.CanSelect() {
		return ErrSelectionLocked
	}
	if e.current == "" {
		return ErrNothingSelected
	}
	if err := e.catalog.Delete(e.current); err != nil {
		return err
	}
	e.current = e.first()
	return nil
}

func (e *Editor) first() models.SwitchID {
	ids := e.catalog.IDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
