package tester

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/keytester/internal/catalog"
	"github.com/marcus/keytester/internal/config"
	keyrepo "github.com/marcus/keytester/internal/keymap"
	"github.com/marcus/keytester/internal/models"
)

type memSettings struct {
	base, open string
}

func (s *memSettings) BaseDir() string     { return s.base }
func (s *memSettings) SetBaseDir(d string) { s.base = d }
func (s *memSettings) OpenDir() string     { return s.open }
func (s *memSettings) SetOpenDir(d string) { s.open = d }
func (s *memSettings) Save() error         { return nil }

// newTestModel opens fresh stores with one switch bound to "a"
func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg, err := config.New(&memSettings{base: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	keys, err := keyrepo.Open(cfg.KeyMapPath())
	if err != nil {
		t.Fatalf("keymap.Open: %v", err)
	}
	cat, err := catalog.Open(cfg.CatalogPath(), cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	cfg.Attach(keys, cat)

	red := models.BlankRecord()
	red.SwitchName = "Cherry MX Red"
	red.SwitchType = models.SwitchTypeLinear
	red.OperationForce = "45g"
	if err := cat.Create("Cherry MX Red", red); err != nil {
		t.Fatal(err)
	}
	if err := keys.Set("a", "Cherry MX Red"); err != nil {
		t.Fatal(err)
	}

	m := NewModel(cfg, keys, cat, nil)
	m.Width, m.Height = 100, 40
	m.resizeCard()
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPressShowsBoundSwitch(t *testing.T) {
	m := newTestModel(t)
	if got := m.Selection.State().String(); got != "idle" {
		t.Fatalf("initial state = %s, want idle", got)
	}

	m = press(t, m, runes("A"))
	if m.Selection.Key() != "a" {
		t.Errorf("key = %q, want a", m.Selection.Key())
	}
	content := m.cardContent()
	if !strings.Contains(content, "Cherry MX Red") || !strings.Contains(content, "45g") {
		t.Errorf("card missing switch details:\n%s", content)
	}
}

func TestPressUnboundKeyShowsEmptyState(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("q"))
	if !strings.Contains(m.cardContent(), "No information available.") {
		t.Errorf("expected empty state, got:\n%s", m.cardContent())
	}
}

func TestInvalidKeysAreIgnored(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("a"))
	m = press(t, m, runes("!"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.Selection.Key() != "a" {
		t.Errorf("key changed to %q on invalid input", m.Selection.Key())
	}
}

func TestUnbindKey(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("a"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})

	if m.Err != nil {
		t.Fatalf("unexpected error: %v", m.Err)
	}
	if _, ok := m.KeyMap.SwitchID("a"); ok {
		t.Error("binding still present after unbind")
	}
	reloaded, err := keyrepo.LoadFile(m.KeyMap.Path())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded["a"]; ok {
		t.Error("binding still on disk after unbind")
	}
}

func TestUnbindWithoutKeyReportsError(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	if m.Err == nil {
		t.Error("expected error when no key is selected")
	}
}

func TestNewSwitchCancelLeavesNoTrace(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.Dialog == nil || m.Dialog.Kind != DialogNewSwitchID {
		t.Fatalf("expected id prompt, got %+v", m.Dialog)
	}

	m.Dialog.SwitchID = "Boba U4T"
	next, _ := m.submitDialog()
	m = next.(Model)
	if m.Dialog == nil || m.Dialog.Kind != DialogEditSwitch || !m.Dialog.Pending {
		t.Fatalf("expected pending edit form, got %+v", m.Dialog)
	}
	if _, ok := m.Catalog.Record("Boba U4T"); !ok {
		t.Fatal("pending switch not created")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Dialog != nil {
		t.Error("dialog still open after esc")
	}
	if _, ok := m.Catalog.Record("Boba U4T"); ok {
		t.Error("cancelled switch still in catalog")
	}
	onDisk, err := catalog.LoadFile(m.Catalog.Path())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := onDisk["Boba U4T"]; ok {
		t.Error("cancelled switch still on disk")
	}
}

func TestNewSwitchSave(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m.Dialog.SwitchID = "  Holy Panda "
	next, _ := m.submitDialog()
	m = next.(Model)

	if m.Dialog.Record.SwitchName != "Holy Panda" {
		t.Errorf("new record name = %q, want id", m.Dialog.Record.SwitchName)
	}
	m.Dialog.Record.SwitchType = models.SwitchTypeTactile
	m.Dialog.Record.Price = "$1.10"
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.Err != nil {
		t.Fatalf("save failed: %v", m.Err)
	}
	rec, ok := m.Catalog.Record("Holy Panda")
	if !ok {
		t.Fatal("saved switch missing")
	}
	if rec.SwitchType != models.SwitchTypeTactile || rec.Price != "$1.10" {
		t.Errorf("saved record = %+v", rec)
	}
}

func TestEditBoundSwitch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("a"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.Dialog == nil || m.Dialog.Kind != DialogEditSwitch {
		t.Fatalf("expected edit form, got %+v", m.Dialog)
	}
	if m.Dialog.Pending {
		t.Error("existing switch marked pending")
	}

	m.Dialog.Record.OperationForce = "50g"
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	rec, _ := m.Catalog.Record("Cherry MX Red")
	if rec.OperationForce != "50g" {
		t.Errorf("operation force = %q, want 50g", rec.OperationForce)
	}
	if !strings.Contains(m.cardContent(), "50g") {
		t.Error("card not refreshed after save")
	}
}

func TestEditWithImageRemembersOpenDir(t *testing.T) {
	m := newTestModel(t)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "red.png")
	if err := os.WriteFile(src, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	m = press(t, m, runes("a"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m.Dialog.ImagePath = src
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	rec, _ := m.Catalog.Record("Cherry MX Red")
	if rec.Image != "red.png" {
		t.Errorf("image = %q, want red.png", rec.Image)
	}
	if m.Config.OpenDir() != srcDir {
		t.Errorf("open dir = %q, want %q", m.Config.OpenDir(), srcDir)
	}
}

func TestEditUnboundKeyPicksSwitch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("z"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.Dialog == nil || m.Dialog.Kind != DialogPickSwitch {
		t.Fatalf("expected switch picker, got %+v", m.Dialog)
	}
	next, _ := m.submitDialog()
	m = next.(Model)
	if m.Dialog == nil || m.Dialog.Kind != DialogEditSwitch || m.Dialog.SwitchID != "Cherry MX Red" {
		t.Fatalf("expected edit form for picked switch, got %+v", m.Dialog)
	}
}

func TestChangeBinding(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("z"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	if m.Dialog == nil || m.Dialog.Kind != DialogBinding {
		t.Fatalf("expected binding dialog, got %+v", m.Dialog)
	}
	if m.Dialog.BindingChoice() != "" {
		t.Errorf("unbound key should preselect no switch, got %q", m.Dialog.BindingChoice())
	}

	m.Dialog.SwitchID = "Cherry MX Red"
	next, _ := m.submitDialog()
	m = next.(Model)
	if id, _ := m.KeyMap.SwitchID("z"); id != "Cherry MX Red" {
		t.Errorf("z bound to %q", id)
	}
	if m.Selection.State().String() != "bound" {
		t.Errorf("state = %s, want bound", m.Selection.State())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m.Dialog.SwitchID = noBinding
	next, _ = m.submitDialog()
	m = next.(Model)
	if _, ok := m.KeyMap.SwitchID("z"); ok {
		t.Error("z still bound after choosing no switch")
	}
}

func TestDeleteSwitchLeavesDanglingBinding(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("a"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.Dialog == nil || m.Dialog.Kind != DialogConfirmDelete {
		t.Fatalf("expected confirm dialog, got %+v", m.Dialog)
	}

	m.Dialog.Confirm = true
	next, _ := m.submitDialog()
	m = next.(Model)

	if _, ok := m.Catalog.Record("Cherry MX Red"); ok {
		t.Error("switch not deleted")
	}
	if !m.Selection.Dangling() {
		t.Error("binding should dangle after delete")
	}
	if !strings.Contains(m.cardContent(), "missing switch: Cherry MX Red") {
		t.Errorf("card does not mention dangling id:\n%s", m.cardContent())
	}
}

func TestDeleteDeclinedKeepsSwitch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("a"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	next, _ := m.submitDialog()
	m = next.(Model)
	if _, ok := m.Catalog.Record("Cherry MX Red"); !ok {
		t.Error("switch deleted without confirmation")
	}
}

func TestChangeBaseDir(t *testing.T) {
	m := newTestModel(t)
	next := t.TempDir()
	if err := os.WriteFile(filepath.Join(next, config.KeyMapFile), []byte(`{"a": "Gateron Yellow"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(next, config.CatalogFile),
		[]byte(`{"Gateron Yellow": {"switch_name": "Gateron Yellow", "switch_type": "Linear"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	m = press(t, m, runes("a"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m.Dialog.Path = next
	n, _ := m.submitDialog()
	m = n.(Model)

	if m.Err != nil {
		t.Fatalf("change base dir: %v", m.Err)
	}
	if id, _ := m.Selection.SwitchID(); id != "Gateron Yellow" {
		t.Errorf("selection resolved to %q after base dir change", id)
	}
}

func TestReload(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("s"))
	if err := os.WriteFile(m.KeyMap.Path(), []byte(`{"s": "Cherry MX Red"}`), 0644); err != nil {
		t.Fatal(err)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.Selection.State().String() != "bound" {
		t.Errorf("state after reload = %s, want bound", m.Selection.State())
	}
}

func TestReloadCorruptCatalogKeepsKeyMap(t *testing.T) {
	m := newTestModel(t)
	if err := os.WriteFile(m.KeyMap.Path(), []byte(`{"a": "Gateron Yellow"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(m.Catalog.Path(), []byte(`not json`), 0644); err != nil {
		t.Fatal(err)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.Err == nil {
		t.Fatal("expected reload error")
	}
	if id, _ := m.KeyMap.SwitchID("a"); id != "Cherry MX Red" {
		t.Errorf("key map changed to %q after failed reload", id)
	}
	if _, ok := m.Catalog.Record("Cherry MX Red"); !ok {
		t.Error("catalog lost its records after failed reload")
	}
}

func TestQuitDiscardsPendingSwitch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m.Dialog.SwitchID = "Pending"
	next, _ := m.submitDialog()
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	if cmd == nil || !m.Quitting {
		t.Error("expected quit")
	}
	if _, ok := m.Catalog.Record("Pending"); ok {
		t.Error("pending switch survived quit")
	}
}

func TestEscQuitsMainScreen(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || !next.(Model).Quitting {
		t.Error("esc should quit from the main screen")
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlH})
	if !m.ShowHelp {
		t.Fatal("help not shown")
	}
	if !strings.Contains(m.View(), "KEYTESTER") {
		t.Error("help view missing title")
	}
	// Printable keys do not press while help is open
	m = press(t, m, runes("a"))
	if m.Selection.Key() != "" {
		t.Error("key pressed behind help overlay")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.ShowHelp {
		t.Error("esc did not close help")
	}
}

func TestViewTooSmall(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	if !strings.Contains(next.View(), "Terminal too small") {
		t.Errorf("expected size warning, got %q", next.View())
	}
}
