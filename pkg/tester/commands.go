package tester

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/keytester/internal/models"
	"github.com/marcus/keytester/internal/selection"
	"github.com/marcus/keytester/pkg/tester/keymap"
)

// handleKey processes key input on the main screen and the help overlay
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.currentContext()

	if cmd, found := m.Keymap.Lookup(msg, ctx); found {
		return m.executeCommand(cmd)
	}

	if ctx != keymap.ContextMain {
		return m, nil
	}
	if key, ok := keymap.PressedKey(msg); ok && m.Selection.Press(key) {
		m.Err = nil
		m.Status = ""
		m.updateCard()
	}
	return m, nil
}

// executeCommand runs a keymap command
func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		if m.Dialog != nil && m.Dialog.Pending {
			m.cancelDialog()
		}
		m.Quitting = true
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.ShowHelp = !m.ShowHelp
		return m, nil

	case keymap.CmdClose:
		m.ShowHelp = false
		return m, nil

	case keymap.CmdScrollDown:
		m.Card.ScrollDown(1)
		return m, nil

	case keymap.CmdScrollUp:
		m.Card.ScrollUp(1)
		return m, nil

	case keymap.CmdRefresh:
		m.reload()
		return m, nil

	case keymap.CmdEditSwitch:
		return m.openEditSwitch()

	case keymap.CmdNewSwitch:
		return m.openDialog(NewSwitchIDDialog(func(id string) bool {
			_, ok := m.Catalog.Record(id)
			return ok
		}))

	case keymap.CmdChangeBinding:
		if m.Selection.Key() == "" {
			m.setErr("change binding", selection.ErrNoKey)
			return m, nil
		}
		current, _ := m.Selection.SwitchID()
		return m.openDialog(NewBindingDialog(m.Selection.Key(), m.Catalog.IDs(), current))

	case keymap.CmdDeleteSwitch:
		id, ok := m.Selection.SwitchID()
		if !ok || m.Selection.Dangling() {
			m.setErr("delete switch", selection.ErrNothingSelected)
			return m, nil
		}
		return m.openDialog(NewConfirmDeleteDialog(id, m.KeyMap.KeysFor(id)))

	case keymap.CmdUnbindKey:
		if err := m.Selection.Unbind(); err != nil {
			m.setErr("unbind", err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Unbound %s", strings.ToUpper(m.Selection.Key())))
		m.updateCard()
		return m, nil

	case keymap.CmdChangeBaseDir:
		return m.openDialog(NewBaseDirDialog(m.Config.BaseDir()))

	case keymap.CmdFormSubmit:
		return m.submitDialog()

	case keymap.CmdFormCancel:
		m.cancelDialog()
		return m, nil
	}

	return m, nil
}

// openEditSwitch edits the switch behind the current key, or asks which
// switch to edit when the key has none.
func (m Model) openEditSwitch() (tea.Model, tea.Cmd) {
	initial, _ := m.Selection.SwitchID()
	m.Editor = selection.NewEditor(m.Catalog, initial)

	if m.Selection.State() == selection.Bound {
		return m.openEditForm(false)
	}
	ids := m.Editor.IDs()
	if len(ids) == 0 {
		m.setErr("edit switch", selection.ErrNothingSelected)
		return m, nil
	}
	return m.openDialog(NewPickSwitchDialog(ids, m.Editor.Current()))
}

// openEditForm opens the field editor on the editor's current record
func (m Model) openEditForm(pending bool) (tea.Model, tea.Cmd) {
	rec, ok := m.Editor.Record()
	if !ok {
		m.setErr("edit switch", selection.ErrNothingSelected)
		return m, nil
	}
	return m.openDialog(NewEditSwitchDialog(m.Editor.Current(), rec, m.Config.OpenDir(), pending))
}

// openDialog shows d and initializes its form
func (m Model) openDialog(d *Dialog) (tea.Model, tea.Cmd) {
	m.Dialog = d
	m.ShowHelp = false
	if w := m.dialogWidth(); w > 0 {
		d.Form.WithWidth(w)
	}
	return m, d.Form.Init()
}

// updateDialog routes messages to the open form
func (m Model) updateDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if cmd, found := m.Keymap.Lookup(keyMsg, m.currentContext()); found {
			return m.executeCommand(cmd)
		}
	}

	if sizeMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.Width = sizeMsg.Width
		m.Height = sizeMsg.Height
		m.resizeCard()
		m.Dialog.Form.WithWidth(m.dialogWidth())
	}

	form, cmd := m.Dialog.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Dialog.Form = f
	}

	switch m.Dialog.Form.State {
	case huh.StateCompleted:
		return m.submitDialog()
	case huh.StateAborted:
		m.cancelDialog()
		return m, nil
	}
	return m, cmd
}

// submitDialog applies the open dialog's values
func (m Model) submitDialog() (tea.Model, tea.Cmd) {
	d := m.Dialog
	if d == nil {
		return m, nil
	}
	m.Dialog = nil

	switch d.Kind {
	case DialogEditSwitch:
		rec := d.Record
		if _, err := m.Editor.Save(rec, d.ImagePath); err != nil {
			m.setErr("save switch", err)
			// Reopen the form with what was typed
			m.Dialog = NewEditSwitchDialog(d.SwitchID, d.Record, m.Config.OpenDir(), d.Pending)
			m.Dialog.Form.WithWidth(m.dialogWidth())
			return m, m.Dialog.Form.Init()
		}
		if d.ImagePath != "" {
			if err := m.Config.SetOpenDir(filepath.Dir(d.ImagePath)); err != nil {
				m.Logger.Warn("remember open dir failed", "err", err)
			}
		}
		m.Logger.Info("saved switch", "id", d.SwitchID)
		m.setStatus("Saved " + d.SwitchID)

	case DialogNewSwitchID:
		id := strings.TrimSpace(d.SwitchID)
		m.Editor = selection.NewEditor(m.Catalog, "")
		if err := m.Editor.BeginCreate(id); err != nil {
			m.setErr("create switch", err)
			return m, nil
		}
		m.Logger.Info("created switch", "id", id)
		return m.openEditForm(true)

	case DialogPickSwitch:
		if err := m.Editor.Select(d.SwitchID); err != nil {
			m.setErr("select switch", err)
			return m, nil
		}
		return m.openEditForm(false)

	case DialogBinding:
		id := d.BindingChoice()
		var err error
		if id == "" {
			err = m.Selection.Unbind()
		} else {
			err = m.Selection.Bind(id)
		}
		if err != nil {
			m.setErr("change binding", err)
			return m, nil
		}
		if id == "" {
			m.setStatus(fmt.Sprintf("Unbound %s", strings.ToUpper(m.Selection.Key())))
		} else {
			m.setStatus(fmt.Sprintf("Bound %s to %s", strings.ToUpper(m.Selection.Key()), id))
		}

	case DialogConfirmDelete:
		if !d.Confirm {
			return m, nil
		}
		m.Editor = selection.NewEditor(m.Catalog, d.SwitchID)
		if err := m.Editor.Select(d.SwitchID); err != nil {
			m.setErr("delete switch", err)
			return m, nil
		}
		if err := m.Editor.Delete(); err != nil {
			m.setErr("delete switch", err)
			return m, nil
		}
		m.Logger.Info("deleted switch", "id", d.SwitchID)
		m.setStatus("Deleted " + d.SwitchID)

	case DialogBaseDir:
		path := strings.TrimSpace(d.Path)
		if err := m.Config.ChangeBaseDir(path); err != nil {
			m.setErr("change base directory", err)
			return m, nil
		}
		m.Editor = nil
		m.setStatus("Base directory: " + m.Config.BaseDir())
	}

	m.Selection.Refresh()
	m.updateCard()
	return m, nil
}

// cancelDialog closes the open dialog. A pending new switch is discarded.
func (m *Model) cancelDialog() {
	d := m.Dialog
	m.Dialog = nil
	if d == nil || !d.Pending || m.Editor == nil {
		return
	}
	if err := m.Editor.Cancel(); err != nil {
		m.setErr("discard new switch", err)
		return
	}
	m.Logger.Info("discarded new switch", "id", d.SwitchID)
	m.Selection.Refresh()
	m.updateCard()
}

// reload re-reads both data files from disk. Neither changes unless both parse.
func (m *Model) reload() {
	if err := m.Config.Reload(); err != nil {
		m.setErr("reload", err)
		return
	}
	m.Editor = nil
	m.Selection.Refresh()
	m.updateCard()
	m.setStatus(fmt.Sprintf("Reloaded %d switches", m.Catalog.Len()))
}

// boundKeys lists the keys bound to id, in keyboard order
func (m Model) boundKeys(id models.SwitchID) []string {
	return m.KeyMap.KeysFor(id)
}
