// Package tester implements the interactive key tester TUI: press a key to
// see the switch mapped to it, and edit the switch catalog in place.
package tester

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/keytester/internal/catalog"
	"github.com/marcus/keytester/internal/config"
	keyrepo "github.com/marcus/keytester/internal/keymap"
	"github.com/marcus/keytester/internal/selection"
	"github.com/marcus/keytester/pkg/tester/keymap"
)

// MinWidth is the minimum terminal width for proper display
const MinWidth = 40

// MinHeight is the minimum terminal height for proper display
const MinHeight = 12

// Model is the Bubble Tea model for the key tester
type Model struct {
	// Stores
	Config  *config.Store
	KeyMap  *keyrepo.Repository
	Catalog *catalog.Repository
	Logger  *slog.Logger

	// Keymap registry for TUI shortcuts
	Keymap *keymap.Registry

	// Domain state
	Selection *selection.Selection
	Editor    *selection.Editor

	// Window dimensions
	Width  int
	Height int

	// UI state
	Card     viewport.Model
	Dialog   *Dialog
	ShowHelp bool
	Status   string
	Err      error
	Quitting bool
}

// NewModel creates a tester model over already opened stores
func NewModel(cfg *config.Store, keys *keyrepo.Repository, cat *catalog.Repository, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := Model{
		Config:    cfg,
		KeyMap:    keys,
		Catalog:   cat,
		Logger:    logger,
		Keymap:    keymap.NewDefaultRegistry(),
		Selection: selection.New(keys, cat),
		Card:      viewport.New(60, 10),
		Width:     80,
		Height:    24,
	}
	m.resizeCard()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.Dialog != nil {
		return m.updateDialog(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resizeCard()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	return m.renderView()
}

// currentContext returns the keymap context for the active UI state
func (m Model) currentContext() keymap.Context {
	switch {
	case m.Dialog != nil && m.Dialog.Kind == DialogEditSwitch:
		return keymap.ContextForm
	case m.Dialog != nil:
		return keymap.ContextDialog
	case m.ShowHelp:
		return keymap.ContextHelp
	default:
		return keymap.ContextMain
	}
}

// setErr records err for the status line and logs it
func (m *Model) setErr(action string, err error) {
	m.Err = err
	m.Status = ""
	m.Logger.Warn(action+" failed", "err", err)
}

// setStatus shows a confirmation in the status line
func (m *Model) setStatus(s string) {
	m.Err = nil
	m.Status = s
}
