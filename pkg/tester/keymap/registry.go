package keymap

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Context represents a UI context for keybindings
type Context string

const (
	ContextGlobal Context = "global"
	ContextMain   Context = "main"
	ContextForm   Context = "form"   // huh form is open
	ContextHelp   Context = "help"   // help overlay is open
	ContextDialog Context = "dialog" // picker, prompt or confirm dialog
)

// Command represents a named command that can be triggered by key bindings
type Command string

const (
	// Global commands
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"

	// Main screen
	CmdRefresh       Command = "refresh"
	CmdEditSwitch    Command = "edit-switch"
	CmdNewSwitch     Command = "new-switch"
	CmdChangeBinding Command = "change-binding"
	CmdDeleteSwitch  Command = "delete-switch"
	CmdUnbindKey     Command = "unbind-key"
	CmdChangeBaseDir Command = "change-base-dir"
	CmdScrollDown    Command = "scroll-down"
	CmdScrollUp      Command = "scroll-up"

	// Forms and dialogs
	CmdFormSubmit Command = "form-submit"
	CmdFormCancel Command = "form-cancel"
	CmdClose      Command = "close"
)

// Binding maps a key to a command in a specific context
type Binding struct {
	Key         string  // e.g., "ctrl+e", "esc"
	Command     Command // Command ID
	Context     Context // "global", "main", "form", etc.
	Description string  // Human-readable description for help text
}

// Registry manages key bindings and command dispatch
type Registry struct {
	bindings      map[Context][]Binding // context -> bindings
	userOverrides map[string]Command    // "context:key" -> command
	mu            sync.RWMutex
}

// NewRegistry creates a new keymap registry
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[Context][]Binding),
		userOverrides: make(map[string]Command),
	}
}

// NewDefaultRegistry returns a registry loaded with DefaultBindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterBindings(DefaultBindings())
	return r
}

// RegisterBinding adds a key binding
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
}

// RegisterBindings adds multiple key bindings
func (r *Registry) RegisterBindings(bindings []Binding) {
	for _, b := range bindings {
		r.RegisterBinding(b)
	}
}

// SetUserOverride sets a user-configured key override for a specific context
func (r *Registry) SetUserOverride(context Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOverrides[string(context)+":"+key] = cmd
}

// Lookup finds the command for a given key in the specified context.
// Checks: user overrides -> context bindings -> global bindings
func (r *Registry) Lookup(key tea.KeyMsg, activeContext Context) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyStr := KeyToString(key)

	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, ok := r.userOverrides[string(activeContext)+":"+keyStr]; ok {
			return cmd, true
		}
	}
	if cmd, ok := r.userOverrides[string(ContextGlobal)+":"+keyStr]; ok {
		return cmd, true
	}

	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, found := r.findInContext(keyStr, activeContext); found {
			return cmd, true
		}
	}
	return r.findInContext(keyStr, ContextGlobal)
}

// findInContext finds a command for a key in a specific context
func (r *Registry) findInContext(key string, context Context) (Command, bool) {
	for _, b := range r.bindings[context] {
		if b.Key == key {
			return b.Command, true
		}
	}
	return "", false
}

// BindingsForContext returns all bindings for a given context (including global)
func (r *Registry) BindingsForContext(context Context) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Binding
	result = append(result, r.bindings[context]...)
	if context != ContextGlobal {
		result = append(result, r.bindings[ContextGlobal]...)
	}
	return result
}

// KeyToString converts a tea.KeyMsg to a string representation
func KeyToString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeyCtrlC:
		return "ctrl+c"
	case tea.KeyCtrlB:
		return "ctrl+b"
	case tea.KeyCtrlD:
		return "ctrl+d"
	case tea.KeyCtrlE:
		return "ctrl+e"
	case tea.KeyCtrlH:
		return "ctrl+h"
	case tea.KeyCtrlN:
		return "ctrl+n"
	case tea.KeyCtrlO:
		return "ctrl+o"
	case tea.KeyCtrlR:
		return "ctrl+r"
	case tea.KeyCtrlS:
		return "ctrl+s"
	case tea.KeyCtrlU:
		return "ctrl+u"
	case tea.KeyEnter:
		return "enter"
	case tea.KeyEsc:
		return "esc"
	case tea.KeySpace:
		return "space"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	case tea.KeyPgUp:
		return "pgup"
	case tea.KeyPgDown:
		return "pgdown"
	case tea.KeyRunes:
		return string(key.Runes)
	default:
		return key.String()
	}
}

// PressedKey returns the single printable character carried by key, if any.
// Alt-modified keys are not presses.
func PressedKey(key tea.KeyMsg) (string, bool) {
	if key.Type != tea.KeyRunes || key.Alt || len(key.Runes) != 1 {
		return "", false
	}
	r := key.Runes[0]
	if r < '!' || r > '~' {
		return "", false
	}
	return string(r), true
}
