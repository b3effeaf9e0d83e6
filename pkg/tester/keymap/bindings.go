package keymap

// DefaultBindings returns the default key bindings for the tester TUI.
// Printable keys are never bound on the main screen; they are key presses.
// ctrl+h stays out of forms and dialogs, where terminals may send it for backspace.
func DefaultBindings() []Binding {
	return []Binding{
		// Global
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},

		// Main screen
		{Key: "esc", Command: CmdQuit, Context: ContextMain, Description: "Quit"},
		{Key: "ctrl+h", Command: CmdToggleHelp, Context: ContextMain, Description: "Toggle help"},
		{Key: "ctrl+e", Command: CmdEditSwitch, Context: ContextMain, Description: "Edit switch"},
		{Key: "ctrl+n", Command: CmdNewSwitch, Context: ContextMain, Description: "New switch"},
		{Key: "ctrl+b", Command: CmdChangeBinding, Context: ContextMain, Description: "Change key binding"},
		{Key: "ctrl+d", Command: CmdDeleteSwitch, Context: ContextMain, Description: "Delete switch"},
		{Key: "ctrl+u", Command: CmdUnbindKey, Context: ContextMain, Description: "Unbind key"},
		{Key: "ctrl+r", Command: CmdRefresh, Context: ContextMain, Description: "Reload data files"},
		{Key: "ctrl+o", Command: CmdChangeBaseDir, Context: ContextMain, Description: "Change base directory"},
		{Key: "down", Command: CmdScrollDown, Context: ContextMain, Description: "Scroll card down"},
		{Key: "up", Command: CmdScrollUp, Context: ContextMain, Description: "Scroll card up"},
		{Key: "pgdown", Command: CmdScrollDown, Context: ContextMain, Description: "Scroll card down"},
		{Key: "pgup", Command: CmdScrollUp, Context: ContextMain, Description: "Scroll card up"},

		// Forms
		{Key: "esc", Command: CmdFormCancel, Context: ContextForm, Description: "Cancel"},
		{Key: "ctrl+s", Command: CmdFormSubmit, Context: ContextForm, Description: "Save"},

		// Dialogs
		{Key: "esc", Command: CmdFormCancel, Context: ContextDialog, Description: "Cancel"},

		// Help overlay
		{Key: "esc", Command: CmdClose, Context: ContextHelp, Description: "Close help"},
		{Key: "enter", Command: CmdClose, Context: ContextHelp, Description: "Close help"},
		{Key: "ctrl+h", Command: CmdToggleHelp, Context: ContextHelp, Description: "Toggle help"},
	}
}
