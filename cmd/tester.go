package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/keytester/internal/output"
	"github.com/marcus/keytester/pkg/tester"
	testerkeys "github.com/marcus/keytester/pkg/tester/keymap"
	"github.com/spf13/cobra"
)

var testerCmd = &cobra.Command{
	Use:   "tester",
	Short: "Open the interactive key tester",
	Long: `Launch the full-screen key tester. Press a key to see the switch bound to it.

Key bindings:
  Ctrl+E         Edit switch
  Ctrl+N         New switch
  Ctrl+B         Change the key's binding
  Ctrl+D         Delete switch
  Ctrl+U         Unbind key
  Ctrl+R         Reload data files
  Ctrl+O         Change base directory
  Ctrl+H         Toggle help
  Esc / Ctrl+C   Quit`,
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTester()
	},
}

// runTester opens the stores and runs the TUI until the user quits.
// Console logging is off while the TUI owns the terminal.
func runTester() error {
	ws, err := openWorkspace(nil)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer ws.Close()

	model := tester.NewModel(ws.Config, ws.Keys, ws.Catalog, ws.Logger)
	if skipped := testerkeys.ApplyOverrides(model.Keymap, ws.Settings.KeyBindings); len(skipped) > 0 {
		output.Warning("ignoring key bindings in %s: %s", ws.Settings.Path(), strings.Join(skipped, ", "))
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tester: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(testerCmd)
}
