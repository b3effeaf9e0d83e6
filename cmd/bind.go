package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcus/keytester/internal/input"
	"github.com/marcus/keytester/internal/models"
	"github.com/marcus/keytester/internal/output"
	"github.com/spf13/cobra"
)

var bindCmd = &cobra.Command{
	Use:   "bind <key> <switch-id>",
	Short: "Bind a key to a switch",
	Long: `Bind a key to a switch. With --from, read "key switch-id" lines from files
(@file or a path) or stdin (-) and apply them all at once.`,
	Args:    cobra.RangeArgs(0, 2),
	GroupID: "core",
	Example: `  keytester bind a "Cherry MX Red"
  keytester bind --from @layout.txt
  printf 'q Gateron Yellow\nw Gateron Yellow\n' | keytester bind --from -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, _ := cmd.Flags().GetStringArray("from")
		if len(sources) > 0 {
			if len(args) > 0 {
				return fail(false, fmt.Errorf("bind takes no arguments with --from"))
			}
			return bindFrom(sources)
		}
		if len(args) != 2 {
			return fail(false, fmt.Errorf("bind requires <key> and <switch-id>"))
		}

		key, id := args[0], args[1]
		return withWorkspace(false, func(ws *workspace) error {
			if err := ws.Keys.Set(key, id); err != nil {
				return fail(false, err)
			}
			ws.Logger.Info("bound key", "key", key, "switch", id)
			output.Success("Bound %s to %s", strings.ToUpper(models.NormalizeKey(key)), id)
			if _, ok := ws.Catalog.Record(id); !ok {
				output.Warning("%q is not in the catalog yet", id)
			}
			return nil
		})
	},
}

// bindFrom applies the bindings listed in sources
func bindFrom(sources []string) error {
	lines, err := input.ExpandSources(sources, os.Stdin)
	if err != nil {
		return fail(false, err)
	}
	bindings, err := input.ParseBindings(lines)
	if err != nil {
		return fail(false, err)
	}
	if len(bindings) == 0 {
		output.Info("no bindings to apply")
		return nil
	}

	return withWorkspace(false, func(ws *workspace) error {
		if err := ws.Keys.SetAll(bindings); err != nil {
			return fail(false, err)
		}
		ws.Logger.Info("bound keys", "count", len(bindings))
		output.Success("Bound %d keys", len(bindings))

		missing := map[models.SwitchID]bool{}
		for _, b := range bindings {
			if _, ok := ws.Catalog.Record(b.SwitchID); !ok && !missing[b.SwitchID] {
				missing[b.SwitchID] = true
				output.Warning("%q is not in the catalog yet", b.SwitchID)
			}
		}
		return nil
	})
}

var unbindCmd = &cobra.Command{
	Use:     "unbind <key>",
	Short:   "Remove a key's binding",
	Args:    cobra.ExactArgs(1),
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return withWorkspace(false, func(ws *workspace) error {
			if _, ok := ws.Keys.SwitchID(key); !ok {
				output.Info("%s is not bound", strings.ToUpper(models.NormalizeKey(key)))
				return nil
			}
			if err := ws.Keys.Delete(key); err != nil {
				return fail(false, err)
			}
			ws.Logger.Info("unbound key", "key", key)
			output.Success("Unbound %s", strings.ToUpper(models.NormalizeKey(key)))
			return nil
		})
	},
}

var keysCmd = &cobra.Command{
	Use:     "keys",
	Aliases: []string{"ls"},
	Short:   "List key bindings",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		return withWorkspace(jsonOut, func(ws *workspace) error {
			bindings := ws.Keys.Bindings()
			if jsonOut {
				if bindings == nil {
					bindings = []models.Binding{}
				}
				return output.JSON(bindings)
			}
			if len(bindings) == 0 {
				fmt.Println("No keys bound")
				return nil
			}
			for _, b := range bindings {
				_, exists := ws.Catalog.Record(b.SwitchID)
				fmt.Println(output.BindingLine(b, exists))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(bindCmd)
	rootCmd.AddCommand(unbindCmd)
	rootCmd.AddCommand(keysCmd)
	keysCmd.Flags().Bool("json", false, "Output as JSON")
	bindCmd.Flags().StringArray("from", nil, "Read \"key switch-id\" lines from a file (@file or path) or stdin (-)")
}
