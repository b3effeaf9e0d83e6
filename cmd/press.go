package cmd

import (
	"fmt"

	"github.com/marcus/keytester/internal/keymap"
	"github.com/marcus/keytester/internal/models"
	"github.com/marcus/keytester/internal/output"
	"github.com/marcus/keytester/internal/selection"
	"github.com/spf13/cobra"
)

// pressResult is the JSON shape of a key lookup
type pressResult struct {
	Key      string               `json:"key"`
	State    string               `json:"state"`
	SwitchID models.SwitchID      `json:"switch_id,omitempty"`
	Switch   *models.SwitchRecord `json:"switch,omitempty"`
	Image    string               `json:"image_path,omitempty"`
}

var pressCmd = &cobra.Command{
	Use:     "press <key>",
	Short:   "Show the switch bound to a key",
	Args:    cobra.ExactArgs(1),
	GroupID: "core",
	Example: `  keytester press a
  keytester press ";" --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		key := args[0]
		if !models.IsValidKey(key) {
			return fail(jsonOut, fmt.Errorf("%w: %q", keymap.ErrInvalidKey, key))
		}

		return withWorkspace(jsonOut, func(ws *workspace) error {
			sel := selection.New(ws.Keys, ws.Catalog)
			sel.Press(key)

			id, _ := sel.SwitchID()
			rec, bound := sel.Record()

			if jsonOut {
				res := pressResult{Key: sel.Key(), State: sel.State().String(), SwitchID: id}
				if bound {
					res.Switch = &rec
					res.Image = ws.Catalog.ImagePath(rec)
				}
				return output.JSON(res)
			}

			fmt.Println(output.FormatKey(sel.Key()))
			if !bound {
				fmt.Println(output.NoInformation)
				if sel.Dangling() {
					output.Warning("key is bound to %q, which is not in the catalog", id)
				}
				return nil
			}

			rendered, err := output.RenderSwitch(id, rec, ws.Keys.KeysFor(id), ws.Catalog.ImagePath(rec))
			if err != nil {
				return fail(false, err)
			}
			fmt.Println(rendered)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(pressCmd)
	pressCmd.Flags().Bool("json", false, "Output as JSON")
}
