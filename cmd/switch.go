package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcus/keytester/internal/catalog"
	"github.com/marcus/keytester/internal/models"
	"github.com/marcus/keytester/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var switchCmd = &cobra.Command{
	Use:     "switch",
	Aliases: []string{"sw"},
	Short:   "Manage the switch catalog",
	GroupID: "catalog",
}

// flagName turns a record field name into its flag, e.g. top_housing -> top-housing
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// switchArg normalizes a switch id given on the command line
func switchArg(arg string) models.SwitchID {
	return strings.TrimSpace(arg)
}

// warnMissingImage reports an --image path that will be ignored
func warnMissingImage(image string) {
	if image == "" {
		return
	}
	if _, err := os.Stat(image); os.IsNotExist(err) {
		output.Warning("image %s not found, no image copied", image)
	}
}

// addRecordFlags registers one flag per switch record field
func addRecordFlags(fs *pflag.FlagSet) {
	var rec models.SwitchRecord
	for _, f := range rec.TextFields() {
		fs.String(flagName(f.Name), "", f.Label)
	}
	names := make([]string, 0, len(models.SwitchTypes))
	for _, t := range models.SwitchTypes {
		names = append(names, string(t))
	}
	fs.String("type", "", "Switch type: "+strings.Join(names, ", "))
	fs.String("image", "", "Image file to copy into the images folder")
}

// applyRecordFlags copies the flags the user set onto rec
func applyRecordFlags(fs *pflag.FlagSet, rec *models.SwitchRecord) error {
	for _, f := range rec.TextFields() {
		name := flagName(f.Name)
		if fs.Changed(name) {
			*f.Value, _ = fs.GetString(name)
		}
	}
	if fs.Changed("type") {
		v, _ := fs.GetString("type")
		t, ok := models.ParseSwitchType(v)
		if !ok {
			return fmt.Errorf("%w: %q", catalog.ErrInvalidSwitchType, v)
		}
		rec.SwitchType = t
	}
	return nil
}

var switchCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Add a switch to the catalog",
	Args:  cobra.ExactArgs(1),
	Example: `  keytester switch create "Cherry MX Red" --type linear --operation-force 45g
  keytester switch create "Holy Panda" --type tactile --image ~/Downloads/panda.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		id := switchArg(args[0])

		rec := models.BlankRecord()
		rec.SwitchName = id
		if err := applyRecordFlags(cmd.Flags(), &rec); err != nil {
			return fail(jsonOut, err)
		}
		image, _ := cmd.Flags().GetString("image")

		return withWorkspace(jsonOut, func(ws *workspace) error {
			if id == "" {
				return fail(jsonOut, catalog.ErrEmptyID)
			}
			if _, exists := ws.Catalog.Record(id); exists {
				return fail(jsonOut, fmt.Errorf("%w: %s", catalog.ErrDuplicateID, id))
			}

			// A failed image copy must not leave a record behind
			warnMissingImage(image)
			name, ok, err := ws.Catalog.ImportImage(image)
			if err != nil {
				return fail(jsonOut, err)
			}
			if ok {
				rec.Image = name
			}

			if err := ws.Catalog.Create(id, rec); err != nil {
				return fail(jsonOut, err)
			}
			ws.Logger.Info("created switch", "id", id)
			if jsonOut {
				return output.JSON(map[string]any{"id": id, "switch": rec})
			}
			output.Success("Created %s", id)
			return nil
		})
	},
}

var switchUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a switch",
	Long:  `Only the fields given as flags change; the rest keep their values.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		id := switchArg(args[0])
		image, _ := cmd.Flags().GetString("image")

		return withWorkspace(jsonOut, func(ws *workspace) error {
			rec, ok := ws.Catalog.Record(id)
			if !ok {
				return fail(jsonOut, fmt.Errorf("%w: %s", catalog.ErrNotFound, id))
			}
			if err := applyRecordFlags(cmd.Flags(), &rec); err != nil {
				return fail(jsonOut, err)
			}
			warnMissingImage(image)
			saved, err := ws.Catalog.ApplyImage(id, rec, image)
			if err != nil {
				return fail(jsonOut, err)
			}
			ws.Logger.Info("updated switch", "id", id)
			if jsonOut {
				return output.JSON(map[string]any{"id": id, "switch": saved})
			}
			output.Success("Updated %s", id)
			return nil
		})
	},
}

var switchDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a switch from the catalog",
	Long: `Remove a switch from the catalog. Keys bound to it keep their binding and
show no information until rebound.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := switchArg(args[0])
		return withWorkspace(false, func(ws *workspace) error {
			if _, ok := ws.Catalog.Record(id); !ok {
				output.Info("%s is not in the catalog", id)
				return nil
			}
			if err := ws.Catalog.Delete(id); err != nil {
				return fail(false, err)
			}
			ws.Logger.Info("deleted switch", "id", id)
			output.Success("Deleted %s", id)
			if keys := ws.Keys.KeysFor(id); len(keys) > 0 {
				output.Warning("still bound to: %s", strings.Join(keys, " "))
			}
			return nil
		})
	},
}

var switchShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a switch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		id := switchArg(args[0])
		return withWorkspace(jsonOut, func(ws *workspace) error {
			rec, ok := ws.Catalog.Record(id)
			if !ok {
				return fail(jsonOut, fmt.Errorf("%w: %s", catalog.ErrNotFound, id))
			}
			keys := ws.Keys.KeysFor(id)
			if jsonOut {
				if keys == nil {
					keys = []string{}
				}
				return output.JSON(map[string]any{"id": id, "switch": rec, "keys": keys})
			}
			rendered, err := output.RenderSwitch(id, rec, keys, ws.Catalog.ImagePath(rec))
			if err != nil {
				return fail(false, err)
			}
			fmt.Println(rendered)
			return nil
		})
	},
}

var switchListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List switches in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		typeFilter, _ := cmd.Flags().GetString("type")

		var want models.SwitchType
		if typeFilter != "" {
			t, ok := models.ParseSwitchType(typeFilter)
			if !ok {
				return fail(jsonOut, fmt.Errorf("%w: %q", catalog.ErrInvalidSwitchType, typeFilter))
			}
			want = t
		}

		return withWorkspace(jsonOut, func(ws *workspace) error {
			records := ws.Catalog.Records()
			ids := ws.Catalog.IDs()
			if want != "" {
				kept := ids[:0]
				for _, id := range ids {
					if records[id].SwitchType.Normalize() == want {
						kept = append(kept, id)
					}
				}
				ids = kept
			}

			if jsonOut {
				out := make(map[models.SwitchID]models.SwitchRecord, len(ids))
				for _, id := range ids {
					out[id] = records[id]
				}
				return output.JSON(out)
			}
			if len(ids) == 0 {
				fmt.Println("No switches")
				return nil
			}
			for _, id := range ids {
				fmt.Println(output.FormatSwitchShort(id, records[id], ws.Keys.KeysFor(id)))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
	switchCmd.AddCommand(switchCreateCmd, switchUpdateCmd, switchDeleteCmd, switchShowCmd, switchListCmd)

	addRecordFlags(switchCreateCmd.Flags())
	addRecordFlags(switchUpdateCmd.Flags())
	switchListCmd.Flags().String("type", "", "Only list switches of this type")

	for _, c := range []*cobra.Command{switchCreateCmd, switchUpdateCmd, switchShowCmd, switchListCmd} {
		c.Flags().Bool("json", false, "Output as JSON")
	}
}
