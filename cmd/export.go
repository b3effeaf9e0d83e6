package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcus/keytester/internal/export"
	"github.com/marcus/keytester/internal/output"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export key bindings and switches as one document",
	GroupID: "system",
	Example: `  keytester export --format yaml
  keytester export --format toml --output switches.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		dest, _ := cmd.Flags().GetString("output")

		if export.NormalizeFormat(format) == "" {
			return fail(false, fmt.Errorf("unsupported format %q (want %s)", format, strings.Join(export.Formats, ", ")))
		}

		return withWorkspace(false, func(ws *workspace) error {
			keys, err := ws.Keys.Load()
			if err != nil {
				return fail(false, err)
			}
			doc := export.NewDocument(keys, ws.Catalog.Records())

			if dest == "" {
				data, err := export.Encode(doc, format)
				if err != nil {
					return fail(false, err)
				}
				_, err = os.Stdout.Write(data)
				return err
			}

			if err := export.WriteFile(doc, format, dest); err != nil {
				return fail(false, err)
			}
			ws.Logger.Info("exported", "format", format, "path", dest)
			output.Success("Exported %d keys and %d switches to %s", len(doc.KeyMap), len(doc.Switches), dest)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml, toml")
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
