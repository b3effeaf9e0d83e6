package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcus/keytester/internal/config"
	"github.com/marcus/keytester/internal/output"
	"github.com/marcus/keytester/internal/settings"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show or change where data files live",
	GroupID: "system",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		return withWorkspace(jsonOut, func(ws *workspace) error {
			paths := map[string]string{
				"settings_file": ws.Settings.Path(),
				"base_dir":      ws.Config.BaseDir(),
				"key_map":       ws.Config.KeyMapPath(),
				"switch_info":   ws.Config.CatalogPath(),
				"image_dir":     ws.Config.ImageDir(),
				"open_dir":      ws.Config.OpenDir(),
			}
			if jsonOut {
				return output.JSON(paths)
			}
			fmt.Printf("Settings:   %s\n", paths["settings_file"])
			fmt.Printf("Base dir:   %s\n", paths["base_dir"])
			if os.Getenv(settings.EnvBaseDir) != "" {
				output.Warning("base dir set by %s", settings.EnvBaseDir)
			}
			fmt.Printf("Key map:    %s\n", paths["key_map"])
			fmt.Printf("Switches:   %s\n", paths["switch_info"])
			fmt.Printf("Images:     %s\n", paths["image_dir"])
			fmt.Printf("Open dir:   %s\n", paths["open_dir"])
			return nil
		})
	},
}

var configBaseDirCmd = &cobra.Command{
	Use:   "base-dir <dir>",
	Short: "Switch to another base directory",
	Long: `Point keytester at another folder holding key_map.json, switch_info.json and
images/. Both files are loaded from the new folder before the change is saved;
if either is unreadable nothing changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(false, func(ws *workspace) error {
			if err := ws.Config.ChangeBaseDir(args[0]); err != nil {
				return fail(false, err)
			}
			output.Success("Base dir: %s", ws.Config.BaseDir())
			if os.Getenv(settings.EnvBaseDir) != "" {
				output.Warning("%s is set and takes precedence over the saved base dir", settings.EnvBaseDir)
			}
			return nil
		})
	},
}

var configOpenDirCmd = &cobra.Command{
	Use:   "open-dir <dir>",
	Short: "Set the folder image pickers start in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fail(false, err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fail(false, fmt.Errorf("%w: %s", config.ErrInvalidDirectory, dir))
		}
		return withWorkspace(false, func(ws *workspace) error {
			if err := ws.Config.SetOpenDir(dir); err != nil {
				return fail(false, err)
			}
			output.Success("Open dir: %s", dir)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configBaseDirCmd, configOpenDirCmd)
	configShowCmd.Flags().Bool("json", false, "Output as JSON")
}
