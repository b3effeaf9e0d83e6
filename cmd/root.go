package cmd

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/marcus/keytester/internal/catalog"
	"github.com/marcus/keytester/internal/config"
	"github.com/marcus/keytester/internal/keymap"
	applog "github.com/marcus/keytester/internal/log"
	"github.com/marcus/keytester/internal/output"
	"github.com/marcus/keytester/internal/settings"
	"github.com/spf13/cobra"
)

var (
	versionStr string
	logLevel   string
	logFile    string
)

// SetVersion sets the version string
func SetVersion(v string) {
	versionStr = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "keytester",
	Short: "Press a key, see its mechanical switch",
	Long: `keytester - look up and edit the mechanical switch behind each key.

Run without a command to open the interactive tester. Switch metadata lives in
key_map.json and switch_info.json under the base directory, with pictures in
its images/ folder.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTester()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)

	// Custom usage template that shows aliases inline
	usageTemplate := `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Additional Commands:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

	// Need to add the 'add' function for padding calculation
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })

	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Key Commands:"},
		&cobra.Group{ID: "catalog", Title: "Switch Catalog:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
}

// workspace bundles the stores every command works against
type workspace struct {
	Settings *settings.Settings
	Config   *config.Store
	Keys     *keymap.Repository
	Catalog  *catalog.Repository
	Logger   *slog.Logger

	closers []io.Closer
}

// openWorkspace loads settings and both data files. console receives log
// output; pass nil to log only to --log-file.
func openWorkspace(console io.Writer) (*workspace, error) {
	logger, closers, err := applog.SetupLogger(logLevel, logFile, console)
	if err != nil {
		return nil, err
	}
	ws := &workspace{Logger: logger, closers: closers}

	ws.Settings, err = settings.Load()
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.Config, err = config.New(ws.Settings, logger)
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.Keys, err = keymap.Open(ws.Config.KeyMapPath())
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.Catalog, err = catalog.Open(ws.Config.CatalogPath(), ws.Config)
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.Config.Attach(ws.Keys, ws.Catalog)

	logger.Debug("workspace opened",
		"base_dir", ws.Config.BaseDir(),
		"keys", len(ws.Keys.Bindings()),
		"switches", ws.Catalog.Len())
	return ws, nil
}

// Close releases log files
func (ws *workspace) Close() {
	for _, c := range ws.closers {
		c.Close()
	}
}

// withWorkspace opens the workspace for a CLI command, reporting failures
func withWorkspace(jsonOut bool, fn func(ws *workspace) error) error {
	ws, err := openWorkspace(os.Stderr)
	if err != nil {
		return fail(jsonOut, err)
	}
	defer ws.Close()
	return fn(ws)
}

// fail prints err in the requested format and returns it so cobra exits non-zero
func fail(jsonOut bool, err error) error {
	if jsonOut {
		output.JSONError(output.ErrorCode(err), err.Error())
	} else {
		output.Error("%v", err)
	}
	return err
}
