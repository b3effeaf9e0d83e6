package keymap

import (
	"slices"
	"strings"
)

// knownContexts and knownCommands bound what a user override may name
var knownContexts = []Context{ContextGlobal, ContextMain, ContextForm, ContextHelp, ContextDialog}

var knownCommands = []Command{
	CmdQuit, CmdToggleHelp,
	CmdRefresh, CmdEditSwitch, CmdNewSwitch, CmdChangeBinding, CmdDeleteSwitch,
	CmdUnbindKey, CmdChangeBaseDir, CmdScrollDown, CmdScrollUp,
	CmdFormSubmit, CmdFormCancel, CmdClose,
}

// ApplyOverrides registers user bindings given as "context:key" -> command.
// Entries naming an unknown context or command are skipped and returned.
func ApplyOverrides(r *Registry, bindings map[string]string) (skipped []string) {
	for binding, cmdStr := range bindings {
		ctx, key := parseBinding(binding)
		cmd := Command(cmdStr)
		if key == "" || !slices.Contains(knownContexts, ctx) || !slices.Contains(knownCommands, cmd) {
			skipped = append(skipped, binding)
			continue
		}
		r.SetUserOverride(ctx, key, cmd)
	}
	slices.Sort(skipped)
	return skipped
}

// parseBinding splits "context:key" at the first colon
func parseBinding(s string) (Context, string) {
	ctx, key, ok := strings.Cut(s, ":")
	if !ok {
		return "", ""
	}
	return Context(ctx), key
}
