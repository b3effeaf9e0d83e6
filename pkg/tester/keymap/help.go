package keymap

import (
	"fmt"
	"strings"
)

// helpSections lists contexts in the order they appear in help text
var helpSections = []struct {
	title   string
	context Context
}{
	{"TESTER", ContextMain},
	{"FORMS", ContextForm},
	{"GLOBAL", ContextGlobal},
}

// GenerateHelp generates help text from the registry bindings. Keys bound
// to the same command in a context are joined on one line.
func (r *Registry) GenerateHelp() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("KEYTESTER - Key Bindings\n")
	sb.WriteString("\nPress any of 1-0 - = q-p [ ] \\ a-l ; ' z-m , . / to look up its switch.\n")

	for _, sec := range helpSections {
		var order []Command
		keys := map[Command][]string{}
		desc := map[Command]string{}
		for _, b := range r.bindings[sec.context] {
			if _, seen := keys[b.Command]; !seen {
				order = append(order, b.Command)
				desc[b.Command] = b.Description
			}
			keys[b.Command] = append(keys[b.Command], FormatKey(b.Key))
		}
		if len(order) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", sec.title))
		for _, cmd := range order {
			sb.WriteString(fmt.Sprintf("  %-20s %s\n", strings.Join(keys[cmd], " / "), desc[cmd]))
		}
	}
	return sb.String()
}

// FormatKey formats a key for display, e.g. "ctrl+e" -> "Ctrl+E"
func FormatKey(key string) string {
	switch key {
	case "esc":
		return "Esc"
	case "enter":
		return "Enter"
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "pgup":
		return "PgUp"
	case "pgdown":
		return "PgDn"
	}
	if rest, ok := strings.CutPrefix(key, "ctrl+"); ok {
		return "Ctrl+" + strings.ToUpper(rest)
	}
	return key
}

// ShortHelp returns a one-line hint for the footer of a context
func (r *Registry) ShortHelp(context Context) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var parts []string
	seen := map[Command]bool{}
	for _, b := range r.bindings[context] {
		if seen[b.Command] || b.Key == "down" || b.Key == "up" || b.Key == "pgup" || b.Key == "pgdown" {
			continue
		}
		seen[b.Command] = true
		parts = append(parts, fmt.Sprintf("%s %s", FormatKey(b.Key), strings.ToLower(b.Description)))
	}
	return strings.Join(parts, " · ")
}
