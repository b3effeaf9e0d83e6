// Package output provides styled terminal output helpers (success, error,
// warning, switch formatting) using lipgloss.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/keytester/internal/catalog"
	"github.com/marcus/keytester/internal/config"
	"github.com/marcus/keytester/internal/jsonstore"
	"github.com/marcus/keytester/internal/keymap"
	"github.com/marcus/keytester/internal/models"
	"github.com/marcus/keytester/internal/selection"
)

// NoInformation is shown for a key with no switch behind it
const NoInformation = "No information available."

var (
	// Styles
	titleStyle      = lipgloss.NewStyle().Bold(true)
	subtleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	keyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	switchTypeStyle = map[models.SwitchType]lipgloss.Style{
		models.SwitchTypeLinear:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.SwitchTypeTactile:       lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		models.SwitchTypeClicky:        lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		models.SwitchTypeSilentLinear:  lipgloss.NewStyle().Foreground(lipgloss.Color("168")),
		models.SwitchTypeSilentTactile: lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.SwitchTypeSilentClicky:  lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeConflict     = "conflict"
	ErrCodeStorageError = "storage_error"
)

// ErrorCode maps a domain error to its structured error code
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, selection.ErrUnknownSwitch),
		errors.Is(err, selection.ErrNothingSelected):
		return ErrCodeNotFound
	case errors.Is(err, catalog.ErrDuplicateID),
		errors.Is(err, selection.ErrSelectionLocked),
		errors.Is(err, jsonstore.ErrLocked):
		return ErrCodeConflict
	case errors.Is(err, jsonstore.ErrCorruptData),
		errors.Is(err, jsonstore.ErrIOFailure):
		return ErrCodeStorageError
	case errors.Is(err, keymap.ErrInvalidKey),
		errors.Is(err, keymap.ErrEmptySwitchID),
		errors.Is(err, catalog.ErrEmptyID),
		errors.Is(err, catalog.ErrInvalidSwitchType),
		errors.Is(err, config.ErrInvalidDirectory):
		return ErrCodeInvalidInput
	default:
		return ErrCodeInvalidInput
	}
}

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	JSONErrorWithDetails(code, message, nil)
}

// JSONErrorWithDetails outputs an error as JSON with additional context
func JSONErrorWithDetails(code, message string, details map[string]interface{}) {
	errObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		errObj["details"] = details
	}
	result := map[string]interface{}{
		"error": errObj,
	}
	data, _ := json.Marshal(result)
	fmt.Println(string(data))
}

// FormatSwitchType formats a switch type with its color
func FormatSwitchType(t models.SwitchType) string {
	t = t.Normalize()
	style, ok := switchTypeStyle[t]
	if !ok {
		return subtleStyle.Render(fmt.Sprintf("[%s]", t))
	}
	return style.Render(fmt.Sprintf("[%s]", t))
}

// FormatKey renders a key cap label, e.g. "[A]"
func FormatKey(key string) string {
	return keyStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(key)))
}

// FormatSwitchShort formats a catalog entry on one line
func FormatSwitchShort(id models.SwitchID, rec models.SwitchRecord, keys []string) string {
	var parts []string
	parts = append(parts, titleStyle.Render(id))
	parts = append(parts, FormatSwitchType(rec.SwitchType))
	if rec.OperationForce != "" {
		parts = append(parts, subtleStyle.Render(rec.OperationForce))
	}
	if len(keys) > 0 {
		parts = append(parts, subtleStyle.Render("keys: "+strings.Join(keys, " ")))
	}
	return strings.Join(parts, "  ")
}

// BindingLine formats one key binding. Dangling ids are marked.
func BindingLine(b models.Binding, exists bool) string {
	line := fmt.Sprintf("%s  %s", FormatKey(b.Key), b.SwitchID)
	if !exists {
		line += "  " + warningStyle.Render("[missing]")
	}
	return line
}

// SwitchMarkdown builds the markdown card shown for a switch. keys are the
// keys bound to it; imagePath is "" when the record has no image.
func SwitchMarkdown(id models.SwitchID, rec models.SwitchRecord, keys []string, imagePath string) string {
	var sb strings.Builder

	title := rec.SwitchName
	if title == "" {
		title = id
	}
	sb.WriteString("# " + title + "\n\n")

	sb.WriteString("**Type:** " + string(rec.SwitchType.Normalize()))
	if title != id {
		sb.WriteString("  \n**ID:** " + id)
	}
	if len(keys) > 0 {
		sb.WriteString("  \n**Keys:** `" + strings.Join(keys, "` `") + "`")
	}
	sb.WriteString("\n\n")

	sb.WriteString("| Field | Value |\n|---|---|\n")
	for _, f := range rec.TextFields() {
		if f.Name == "switch_name" || f.Name == "link" {
			continue
		}
		v := *f.Value
		if v == "" {
			v = "-"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", f.Label, escapeCell(v)))
	}

	if rec.Link != "" {
		sb.WriteString("\n[" + rec.Link + "](" + rec.Link + ")\n")
	}
	if imagePath != "" {
		sb.WriteString("\nImage: `" + imagePath + "`\n")
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nKEYS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}
