package tester

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcus/keytester/internal/catalog"
	"github.com/marcus/keytester/internal/models"
)

var (
	errIDRequired   = errors.New("switch id is required")
	errIDTaken      = errors.New("a switch with this id already exists")
	errNotDirectory = errors.New("not an existing directory")
)

// noBinding is the binding picker option that removes the key's binding
const noBinding = "\x00unbind"

// DialogKind identifies which form is open
type DialogKind int

const (
	DialogEditSwitch    DialogKind = iota // edit the fields of a switch
	DialogNewSwitchID                     // ask for the id of a new switch
	DialogPickSwitch                      // choose which switch to edit
	DialogBinding                         // rebind the current key
	DialogConfirmDelete                   // confirm deleting a switch
	DialogBaseDir                         // change the base directory
)

// Dialog holds a huh form and the values bound to it
type Dialog struct {
	Kind DialogKind
	Form *huh.Form

	SwitchID  string
	Record    models.SwitchRecord
	ImagePath string
	Confirm   bool
	Path      string

	// Set on DialogEditSwitch when the record was just created and has
	// not been saved yet.
	Pending bool
}

// groupFields splits a record's text fields into the form's pages
var groupFields = [][]string{
	{"switch_name"},
	{"top_housing", "bottom_housing", "stem", "pin", "spring", "factory_lubed"},
	{"pre_travel", "total_travel", "operation_force", "bottom_out_force", "price", "link"},
}

// NewEditSwitchDialog builds the switch editing form for rec.
// openDir is where the image picker starts.
func NewEditSwitchDialog(id models.SwitchID, rec models.SwitchRecord, openDir string, pending bool) *Dialog {
	d := &Dialog{
		Kind:     DialogEditSwitch,
		SwitchID: id,
		Record:   rec,
		Pending:  pending,
	}
	d.Record.SwitchType = d.Record.SwitchType.Normalize()

	byName := map[string]models.Field{}
	for _, f := range d.Record.TextFields() {
		byName[f.Name] = f
	}
	inputs := func(names []string) []huh.Field {
		var out []huh.Field
		for _, n := range names {
			f := byName[n]
			out = append(out, huh.NewInput().Title(f.Label).Value(f.Value))
		}
		return out
	}

	imageDesc := "No image"
	if rec.Image != "" {
		imageDesc = "Current: " + rec.Image
	}

	title := "Edit Switch: " + id
	if pending {
		title = "New Switch: " + id
	}

	first := append(inputs(groupFields[0]),
		huh.NewSelect[models.SwitchType]().
			Title("Switch Type").
			Options(huh.NewOptions(models.SwitchTypes...)...).
			Value(&d.Record.SwitchType),
		huh.NewFilePicker().
			Title("Image").
			Description(imageDesc).
			CurrentDirectory(openDir).
			AllowedTypes(catalog.ImageExtensions).
			Value(&d.ImagePath),
	)

	d.Form = huh.NewForm(
		huh.NewGroup(first...).Title(title),
		huh.NewGroup(inputs(groupFields[1])...).Title("Build"),
		huh.NewGroup(inputs(groupFields[2])...).Title("Feel & Purchase"),
	)
	d.Form.WithTheme(huh.ThemeDracula())
	return d
}

// NewSwitchIDDialog prompts for the id of a new switch. exists reports
// whether an id is already taken.
func NewSwitchIDDialog(exists func(string) bool) *Dialog {
	d := &Dialog{Kind: DialogNewSwitchID}
	d.Form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("New Switch").
			Description("Name the switch model, e.g. Cherry MX Red").
			Value(&d.SwitchID).
			Validate(func(s string) error {
				s = strings.TrimSpace(s)
				if s == "" {
					return errIDRequired
				}
				if exists(s) {
					return errIDTaken
				}
				return nil
			}),
	))
	d.Form.WithTheme(huh.ThemeDracula())
	return d
}

// NewPickSwitchDialog asks which switch to edit
func NewPickSwitchDialog(ids []models.SwitchID, current models.SwitchID) *Dialog {
	d := &Dialog{Kind: DialogPickSwitch, SwitchID: current}
	d.Form = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Edit Switch").
			Options(huh.NewOptions(ids...)...).
			Value(&d.SwitchID),
	))
	d.Form.WithTheme(huh.ThemeDracula())
	return d
}

// NewBindingDialog rebinds key to one of ids, or removes its binding
func NewBindingDialog(key string, ids []models.SwitchID, current models.SwitchID) *Dialog {
	d := &Dialog{Kind: DialogBinding, SwitchID: current}
	if d.SwitchID == "" {
		d.SwitchID = noBinding
	}

	opts := []huh.Option[string]{huh.NewOption("(no switch)", noBinding)}
	opts = append(opts, huh.NewOptions(ids...)...)

	d.Form = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Bind key " + strings.ToUpper(key)).
			Options(opts...).
			Value(&d.SwitchID),
	))
	d.Form.WithTheme(huh.ThemeDracula())
	return d
}

// NewConfirmDeleteDialog asks before deleting id
func NewConfirmDeleteDialog(id models.SwitchID, boundKeys []string) *Dialog {
	d := &Dialog{Kind: DialogConfirmDelete, SwitchID: id}
	desc := "This cannot be undone."
	if len(boundKeys) > 0 {
		desc = "Keys " + strings.Join(boundKeys, " ") + " will keep pointing at the missing switch."
	}
	d.Form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Delete " + id + "?").
			Description(desc).
			Affirmative("Delete").
			Negative("Keep").
			Value(&d.Confirm),
	))
	d.Form.WithTheme(huh.ThemeDracula())
	return d
}

// NewBaseDirDialog prompts for a new base directory
func NewBaseDirDialog(current string) *Dialog {
	d := &Dialog{Kind: DialogBaseDir, Path: current}
	d.Form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Base Directory").
			Description("Folder holding key_map.json, switch_info.json and images/").
			Value(&d.Path).
			Validate(func(s string) error {
				info, err := os.Stat(strings.TrimSpace(s))
				if err != nil || !info.IsDir() {
					return errNotDirectory
				}
				return nil
			}),
	))
	d.Form.WithTheme(huh.ThemeDracula())
	return d
}

// BindingChoice returns the picked switch id, or "" to unbind
func (d *Dialog) BindingChoice() models.SwitchID {
	if d.SwitchID == noBinding {
		return ""
	}
	return d.SwitchID
}
