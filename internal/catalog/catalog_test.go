package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/keytester/internal/config"
	"github.com/marcus/keytester/internal/jsonstore"
	"github.com/marcus/keytester/internal/models"
)

type dirImages string

func (d dirImages) ImageDir() string { return string(d) }

func openTemp(t *testing.T) (*Repository, string) {
	t.Helper()
	base := t.TempDir()
	imageDir := filepath.Join(base, config.ImageDirName)
	require.NoError(t, os.MkdirAll(imageDir, 0755))
	r, err := Open(filepath.Join(base, config.CatalogFile), dirImages(imageDir))
	require.NoError(t, err)
	return r, imageDir
}

func redRecord() models.SwitchRecord {
	return models.SwitchRecord{
		SwitchName:     "Cherry MX Red",
		SwitchType:     models.SwitchTypeLinear,
		TopHousing:     "Nylon",
		BottomHousing:  "Nylon",
		Stem:           "POM",
		Pin:            "3",
		PreTravel:      "2.0mm",
		TotalTravel:    "4.0mm",
		OperationForce: "45g",
		BottomOutForce: "75g",
		Spring:         "Standard",
		FactoryLubed:   "No",
		Price:          "$0.35",
		Link:           "https://example.com/red",
	}
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	r, _ := openTemp(t)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.IDs())
}

func TestCreateDuplicateKeepsOriginal(t *testing.T) {
	r, _ := openTemp(t)
	rec := redRecord()
	require.NoError(t, r.Create("Cherry MX Red", rec))

	rec2 := models.BlankRecord()
	rec2.SwitchName = "impostor"
	err := r.Create("Cherry MX Red", rec2)
	assert.ErrorIs(t, err, ErrDuplicateID)

	got, ok := r.Record("Cherry MX Red")
	require.True(t, ok)
	assert.Equal(t, rec, got)

	reloaded, err := Open(r.Path(), dirImages(""))
	require.NoError(t, err)
	got, _ = reloaded.Record("Cherry MX Red")
	assert.Equal(t, rec, got)
}

func TestCreateValidation(t *testing.T) {
	r, _ := openTemp(t)
	assert.ErrorIs(t, r.Create("", models.BlankRecord()), ErrEmptyID)

	bad := models.BlankRecord()
	bad.SwitchType = "Mushy"
	assert.ErrorIs(t, r.Create("X", bad), ErrInvalidSwitchType)
	assert.Zero(t, r.Len())
}

func TestCreateNormalizesEmptyType(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Create("Blank", models.SwitchRecord{}))

	got, _ := r.Record("Blank")
	assert.Equal(t, models.SwitchTypeUnset, got.SwitchType)
}

func TestUpdate(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Create("Cherry MX Red", models.BlankRecord()))

	require.NoError(t, r.Update("Cherry MX Red", redRecord()))
	got, _ := r.Record("Cherry MX Red")
	assert.Equal(t, redRecord(), got)

	err := r.Update("Nope", redRecord())
	assert.ErrorIs(t, err, ErrNotFound)
	_, ok := r.Record("Nope")
	assert.False(t, ok, "update must not create")
}

func TestUpdateReplacesWholesale(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Create("Cherry MX Red", redRecord()))

	replacement := models.BlankRecord()
	replacement.Price = "$0.40"
	require.NoError(t, r.Update("Cherry MX Red", replacement))

	got, _ := r.Record("Cherry MX Red")
	assert.Equal(t, replacement, got)
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Create("Cherry MX Red", redRecord()))

	require.NoError(t, r.Delete("Gateron Brown"))
	assert.Equal(t, []string{"Cherry MX Red"}, r.IDs())
	_, ok := r.Record("Gateron Brown")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Create("Cherry MX Red", redRecord()))
	require.NoError(t, r.Delete("Cherry MX Red"))

	_, ok := r.Record("Cherry MX Red")
	assert.False(t, ok)

	reloaded, err := Open(r.Path(), dirImages(""))
	require.NoError(t, err)
	assert.Zero(t, reloaded.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Create("Cherry MX Red", redRecord()))
	require.NoError(t, r.Create("Blank", models.BlankRecord()))
	before := r.Records()

	require.NoError(t, r.Save())
	after, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.CatalogFile)
	legacy := `{
    "Gateron Yellow": {
        "image": "yellow.png",
        "switch_name": "Gateron Yellow",
        "switch_type": "",
        "operation_force": "50g",
        "link": ""
    }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	r, err := Open(path, dirImages(""))
	require.NoError(t, err)
	got, ok := r.Record("Gateron Yellow")
	require.True(t, ok)
	assert.Equal(t, models.SwitchTypeUnset, got.SwitchType)
	assert.Equal(t, "50g", got.OperationForce)
	assert.Equal(t, "", got.TopHousing)
}

func TestLoadCorrupt(t *testing.T) {
	tests := map[string]string{
		"not json":     "{{",
		"not object":   `"switches"`,
		"bad type":     `{"X": {"switch_type": "Mushy"}}`,
		"record shape": `{"X": "Linear"}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), config.CatalogFile)
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := Open(path, dirImages(""))
			assert.ErrorIs(t, err, jsonstore.ErrCorruptData)
		})
	}
}

func TestPrepareReload(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Create("Old", models.BlankRecord()))

	newBase := t.TempDir()
	commit, err := r.PrepareReload(config.PathsFor(newBase))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	commit()
	assert.Zero(t, r.Len())
	assert.Equal(t, filepath.Join(newBase, config.CatalogFile), r.Path())
}
