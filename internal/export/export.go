// Package export serializes the key map and the switch catalog into a
// single document in JSON, YAML or TOML.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcus/keytester/internal/jsonstore"
	"github.com/marcus/keytester/internal/models"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Formats lists the supported output formats
var Formats = []string{"json", "yaml", "toml"}

// Document is the exported view of both data files. Field names match
// the on-disk documents.
type Document struct {
	KeyMap   map[string]models.SwitchID              `json:"key_map" yaml:"key_map" toml:"key_map"`
	Switches map[models.SwitchID]models.SwitchRecord `json:"switches" yaml:"switches" toml:"switches"`
}

// NewDocument builds a document from the two mappings. Nil maps are
// exported as empty tables.
func NewDocument(keys map[string]models.SwitchID, switches map[models.SwitchID]models.SwitchRecord) Document {
	if keys == nil {
		keys = map[string]models.SwitchID{}
	}
	if switches == nil {
		switches = map[models.SwitchID]models.SwitchRecord{}
	}
	return Document{KeyMap: keys, Switches: switches}
}

// NormalizeFormat returns the canonical format name, or "" if unsupported.
func NormalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// Encode renders doc in the given format.
func Encode(doc Document, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch NormalizeFormat(format) {
	case "json":
		data, err = json.MarshalIndent(doc, "", jsonstore.Indent)
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(doc)
	case "toml":
		data, err = toml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return data, nil
}

// WriteFile encodes doc and writes it atomically to dest.
func WriteFile(doc Document, format, dest string) error {
	data, err := Encode(doc, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %v", jsonstore.ErrIOFailure, err)
	}
	return jsonstore.WriteFileAtomic(dest, data)
}

// DefaultFileName is the file name used when no output path is given
func DefaultFileName(format string) string {
	return "keytester-export." + NormalizeFormat(format)
}
