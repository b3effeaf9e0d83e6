package models

import (
	"sort"
	"strings"
)

// ValidKeys is the alphabet of keys that can be bound to a switch.
// Input is lowercased before being checked against it.
const ValidKeys = `1234567890-=qwertyuiop[]\asdfghjkl;'zxcvbnm,./`

// SwitchID names a switch model in the catalog (e.g. "Cherry MX Red")
type SwitchID = string

// SwitchType represents the actuation style of a switch
type SwitchType string

const (
	SwitchTypeUnset         SwitchType = "-"
	SwitchTypeLinear        SwitchType = "Linear"
	SwitchTypeTactile       SwitchType = "Tactile"
	SwitchTypeClicky        SwitchType = "Clicky"
	SwitchTypeSilentLinear  SwitchType = "Silent Linear"
	SwitchTypeSilentTactile SwitchType = "Silent Tactile"
	SwitchTypeSilentClicky  SwitchType = "Silent Clicky"
)

// SwitchTypes lists every switch type in display order, placeholder first
var SwitchTypes = []SwitchType{
	SwitchTypeUnset,
	SwitchTypeLinear,
	SwitchTypeTactile,
	SwitchTypeClicky,
	SwitchTypeSilentLinear,
	SwitchTypeSilentTactile,
	SwitchTypeSilentClicky,
}

// IsValid reports whether t is one of the known switch types.
// The empty string is accepted as the unset placeholder.
func (t SwitchType) IsValid() bool {
	if t == "" {
		return true
	}
	for _, st := range SwitchTypes {
		if t == st {
			return true
		}
	}
	return false
}

// Normalize maps the empty string to the unset placeholder
func (t SwitchType) Normalize() SwitchType {
	if t == "" {
		return SwitchTypeUnset
	}
	return t
}

// ParseSwitchType matches s case-insensitively against the known types
// and returns the canonical spelling.
func ParseSwitchType(s string) (SwitchType, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SwitchTypeUnset, true
	}
	for _, st := range SwitchTypes {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// SwitchRecord holds the attributes of one switch model.
// Numeric-looking fields are free-form strings; nothing validates them.
type SwitchRecord struct {
	Image          string     `json:"image" yaml:"image" toml:"image"`
	SwitchName     string     `json:"switch_name" yaml:"switch_name" toml:"switch_name"`
	SwitchType     SwitchType `json:"switch_type" yaml:"switch_type" toml:"switch_type"`
	TopHousing     string     `json:"top_housing" yaml:"top_housing" toml:"top_housing"`
	BottomHousing  string     `json:"bottom_housing" yaml:"bottom_housing" toml:"bottom_housing"`
	Stem           string     `json:"stem" yaml:"stem" toml:"stem"`
	Pin            string     `json:"pin" yaml:"pin" toml:"pin"`
	PreTravel      string     `json:"pre_travel" yaml:"pre_travel" toml:"pre_travel"`
	TotalTravel    string     `json:"total_travel" yaml:"total_travel" toml:"total_travel"`
	OperationForce string     `json:"operation_force" yaml:"operation_force" toml:"operation_force"`
	BottomOutForce string     `json:"bottom_out_force" yaml:"bottom_out_force" toml:"bottom_out_force"`
	Spring         string     `json:"spring" yaml:"spring" toml:"spring"`
	FactoryLubed   string     `json:"factory_lubed" yaml:"factory_lubed" toml:"factory_lubed"`
	Price          string     `json:"price" yaml:"price" toml:"price"`
	Link           string     `json:"link" yaml:"link" toml:"link"`
}

// BlankRecord returns the default record: every field empty, type unset
func BlankRecord() SwitchRecord {
	return SwitchRecord{SwitchType: SwitchTypeUnset}
}

// Field pairs a display label with a pointer to one editable record field
type Field struct {
	Name  string
	Label string
	Value *string
}

// TextFields returns the free-form string fields of r in display order.
// Image and switch type are excluded; they have dedicated editors.
func (r *SwitchRecord) TextFields() []Field {
	return []Field{
		{"switch_name", "Switch Name", &r.SwitchName},
		{"top_housing", "Top Housing", &r.TopHousing},
		{"bottom_housing", "Bottom Housing", &r.BottomHousing},
		{"stem", "Stem", &r.Stem},
		{"pin", "Pin", &r.Pin},
		{"pre_travel", "Pre Travel", &r.PreTravel},
		{"total_travel", "Total Travel", &r.TotalTravel},
		{"operation_force", "Operation Force", &r.OperationForce},
		{"bottom_out_force", "Bottom Out Force", &r.BottomOutForce},
		{"spring", "Spring", &r.Spring},
		{"factory_lubed", "Factory Lubed", &r.FactoryLubed},
		{"price", "Price", &r.Price},
		{"link", "Link", &r.Link},
	}
}

// NormalizeKey lowercases a pressed key. It does not validate.
func NormalizeKey(key string) string {
	return strings.ToLower(key)
}

// IsValidKey reports whether key is exactly one character of ValidKeys
// after lowercasing.
func IsValidKey(key string) bool {
	key = NormalizeKey(key)
	r := []rune(key)
	if len(r) != 1 {
		return false
	}
	return strings.ContainsRune(ValidKeys, r[0])
}

// Binding is one key bound to a switch id
type Binding struct {
	Key      string   `json:"key"`
	SwitchID SwitchID `json:"switch_id"`
}

// SortBindings orders bindings by their position on the keyboard alphabet
func SortBindings(b []Binding) {
	sort.Slice(b, func(i, j int) bool {
		return strings.Index(ValidKeys, b[i].Key) < strings.Index(ValidKeys, b[j].Key)
	})
}
