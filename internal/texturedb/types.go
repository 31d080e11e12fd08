// Package texturedb stores rendered texture variants in a single SQLite file.
//
// The layout mirrors MBTiles: a metadata table of name/value pairs and a data
// table keyed by (texture, variant) holding encoded image bytes.
package texturedb

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a texture variant is not in the database.
var ErrNotFound = errors.New("variant not found")

// Metadata describes the variant set stored in a database.
type Metadata struct {
	Name        string   // Human-readable set name
	Description string   // Free-form description
	Format      string   // Encoded image type (png)
	Base        string   // Base color as hex
	Variants    []string // Variant names in the set
	Version     string
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Base != "" {
		result["base"] = m.Base
	}
	if len(m.Variants) > 0 {
		result["variants"] = strings.Join(m.Variants, ",")
	}
	if m.Version != "" {
		result["version"] = m.Version
	}

	return result
}

// metadataFromMap is the inverse of ToMap.
func metadataFromMap(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Description: values["description"],
		Format:      values["format"],
		Base:        values["base"],
		Version:     values["version"],
	}
	if v := values["variants"]; v != "" {
		meta.Variants = strings.Split(v, ",")
	}
	return meta
}

// Entry is a single encoded texture variant.
type Entry struct {
	Texture string
	Variant string
	Data    []byte
}
