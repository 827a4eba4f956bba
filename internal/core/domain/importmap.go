package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/zerr"
)

// ImportMap is the synthesized import map. Env is a non-standard extension
// recording the condition set it was produced for.
type ImportMap struct {
	Env       []string                     `json:"env,omitempty"`
	Imports   map[string]string            `json:"imports,omitempty"`
	Scopes    map[string]map[string]string `json:"scopes,omitempty"`
	Integrity map[string]string            `json:"integrity,omitempty"`
}

// NewImportMap returns an empty map with allocated sections.
func NewImportMap() *ImportMap {
	return &ImportMap{
		Imports:   make(map[string]string),
		Scopes:    make(map[string]map[string]string),
		Integrity: make(map[string]string),
	}
}

// ParseImportMap decodes an import map document.
func ParseImportMap(data []byte) (*ImportMap, error) {
	m := NewImportMap()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, zerr.Wrap(fmt.Errorf("%w: %w", ErrInvalidImportMap, err), "failed to decode import map")
	}
	if m.Imports == nil {
		m.Imports = make(map[string]string)
	}
	if m.Scopes == nil {
		m.Scopes = make(map[string]map[string]string)
	}
	if m.Integrity == nil {
		m.Integrity = make(map[string]string)
	}
	return m, nil
}

// Marshal renders the map as indented JSON with a trailing newline. Keys
// are sorted, so the output is stable for equal maps.
func (m *ImportMap) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ScopeURLs returns the scope keys in sorted order.
func (m *ImportMap) ScopeURLs() []string {
	return slices.Sorted(maps.Keys(m.Scopes))
}

// URLs returns every distinct target URL in the map, sorted.
func (m *ImportMap) URLs() []string {
	seen := make(map[string]struct{})
	for _, u := range m.Imports {
		seen[u] = struct{}{}
	}
	for _, scope := range m.Scopes {
		for _, u := range scope {
			seen[u] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
