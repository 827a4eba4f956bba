package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// ExportsNode is one node of a package exports tree. The concrete types are
// ExportsTarget, ExportsAlternatives, ExportsConditions, ExportsNull and
// ExportsInvalid.
type ExportsNode interface {
	exportsNode()
}

// ExportsTarget is a file target such as "./lib/index.js".
type ExportsTarget string

// ExportsAlternatives is an ordered list of fallbacks; the first that
// resolves wins.
type ExportsAlternatives []ExportsNode

// ExportsConditions is a condition-keyed object, in manifest order.
type ExportsConditions []ExportsBranch

// ExportsBranch is one key of a conditional object.
type ExportsBranch struct {
	Condition ConditionTag
	Node      ExportsNode
}

// ExportsNull explicitly resolves to nothing.
type ExportsNull struct{}

// ExportsInvalid records a node of unsupported JSON type. It is kept in the
// tree so that only the subpath holding it fails to resolve.
type ExportsInvalid struct {
	Raw string
}

func (ExportsTarget) exportsNode()       {}
func (ExportsAlternatives) exportsNode() {}
func (ExportsConditions) exportsNode()   {}
func (ExportsNull) exportsNode()         {}
func (ExportsInvalid) exportsNode()      {}

// Branch is a convenience constructor for ExportsBranch.
func Branch(condition string, node ExportsNode) ExportsBranch {
	return ExportsBranch{Condition: NewConditionTag(condition), Node: node}
}

// ExportsEntry maps one subpath pattern (".", "./feature", "./lib/*") to a node.
type ExportsEntry struct {
	Subpath string
	Node    ExportsNode
}

// ExportsMap is the normalized subpath form of a package "exports" field.
type ExportsMap struct {
	entries []ExportsEntry
	index   map[string]int
}

// NewExportsMap builds a map from entries. A repeated subpath replaces the
// earlier node but keeps its position.
func NewExportsMap(entries ...ExportsEntry) ExportsMap {
	m := ExportsMap{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if i, ok := m.index[e.Subpath]; ok {
			m.entries[i].Node = e.Node
			continue
		}
		m.index[e.Subpath] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m
}

// Entries returns the subpath entries in manifest order.
func (m ExportsMap) Entries() []ExportsEntry {
	return m.entries
}

// Subpaths returns the subpath patterns in manifest order.
func (m ExportsMap) Subpaths() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Subpath
	}
	return out
}

// Lookup returns the node declared for an exact subpath pattern.
func (m ExportsMap) Lookup(subpath string) (ExportsNode, bool) {
	i, ok := m.index[subpath]
	if !ok {
		return nil, false
	}
	return m.entries[i].Node, true
}

// Len returns the number of subpath entries.
func (m ExportsMap) Len() int {
	return len(m.entries)
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order.
func (m *ExportsMap) UnmarshalJSON(data []byte) error {
	parsed, err := ParseExportsMap(data)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseExportsMap decodes an "exports" field. A string, array, null or
// condition object is sugar for the "." subpath; an object whose keys all
// start with "." is a subpath map. Mixing both key kinds is an error.
func ParseExportsMap(data []byte) (ExportsMap, error) {
	node, err := ParseExportsNode(data)
	if err != nil {
		return ExportsMap{}, err
	}

	conditions, ok := node.(ExportsConditions)
	if !ok {
		return NewExportsMap(ExportsEntry{Subpath: ".", Node: node}), nil
	}

	subpathKeys := 0
	for _, b := range conditions {
		if strings.HasPrefix(b.Condition.String(), ".") {
			subpathKeys++
		}
	}

	switch subpathKeys {
	case len(conditions):
		entries := make([]ExportsEntry, len(conditions))
		for i, b := range conditions {
			entries[i] = ExportsEntry{Subpath: b.Condition.String(), Node: b.Node}
		}
		return NewExportsMap(entries...), nil
	case 0:
		return NewExportsMap(ExportsEntry{Subpath: ".", Node: node}), nil
	default:
		return ExportsMap{}, zerr.Wrap(ErrInvalidExports, "exports mixes subpath keys and condition keys")
	}
}

// ParseExportsNode decodes a single exports node, keeping object key order.
func ParseExportsNode(data []byte) (ExportsNode, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeExportsNode(dec)
	if err != nil {
		return nil, zerr.Wrap(fmt.Errorf("%w: %w", ErrInvalidExports, err), "failed to decode exports")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(ErrInvalidExports, "unexpected data after exports value")
	}
	return node, nil
}

func decodeExportsNode(dec *json.Decoder) (ExportsNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case string:
		return ExportsTarget(v), nil
	case nil:
		return ExportsNull{}, nil
	case json.Number:
		return ExportsInvalid{Raw: v.String()}, nil
	case bool:
		return ExportsInvalid{Raw: strconv.FormatBool(v)}, nil
	case json.Delim:
		switch v {
		case '[':
			alternatives := ExportsAlternatives{}
			for dec.More() {
				child, err := decodeExportsNode(dec)
				if err != nil {
					return nil, err
				}
				alternatives = append(alternatives, child)
			}
			_, err := dec.Token()
			return alternatives, err
		case '{':
			conditions := ExportsConditions{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				child, err := decodeExportsNode(dec)
				if err != nil {
					return nil, err
				}
				conditions = append(conditions, Branch(key, child))
			}
			_, err := dec.Token()
			return conditions, err
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
