package models

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseEntries decodes key-value map entries from YAML or JSON.
//
// Two shapes are accepted, and document order is preserved:
//
//	# mapping
//	api_host: example.com
//	timeout: "30"
//
//	# list of entries, as returned by the management API
//	- name: api_host
//	  value: example.com
func ParseEntries(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse entries: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		entries := make([]Entry, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			k, v := root.Content[i], root.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: value for %q must be a scalar", v.Line, k.Value)
			}
			entries = append(entries, Entry{Name: k.Value, Value: v.Value})
		}
		return entries, nil

	case yaml.SequenceNode:
		var entries []Entry
		if err := root.Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to decode entry list: %w", err)
		}
		for i, e := range entries {
			if e.Name == "" {
				return nil, fmt.Errorf("entry %d: name is required", i+1)
			}
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a list of entries", root.Line)
	}
}

// ParseAssignments turns KEY=VALUE arguments into entries.
func ParseAssignments(args []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid entry %q: expected KEY=VALUE", arg)
		}
		entries = append(entries, Entry{Name: key, Value: value})
	}
	return entries, nil
}

// MarshalEntries encodes entries as an ordered YAML mapping, the format read by ParseEntries.
func MarshalEntries(entries []Entry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
