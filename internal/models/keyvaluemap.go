package models

// Entry is a single key/value pair in a key-value map
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// KeyValueMap represents a named key-value map ("config set") in an environment
type KeyValueMap struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entry"`
}

// KeyValueMapList is the envelope returned when listing maps with expand=true
type KeyValueMapList struct {
	KeyValueMaps []KeyValueMap `json:"keyValueMap"`
}

// Get returns the value stored under key.
func (m *KeyValueMap) Get(key string) (string, bool) {
	for _, e := range m.Entries {
		if e.Name == key {
			return e.Value, true
		}
	}
	return "", false
}

// Merge overlays entries on top of the map and returns the result along with the
// keys that were added and the keys whose values changed. Existing entry order is
// kept; new keys are appended in the order first given. When a key is given more
// than once the last value wins, and each key is reported at most once, classified
// against the map as it was. The receiver is not modified.
func (m *KeyValueMap) Merge(entries []Entry) (merged KeyValueMap, added, changed []string) {
	merged = KeyValueMap{
		Name:    m.Name,
		Entries: make([]Entry, len(m.Entries), len(m.Entries)+len(entries)),
	}
	copy(merged.Entries, m.Entries)

	index := make(map[string]int, len(merged.Entries))
	for i, e := range merged.Entries {
		index[e.Name] = i
	}
	existing := len(merged.Entries)

	var touched []string
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			touched = append(touched, e.Name)
		}
		i, ok := index[e.Name]
		if !ok {
			index[e.Name] = len(merged.Entries)
			merged.Entries = append(merged.Entries, e)
			continue
		}
		merged.Entries[i].Value = e.Value
	}

	for _, key := range touched {
		i := index[key]
		switch {
		case i >= existing:
			added = append(added, key)
		case merged.Entries[i].Value != m.Entries[i].Value:
			changed = append(changed, key)
		}
	}

	return merged, added, changed
}
