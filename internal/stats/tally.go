package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Entry is one key and its count.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// Tally counts occurrences per key and remembers the order in which keys
// were first added. It encodes as a JSON or YAML object in that order.
// The zero value is empty and ready to use.
type Tally struct {
	keys   []string
	counts map[string]int
}

// Inc adds one to key.
func (t *Tally) Inc(key string) {
	t.Add(key, 1)
}

// Add adds n to key.
func (t *Tally) Add(key string, n int) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key] += n
}

// Get returns the count for key, or 0.
func (t Tally) Get(key string) int {
	return t.counts[key]
}

// Len returns the number of distinct keys.
func (t Tally) Len() int {
	return len(t.keys)
}

// Total returns the sum of all counts.
func (t Tally) Total() int {
	total := 0
	for _, k := range t.keys {
		total += t.counts[k]
	}
	return total
}

// Keys returns the keys in first-added order.
func (t Tally) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Entries returns every key with its count in first-added order.
func (t Tally) Entries() []Entry {
	out := make([]Entry, len(t.keys))
	for i, k := range t.keys {
		out[i] = Entry{Key: k, Count: t.counts[k]}
	}
	return out
}

// Top returns the n highest counts, descending. Equal counts keep
// first-added order. n < 0 returns every entry.
func (t Tally) Top(n int) []Entry {
	entries := t.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// MostCommon returns the entry with the highest count; ties go to the key
// added first. ok is false for an empty tally.
func MostCommon(t Tally) (Entry, bool) {
	top := t.Top(1)
	if len(top) == 0 {
		return Entry{}, false
	}
	return top[0], true
}

// MarshalJSON encodes the tally as an object with keys in first-added order.
func (t Tally) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(t.counts[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the document's key order.
func (t *Tally) UnmarshalJSON(data []byte) error {
	*t = Tally{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tally: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tally: expected key, got %v", tok)
		}
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("tally: value for %q: %w", key, err)
		}
		t.Add(key, n)
	}

	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the tally as a mapping with keys in first-added order.
func (t Tally) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range t.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t.counts[k])},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping, keeping the document's key order.
func (t *Tally) UnmarshalYAML(value *yaml.Node) error {
	*t = Tally{}

	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("tally: expected mapping at line %d", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		var n int
		if err := value.Content[i+1].Decode(&n); err != nil {
			return fmt.Errorf("tally: value for %q: %w", key, err)
		}
		t.Add(key, n)
	}
	return nil
}
