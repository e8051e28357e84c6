package store

import (
	"sort"
	"strings"
)

// TagIndex maps tag names to the number of live items carrying them.
// Entries never hold a count below one.
type TagIndex struct {
	counts map[string]int
}

// NewTagIndex returns an empty index
func NewTagIndex() *TagIndex {
	return &TagIndex{counts: make(map[string]int)}
}

// Add increments each name, creating it at 1 when absent
func (ti *TagIndex) Add(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ti.counts[name]++
	}
}

// Remove decrements each name and drops entries that reach zero. The whole
// batch is checked first; on error the index is left untouched.
func (ti *TagIndex) Remove(names ...string) error {
	pending := make(map[string]int, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		pending[name]++
		if have := ti.counts[name]; have < pending[name] {
			return &InvariantError{Tag: name, Count: have - pending[name] + 1}
		}
	}

	for name, n := range pending {
		left := ti.counts[name] - n
		if left == 0 {
			delete(ti.counts, name)
			continue
		}
		ti.counts[name] = left
	}
	return nil
}

// RemoveItems drains the tags of every given item
func (ti *TagIndex) RemoveItems(items ...Item) error {
	var names []string
	for _, item := range items {
		names = append(names, item.tagSet().names...)
	}
	return ti.Remove(names...)
}

// Len returns the number of distinct tags
func (ti *TagIndex) Len() int {
	return len(ti.counts)
}

// Count returns how many items carry name
func (ti *TagIndex) Count(name string) int {
	return ti.counts[name]
}

// Names returns the tag names in sorted order
func (ti *TagIndex) Names() []string {
	names := make([]string, 0, len(ti.counts))
	for name := range ti.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Counts returns a copy of the underlying map
func (ti *TagIndex) Counts() map[string]int {
	out := make(map[string]int, len(ti.counts))
	for k, v := range ti.counts {
		out[k] = v
	}
	return out
}

func (ti *TagIndex) clone() *TagIndex {
	return &TagIndex{counts: ti.Counts()}
}
