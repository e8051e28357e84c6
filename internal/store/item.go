package store

// Kind identifies which variant of calendar item a value is
type Kind string

const (
	KindTask  Kind = "task"
	KindEvent Kind = "event"
)

// Item is the capability set shared by tasks and events
type Item interface {
	ID() string
	Name() string
	Tags() []string
	Kind() Kind

	// HasStatus reports whether the item carries a status (completion for
	// tasks, over/current for events).
	HasStatus() bool
	// HasDateRange reports whether the item spans a start and an end.
	HasDateRange() bool

	tagSet() *tagList
}

// tagList is an ordered set of tag names. It is only reachable through the
// store, which keeps it in step with the TagIndex.
type tagList struct {
	names []string
}

func (l *tagList) list() []string {
	if len(l.names) == 0 {
		return []string{}
	}
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

func (l *tagList) has(name string) bool {
	for _, n := range l.names {
		if n == name {
			return true
		}
	}
	return false
}

// add appends names not already present and returns the ones actually added
func (l *tagList) add(names ...string) []string {
	var added []string
	for _, name := range names {
		if name == "" || l.has(name) {
			continue
		}
		l.names = append(l.names, name)
		added = append(added, name)
	}
	return added
}

func (l *tagList) remove(name string) {
	for i, n := range l.names {
		if n == name {
			l.names = append(l.names[:i:i], l.names[i+1:]...)
			return
		}
	}
}

func (l *tagList) clear() []string {
	removed := l.names
	l.names = nil
	return removed
}
