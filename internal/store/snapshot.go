package store

import "time"

// TaskRecord is the serialized form of a Task
type TaskRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Tags      []string   `json:"tags,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Completed bool       `json:"completed"`
	Source    string     `json:"source,omitempty"`
}

// EventRecord is the serialized form of an Event
type EventRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Tags      []string   `json:"tags,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// Snapshot is a full copy of the store contents, as committed to Storage.
// The tag index is not part of it; it is rebuilt from the items.
type Snapshot struct {
	Tasks  []TaskRecord  `json:"tasks"`
	Events []EventRecord `json:"events"`
}

func (st *state) snapshot() *Snapshot {
	snap := &Snapshot{
		Tasks:  make([]TaskRecord, 0, len(st.tasks)),
		Events: make([]EventRecord, 0, len(st.events)),
	}
	for _, t := range st.tasks {
		snap.Tasks = append(snap.Tasks, TaskRecord{
			ID:        t.id,
			Name:      t.name,
			Tags:      t.tags.list(),
			DueDate:   copyTime(t.due),
			Completed: t.completed,
			Source:    t.source,
		})
	}
	for _, e := range st.events {
		snap.Events = append(snap.Events, EventRecord{
			ID:        e.id,
			Name:      e.name,
			Tags:      e.tags.list(),
			StartDate: copyTime(e.start),
			EndDate:   copyTime(e.end),
			Source:    e.source,
		})
	}
	return snap
}

// restoreState builds a fresh state from a snapshot, recomputing the tag index
func restoreState(snap *Snapshot) *state {
	st := newState()
	if snap == nil {
		return st
	}
	for _, rec := range snap.Tasks {
		t := &Task{
			id:        rec.ID,
			name:      rec.Name,
			due:       copyTime(rec.DueDate),
			completed: rec.Completed,
			source:    rec.Source,
		}
		st.index.Add(t.tags.add(normalizeTags(rec.Tags)...)...)
		st.insertTask(t)
	}
	for _, rec := range snap.Events {
		e := &Event{
			id:     rec.ID,
			name:   rec.Name,
			start:  copyTime(rec.StartDate),
			end:    copyTime(rec.EndDate),
			source: rec.Source,
		}
		st.index.Add(e.tags.add(normalizeTags(rec.Tags)...)...)
		st.insertEvent(e)
	}
	return st
}
