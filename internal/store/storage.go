package store

import "errors"

// Storage is the durable commit log behind a Store. Every Save appends a
// commit of the full snapshot; Undo and Redo move a cursor across commits.
// The first Save is preceded by an empty commit so that it can be undone.
type Storage interface {
	// Save commits snap as the newest state and discards any redo history.
	Save(snap *Snapshot) error

	// Load returns the snapshot at the current cursor, or an empty
	// snapshot when nothing was ever saved.
	Load() (*Snapshot, error)

	// Undo steps the cursor back one commit. Returns ErrNothingToUndo at
	// the oldest commit.
	Undo() (*Snapshot, error)

	// Redo steps the cursor forward one commit. Returns ErrNothingToRedo
	// at the newest commit.
	Redo() (*Snapshot, error)

	// Move relocates the backing file.
	Move(path string) error

	UndoSize() int
	RedoSize() int
}

// LabeledStorage is a Storage that can record which operation produced a
// commit. The store uses SaveOp instead of Save when available.
type LabeledStorage interface {
	Storage
	SaveOp(op string, snap *Snapshot) error
}

// MemoryStorage keeps commits in process memory. Useful for tests and for
// running without a data directory.
type MemoryStorage struct {
	commits []*Snapshot
	head    int

	// FailSave makes the next Save calls fail with the given error
	FailSave error
}

// NewMemoryStorage returns an empty in-memory commit log
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{head: -1}
}

func (m *MemoryStorage) Save(snap *Snapshot) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	if m.head < 0 {
		m.commits = []*Snapshot{{}}
		m.head = 0
	}
	m.commits = append(m.commits[:m.head+1], cloneSnapshot(snap))
	m.head = len(m.commits) - 1
	return nil
}

func (m *MemoryStorage) Load() (*Snapshot, error) {
	if m.head < 0 {
		return &Snapshot{}, nil
	}
	return cloneSnapshot(m.commits[m.head]), nil
}

func (m *MemoryStorage) Undo() (*Snapshot, error) {
	if m.head <= 0 {
		return nil, ErrNothingToUndo
	}
	m.head--
	return cloneSnapshot(m.commits[m.head]), nil
}

func (m *MemoryStorage) Redo() (*Snapshot, error) {
	if m.head >= len(m.commits)-1 {
		return nil, ErrNothingToRedo
	}
	m.head++
	return cloneSnapshot(m.commits[m.head]), nil
}

func (m *MemoryStorage) Move(path string) error {
	return errors.New("memory storage has no backing file")
}

func (m *MemoryStorage) UndoSize() int {
	if m.head < 0 {
		return 0
	}
	return m.head
}

func (m *MemoryStorage) RedoSize() int {
	return len(m.commits) - 1 - m.head
}

func cloneSnapshot(snap *Snapshot) *Snapshot {
	if snap == nil {
		return &Snapshot{}
	}
	out := &Snapshot{
		Tasks:  make([]TaskRecord, len(snap.Tasks)),
		Events: make([]EventRecord, len(snap.Events)),
	}
	for i, t := range snap.Tasks {
		t.Tags = append([]string(nil), t.Tags...)
		t.DueDate = copyTime(t.DueDate)
		out.Tasks[i] = t
	}
	for i, e := range snap.Events {
		e.Tags = append([]string(nil), e.Tags...)
		e.StartDate = copyTime(e.StartDate)
		e.EndDate = copyTime(e.EndDate)
		out.Events[i] = e
	}
	return out
}
