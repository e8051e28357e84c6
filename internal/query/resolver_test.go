package query

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dori/dayplan/internal/store"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeParser understands ISO dates only
type fakeParser struct{}

func (fakeParser) Parse(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.Add(23 * time.Hour), true
}

// countingSource records every access to the item lists
type countingSource struct {
	Source
	calls int
}

func (c *countingSource) Tasks() []*store.Task {
	c.calls++
	return c.Source.Tasks()
}

func (c *countingSource) Events() []*store.Event {
	c.calls++
	return c.Source.Events()
}

type recordingRenderer struct {
	index    []string
	selected []string
	tasks    int
	events   int
}

func (r *recordingRenderer) RenderIndex(_ Source, message string) {
	r.index = append(r.index, message)
}

func (r *recordingRenderer) RenderSelected(_ Source, message string, tasks []*store.Task, events []*store.Event) {
	r.selected = append(r.selected, message)
	r.tasks = len(tasks)
	r.events = len(events)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func fixture(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(nil, store.WithClock(func() time.Time { return testNow }))

	milk := s.CreateTask()
	milk.SetName("Buy milk")
	milk.SetDueDate(ptr(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	bread := s.CreateTask()
	bread.SetName("Buy bread")
	bread.SetCompleted(true)
	if err := s.AddTags(bread, "shopping"); err != nil {
		t.Fatalf("AddTags: %v", err)
	}

	party := s.CreateEvent()
	party.SetName("New year party")
	if err := party.SetRange(
		ptr(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)),
		ptr(time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)),
	); err != nil {
		t.Fatalf("SetRange: %v", err)
	}

	market := s.CreateEvent()
	market.SetName("Farmers market")
	if err := market.SetRange(
		ptr(time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC)),
		ptr(time.Date(2024, 6, 8, 13, 0, 0, 0, time.UTC)),
	); err != nil {
		t.Fatalf("SetRange: %v", err)
	}
	if err := s.AddTags(market, "shopping"); err != nil {
		t.Fatalf("AddTags: %v", err)
	}
	return s
}

func newTestResolver() *Resolver {
	return &Resolver{Parser: fakeParser{}, Now: func() time.Time { return testNow }}
}

func itemNames(res *Result) []string {
	var out []string
	for _, t := range res.Tasks {
		out = append(out, t.Name())
	}
	for _, e := range res.Events {
		out = append(out, e.Name())
	}
	return out
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"find", ErrNoKeyword},
		{"find tag", ErrNoKeyword},
		{"find buy task over", ErrItemTypeConflict},
		{"find buy event complete", ErrItemTypeConflict},
		{"find buy on 2024-03-01 from 2024-01-01", ErrDateConflict},
		{"find buy from 2024-01-01 over", ErrDateConflict},
		{"find buy on someday", ErrUnparseableDate},
		{"find buy from 2024-01-01 to whenever", ErrUnparseableDate},
	}

	r := newTestResolver()
	for _, tt := range tests {
		_, err := r.Resolve(Tokenize(tt.input))
		if !errors.Is(err, tt.want) {
			t.Errorf("Resolve(%q) error = %v, want %v", tt.input, err, tt.want)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Syntax == "" || verr.Message == "" {
			t.Errorf("Resolve(%q) error %#v lacks syntax or message", tt.input, err)
		}
	}
}

func TestItemTypeConflictBeforeStoreAccess(t *testing.T) {
	src := &countingSource{Source: fixture(t)}
	out := &recordingRenderer{}

	_, err := newTestResolver().Find("find buy task over", src, out)
	if !errors.Is(err, ErrItemTypeConflict) {
		t.Fatalf("expected item type conflict, got %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("store accessed %d times before validation failed", src.calls)
	}
	if len(out.index)+len(out.selected) != 0 {
		t.Fatal("renderer called on a rejected query")
	}
}

func TestFindUnionsNamesAndTags(t *testing.T) {
	s := fixture(t)
	r := newTestResolver()

	res, err := r.Run(Tokenize("find shopping"), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"Buy bread", "Farmers market"}; !reflect.DeepEqual(itemNames(res), want) {
		t.Fatalf("got %v, want %v", itemNames(res), want)
	}
	if res.Message != "A total of 1 task and 1 event found!" {
		t.Fatalf("unexpected message %q", res.Message)
	}

	res, err = r.Run(Tokenize("find buy"), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"Buy milk", "Buy bread"}; !reflect.DeepEqual(itemNames(res), want) {
		t.Fatalf("got %v, want %v", itemNames(res), want)
	}
	if res.Message != "A total of 2 tasks found!" {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestTagOnlyQueryIgnoresNames(t *testing.T) {
	res, err := newTestResolver().Run(Tokenize("find tag shopping"), fixture(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"Buy bread", "Farmers market"}; !reflect.DeepEqual(itemNames(res), want) {
		t.Fatalf("got %v, want %v", itemNames(res), want)
	}
}

func TestItemTypeAndStatus(t *testing.T) {
	s := fixture(t)
	r := newTestResolver()

	tests := []struct {
		input string
		want  []string
	}{
		{"find buy task complete", []string{"Buy bread"}},
		{"find buy tasks incomplete", []string{"Buy milk"}},
		{"find shopping task", []string{"Buy bread"}},
		{"find shopping event", []string{"Farmers market"}},
		{"find new event over", []string{"New year party"}},
		{"find new event ongoing", nil},
		{"find farmers events current", []string{"Farmers market"}},
	}
	for _, tt := range tests {
		res, err := r.Run(Tokenize(tt.input), s)
		if err != nil {
			t.Fatalf("Run(%q): %v", tt.input, err)
		}
		if got := itemNames(res); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Run(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDateFilters(t *testing.T) {
	s := fixture(t)
	r := newTestResolver()

	tests := []struct {
		input string
		want  []string
	}{
		{"find buy on 2024-03-01", []string{"Buy milk"}},
		{"find buy from 2024-03-01 to 2024-03-01", []string{"Buy milk"}},
		{"find new from 2024-01-02", []string{"New year party"}},
		{"find new before 2023-12-31", nil},
		{"find shopping from 2024-06-01", []string{"Farmers market"}},
	}
	for _, tt := range tests {
		res, err := r.Run(Tokenize(tt.input), s)
		if err != nil {
			t.Fatalf("Run(%q): %v", tt.input, err)
		}
		if got := itemNames(res); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Run(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFindRendersOutcome(t *testing.T) {
	s := fixture(t)
	r := newTestResolver()
	out := &recordingRenderer{}

	if _, err := r.Find("find nothing-matches", s, out); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !reflect.DeepEqual(out.index, []string{MessageNotFound}) || len(out.selected) != 0 {
		t.Fatalf("expected index render, got index=%v selected=%v", out.index, out.selected)
	}

	if _, err := r.Find("find shopping", s, out); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(out.selected) != 1 || out.tasks != 1 || out.events != 1 {
		t.Fatalf("expected one selected render with 1 task and 1 event, got %+v", out)
	}
}

func TestQuotedKeywordIsAName(t *testing.T) {
	s := store.New(nil)
	task := s.CreateTask()
	task.SetName("on call rota")

	res, err := newTestResolver().Run(Tokenize(`find "on call"`), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Tasks) != 1 {
		t.Fatalf("expected the quoted phrase to match by name, got %v", itemNames(res))
	}
}

func TestCountItems(t *testing.T) {
	tests := []struct {
		tasks, events int
		want          string
	}{
		{1, 0, "1 task"},
		{2, 0, "2 tasks"},
		{0, 1, "1 event"},
		{3, 1, "3 tasks and 1 event"},
		{1, 2, "1 task and 2 events"},
		{0, 0, "nothing"},
	}
	for _, tt := range tests {
		if got := CountItems(tt.tasks, tt.events); got != tt.want {
			t.Errorf("CountItems(%d, %d) = %q, want %q", tt.tasks, tt.events, got, tt.want)
		}
	}
}
