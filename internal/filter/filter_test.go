package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/dori/dayplan/internal/store"
)

func day(year int, month time.Month, d, hour int) *time.Time {
	t := time.Date(year, month, d, hour, 0, 0, 0, time.UTC)
	return &t
}

func names[T store.Item](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name())
	}
	return out
}

// shoppingStore builds the two-task fixture: one dated, one floating.
func shoppingStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(nil)

	milk := s.CreateTask()
	milk.SetName("Buy milk")
	milk.SetDueDate(day(2024, 3, 1, 10))

	bread := s.CreateTask()
	bread.SetName("Buy bread")
	if err := s.AddTags(bread, "shopping"); err != nil {
		t.Fatalf("AddTags: %v", err)
	}
	return s
}

func TestTasksByNamePrefixIgnoresCase(t *testing.T) {
	s := shoppingStore(t)
	got := TasksByName(s.Tasks(), []string{"buy"})
	if want := []string{"Buy milk", "Buy bread"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}

	got = TasksByName(s.Tasks(), []string{"BUY B"})
	if want := []string{"Buy bread"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}

	if got := TasksByName(s.Tasks(), []string{"milk"}); len(got) != 0 {
		t.Fatalf("prefix match only, got %v", names(got))
	}
}

func TestTasksInRangeExcludesFloatingTasks(t *testing.T) {
	s := shoppingStore(t)
	start := day(2024, 3, 1, 0)
	end := day(2024, 3, 1, 0)

	got := TasksInRange(s.Tasks(), start, end)
	if want := []string{"Buy milk"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}

	got = TasksInRange(s.Tasks(), nil, end)
	if want := []string{"Buy milk", "Buy bread"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("open start: got %v, want %v", names(got), want)
	}
}

func TestEmptyCandidatesAreIdentity(t *testing.T) {
	s := shoppingStore(t)
	tasks := s.Tasks()
	ev := s.CreateEvent()
	ev.SetName("Standup")
	events := s.Events()

	if got := TasksByName(tasks, nil); !reflect.DeepEqual(got, tasks) {
		t.Fatal("TasksByName with no names must be identity")
	}
	if got := TasksByTag(tasks, []string{}); !reflect.DeepEqual(got, tasks) {
		t.Fatal("TasksByTag with no tags must be identity")
	}
	if got := EventsByName(events, nil); !reflect.DeepEqual(got, events) {
		t.Fatal("EventsByName with no names must be identity")
	}
	if got := EventsByTag(events, nil); !reflect.DeepEqual(got, events) {
		t.Fatal("EventsByTag with no tags must be identity")
	}
	if got := TasksByTag(nil, []string{"x"}); got != nil {
		t.Fatal("empty input must come back unchanged")
	}
}

func TestRangeWithoutBoundsIsIdentity(t *testing.T) {
	s := shoppingStore(t)
	a := s.CreateEvent()
	_ = a.SetRange(day(2024, 1, 1, 9), day(2024, 1, 2, 9))
	s.CreateEvent()
	b := s.CreateEvent()
	_ = b.SetRange(nil, day(1999, 1, 1, 0))

	if got := TasksInRange(s.Tasks(), nil, nil); !reflect.DeepEqual(got, s.Tasks()) {
		t.Fatalf("tasks: got %v", names(got))
	}
	if got := EventsInRange(s.Events(), nil, nil); !reflect.DeepEqual(got, s.Events()) {
		t.Fatalf("events: got %v", names(got))
	}
}

func TestTasksByTagIsExact(t *testing.T) {
	s := shoppingStore(t)
	if got := TasksByTag(s.Tasks(), []string{"Shopping"}); len(got) != 0 {
		t.Fatalf("tag match is case-sensitive, got %v", names(got))
	}
	got := TasksByTag(s.Tasks(), []string{"other", "shopping"})
	if want := []string{"Buy bread"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}
}

func TestTasksByCompletion(t *testing.T) {
	s := shoppingStore(t)
	s.Tasks()[1].SetCompleted(true)

	if got := names(TasksByCompletion(s.Tasks(), true)); !reflect.DeepEqual(got, []string{"Buy bread"}) {
		t.Fatalf("completed: got %v", got)
	}
	if got := names(TasksByCompletion(s.Tasks(), false)); !reflect.DeepEqual(got, []string{"Buy milk"}) {
		t.Fatalf("incomplete: got %v", got)
	}
}

func TestTasksOnDate(t *testing.T) {
	s := shoppingStore(t)
	got := TasksOnDate(s.Tasks(), *day(2024, 3, 1, 23))
	if want := []string{"Buy milk"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}
	if got := TasksOnDate(s.Tasks(), *day(2024, 3, 2, 0)); len(got) != 0 {
		t.Fatalf("expected no match, got %v", names(got))
	}
}

func TestEventsByOver(t *testing.T) {
	s := store.New(nil)
	old := s.CreateEvent()
	old.SetName("old")
	_ = old.SetRange(day(2024, 1, 1, 0), day(2024, 1, 2, 0))
	next := s.CreateEvent()
	next.SetName("next")
	_ = next.SetRange(day(2024, 7, 1, 0), day(2024, 7, 2, 0))

	now := *day(2024, 6, 1, 0)
	if got := names(EventsByOver(s.Events(), true, now)); !reflect.DeepEqual(got, []string{"old"}) {
		t.Fatalf("over: got %v", got)
	}
	if got := names(EventsByOver(s.Events(), false, now)); !reflect.DeepEqual(got, []string{"next"}) {
		t.Fatalf("current: got %v", got)
	}
}

func TestEventsOnDate(t *testing.T) {
	s := store.New(nil)
	e := s.CreateEvent()
	e.SetName("lunch")
	_ = e.SetRange(day(2024, 3, 5, 12), day(2024, 3, 5, 13))
	s.CreateEvent()

	got := EventsOnDate(s.Events(), *day(2024, 3, 5, 0))
	if want := []string{"lunch"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}
}

func TestEventsInRangeRequiresOverlap(t *testing.T) {
	s := store.New(nil)
	mk := func(name string, start, end *time.Time) {
		e := s.CreateEvent()
		e.SetName(name)
		if err := e.SetRange(start, end); err != nil {
			t.Fatalf("SetRange %s: %v", name, err)
		}
	}
	mk("inside", day(2024, 3, 2, 9), day(2024, 3, 3, 9))
	mk("straddles-start", day(2024, 2, 28, 9), day(2024, 3, 2, 9))
	mk("straddles-end", day(2024, 3, 4, 9), day(2024, 3, 9, 9))
	mk("covers", day(2024, 2, 1, 9), day(2024, 4, 1, 9))
	mk("before", day(2024, 2, 1, 9), day(2024, 2, 2, 9))
	mk("after", day(2024, 3, 6, 9), day(2024, 3, 7, 9))
	mk("open-start", nil, day(2024, 3, 1, 9))
	mk("open-end", day(2024, 3, 6, 9), nil)

	got := EventsInRange(s.Events(), day(2024, 3, 1, 0), day(2024, 3, 5, 0))
	want := []string{"inside", "straddles-start", "straddles-end", "covers", "open-start"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}
}

func TestUnionKeepsOrderAndDropsRepeats(t *testing.T) {
	s := store.New(nil)
	var tasks []*store.Task
	for _, n := range []string{"a", "b", "c"} {
		task := s.CreateTask()
		task.SetName(n)
		tasks = append(tasks, task)
	}
	got := UnionTasks([]*store.Task{tasks[2], tasks[0]}, []*store.Task{tasks[0], tasks[1]})
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	s := shoppingStore(t)
	tasks := s.Tasks()
	before := append([]*store.Task(nil), tasks...)

	TasksByName(tasks, []string{"buy b"})
	TasksByCompletion(tasks, true)
	TasksInRange(tasks, day(2024, 3, 1, 0), nil)

	if !reflect.DeepEqual(tasks, before) {
		t.Fatal("input slice was modified")
	}
}

func TestFloor(t *testing.T) {
	loc := time.FixedZone("X", 9*3600)
	in := time.Date(2024, 3, 1, 23, 59, 0, 0, loc)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	if got := Floor(in); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
