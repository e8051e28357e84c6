package ics

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dori/dayplan/internal/store"
)

func ptr(t time.Time) *time.Time {
	return &t
}

func calendar(lines ...string) string {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

func testOptions() ImportOptions {
	return ImportOptions{
		Now:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Horizon:  30 * 24 * time.Hour,
		Location: time.UTC,
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := store.New(nil)
	task := src.CreateTask()
	task.SetName("File taxes")
	task.SetDueDate(ptr(time.Date(2024, 4, 15, 17, 0, 0, 0, time.UTC)))
	task.SetCompleted(true)
	if err := src.AddTags(task, "admin", "money"); err != nil {
		t.Fatalf("AddTags: %v", err)
	}
	floating := src.CreateTask()
	floating.SetName("Read a book")

	event := src.CreateEvent()
	event.SetName("Dentist")
	if err := event.SetRange(
		ptr(time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)),
		ptr(time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)),
	); err != nil {
		t.Fatalf("SetRange: %v", err)
	}
	if err := src.AddTags(event, "health"); err != nil {
		t.Fatalf("AddTags: %v", err)
	}

	var buf bytes.Buffer
	if err := Export(&buf, src); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := store.New(nil)
	report, err := Import(dst, &buf, testOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Tasks != 2 || report.Events != 1 || report.Skipped != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	tasks := dst.Tasks()
	if tasks[0].Name() != "File taxes" || !tasks[0].IsCompleted() {
		t.Fatalf("task not restored: %q completed=%v", tasks[0].Name(), tasks[0].IsCompleted())
	}
	if due := tasks[0].DueDate(); due == nil || !due.Equal(*task.DueDate()) {
		t.Fatalf("due date not restored: %v", due)
	}
	if !reflect.DeepEqual(tasks[0].Tags(), []string{"admin", "money"}) {
		t.Fatalf("tags not restored: %v", tasks[0].Tags())
	}
	if tasks[1].DueDate() != nil || tasks[1].IsCompleted() {
		t.Fatal("floating task gained a due date or status")
	}

	ev := dst.Events()[0]
	if ev.Name() != "Dentist" || !ev.StartDate().Equal(*event.StartDate()) || !ev.EndDate().Equal(*event.EndDate()) {
		t.Fatalf("event not restored: %q %v %v", ev.Name(), ev.StartDate(), ev.EndDate())
	}
	if dst.TagIndex().Count("health") != 1 || dst.CountTags() != 3 {
		t.Fatalf("tag index out of sync after import: %v", dst.TagIndex().Counts())
	}
}

func TestImportSkipsKnownItems(t *testing.T) {
	s := store.New(nil)
	s.CreateTask().SetName("Once")
	var buf bytes.Buffer
	if err := Export(&buf, s); err != nil {
		t.Fatalf("Export: %v", err)
	}

	report, err := Import(s, &buf, testOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Skipped != 1 || report.Tasks != 0 || len(s.Tasks()) != 1 {
		t.Fatalf("expected the known task to be skipped, got %+v with %d tasks", report, len(s.Tasks()))
	}
}

func TestImportForeignCalendarTwice(t *testing.T) {
	input := calendar(
		"BEGIN:VTODO",
		"UID:todo-1@example.com",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Renew passport",
		"END:VTODO",
		"BEGIN:VEVENT",
		"UID:dentist-1@example.com",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Dentist",
		"DTSTART:20240312T093000Z",
		"DTEND:20240312T100000Z",
		"END:VEVENT",
	)

	s := store.New(nil)
	report, err := Import(s, strings.NewReader(input), testOptions())
	if err != nil {
		t.Fatalf("first Import: %v", err)
	}
	if report.Tasks != 1 || report.Events != 1 || report.Skipped != 0 {
		t.Fatalf("unexpected first report %+v", report)
	}
	if got := s.Events()[0].Source(); got != "dentist-1@example.com" {
		t.Fatalf("event source = %q", got)
	}

	report, err = Import(s, strings.NewReader(input), testOptions())
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if report.Tasks != 0 || report.Events != 0 || report.Skipped != 2 {
		t.Fatalf("unexpected second report %+v", report)
	}
	if len(s.Tasks()) != 1 || len(s.Events()) != 1 {
		t.Fatalf("duplicates created: %d tasks, %d events", len(s.Tasks()), len(s.Events()))
	}
}

func TestImportSourceSurvivesSnapshot(t *testing.T) {
	input := calendar(
		"BEGIN:VEVENT",
		"UID:dentist-1@example.com",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Dentist",
		"DTSTART:20240312T093000Z",
		"END:VEVENT",
	)
	storage := store.NewMemoryStorage()
	s := store.New(storage)
	if _, err := Import(s, strings.NewReader(input), testOptions()); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := store.New(storage)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	report, err := Import(reloaded, strings.NewReader(input), testOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Skipped != 1 || len(reloaded.Events()) != 1 {
		t.Fatalf("reloaded store re-imported the event: %+v", report)
	}
}

func TestImportExpandsRecurrence(t *testing.T) {
	input := calendar(
		"BEGIN:VEVENT",
		"UID:standup",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Weekly review",
		"DTSTART:20240310T090000Z",
		"DTEND:20240310T100000Z",
		"RRULE:FREQ=WEEKLY;COUNT=10",
		"EXDATE:20240317T090000Z",
		"CATEGORIES:work",
		"END:VEVENT",
	)

	s := store.New(nil)
	report, err := Import(s, strings.NewReader(input), testOptions())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Events != 2 {
		t.Fatalf("expected 2 occurrences inside the window, got %d", report.Events)
	}
	want := []time.Time{
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 24, 9, 0, 0, 0, time.UTC),
	}
	for i, e := range s.Events() {
		if !e.StartDate().Equal(want[i]) {
			t.Errorf("occurrence %d starts %v, want %v", i, e.StartDate(), want[i])
		}
		if d := e.EndDate().Sub(*e.StartDate()); d != time.Hour {
			t.Errorf("occurrence %d lasts %v", i, d)
		}
	}
	if s.TagIndex().Count("work") != 2 {
		t.Fatalf("expected each occurrence to be tagged, got %v", s.TagIndex().Counts())
	}
	if got := s.Events()[1].Source(); got != "standup/20240324T090000Z" {
		t.Fatalf("occurrence source = %q", got)
	}

	report, err = Import(s, strings.NewReader(input), testOptions())
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if report.Events != 0 || report.Skipped != 2 || len(s.Events()) != 2 {
		t.Fatalf("occurrences imported twice: %+v", report)
	}
}

func TestImportCapsOccurrences(t *testing.T) {
	input := calendar(
		"BEGIN:VEVENT",
		"UID:daily",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Stretch",
		"DTSTART:20240301T070000Z",
		"RRULE:FREQ=DAILY",
		"END:VEVENT",
	)
	opts := testOptions()
	opts.MaxOccurrences = 5

	report, err := Import(store.New(nil), strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Events != 5 || !reflect.DeepEqual(report.Truncated, []string{"daily"}) {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestImportAllDayItems(t *testing.T) {
	input := calendar(
		"BEGIN:VTODO",
		"UID:taxes",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:File taxes",
		"DUE;VALUE=DATE:20240415",
		"STATUS:NEEDS-ACTION",
		"END:VTODO",
		"BEGIN:VEVENT",
		"UID:holiday",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Holiday",
		"DTSTART;VALUE=DATE:20240305",
		"DTEND;VALUE=DATE:20240306",
		"END:VEVENT",
	)

	s := store.New(nil)
	if _, err := Import(s, strings.NewReader(input), testOptions()); err != nil {
		t.Fatalf("Import: %v", err)
	}

	due := s.Tasks()[0].DueDate()
	if want := time.Date(2024, 4, 15, 23, 59, 59, 0, time.UTC); due == nil || !due.Equal(want) {
		t.Fatalf("due = %v, want %v", due, want)
	}
	e := s.Events()[0]
	if !e.StartDate().Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) ||
		!e.EndDate().Equal(time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("all-day event spans %v -> %v", e.StartDate(), e.EndDate())
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	s := store.New(nil)
	if _, err := Import(s, strings.NewReader("not a calendar"), testOptions()); err == nil {
		t.Fatal("expected an error")
	}
	if len(s.Tasks()) != 0 || len(s.Events()) != 0 {
		t.Fatal("store changed by a failed import")
	}
}
