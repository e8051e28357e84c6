// Package render prints tasks, events and command outcomes to a terminal
// using lipgloss styles.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dori/dayplan/internal/db"
	"github.com/dori/dayplan/internal/query"
	"github.com/dori/dayplan/internal/store"
)

// Console writes styled output to w and errors to errW. Colors are dropped
// automatically when a writer is not a terminal.
type Console struct {
	w         io.Writer
	errW      io.Writer
	styles    Styles
	errStyles Styles
	now       func() time.Time
}

var _ query.Renderer = (*Console)(nil)

// NewConsole creates a console renderer. A nil errW sends errors to w.
func NewConsole(w, errW io.Writer, t Theme, now func() time.Time) *Console {
	if now == nil {
		now = time.Now
	}
	if errW == nil {
		errW = w
	}
	return &Console{
		w:         w,
		errW:      errW,
		styles:    NewStyles(lipgloss.NewRenderer(w), t),
		errStyles: NewStyles(lipgloss.NewRenderer(errW), t),
		now:       now,
	}
}

// RenderIndex prints every task and event followed by message
func (c *Console) RenderIndex(src query.Source, message string) {
	c.render(src, src.Tasks(), src.Events())
	c.Message(message)
}

// RenderSelected prints the given items, numbered by their position in the
// full listing, followed by message
func (c *Console) RenderSelected(src query.Source, message string, tasks []*store.Task, events []*store.Event) {
	c.render(src, tasks, events)
	c.Message(message)
}

// Message prints a one-line status message
func (c *Console) Message(message string) {
	if message == "" {
		return
	}
	fmt.Fprintln(c.w, c.styles.Message.Render(message))
}

// Error prints err to the error writer. Query validation errors also print
// the usage line that disambiguates them.
func (c *Console) Error(err error) {
	var verr *query.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(c.errW, c.errStyles.Error.Render(verr.Message))
		fmt.Fprintln(c.errW, c.errStyles.Syntax.Render("usage: "+verr.Syntax))
		return
	}
	fmt.Fprintln(c.errW, c.errStyles.Error.Render("Error: "+err.Error()))
}

func (c *Console) render(src query.Source, tasks []*store.Task, events []*store.Event) {
	positions := Positions(src)
	now := c.now()
	var sections []string

	if len(tasks) > 0 {
		lines := []string{c.styles.Header.Render("Tasks")}
		for _, t := range tasks {
			lines = append(lines, c.taskLine(positions[t.ID()], t, now))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if len(events) > 0 {
		lines := []string{c.styles.Header.Render("Events")}
		for _, e := range events {
			lines = append(lines, c.eventLine(positions[e.ID()], e, now))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if len(sections) == 0 {
		sections = append(sections, c.styles.Empty.Render("Nothing planned."))
	}
	fmt.Fprintln(c.w, strings.Join(sections, "\n\n"))
}

func (c *Console) taskLine(pos int, t *store.Task, now time.Time) string {
	checkbox := "[ ]"
	if t.IsCompleted() {
		checkbox = "[x]"
	}

	nameStyle := c.styles.Item
	if t.IsCompleted() {
		nameStyle = c.styles.ItemDone
	} else if t.IsOverdue(now) {
		nameStyle = c.styles.ItemLate
	}

	parts := []string{c.styles.Index.Render(fmt.Sprintf("%d.", pos)), checkbox, nameStyle.Render(t.Name())}
	if tags := c.tags(t.Tags()); tags != "" {
		parts = append(parts, tags)
	}
	if due := t.DueDate(); due != nil {
		dueStyle := c.styles.Date
		if t.IsOverdue(now) {
			dueStyle = c.styles.DateLate
		} else if sameDay(*due, now) {
			dueStyle = c.styles.DateSoon
		}
		parts = append(parts, dueStyle.Render("due "+FormatDate(*due, now)))
	}
	return strings.Join(parts, " ")
}

func (c *Console) eventLine(pos int, e *store.Event, now time.Time) string {
	nameStyle := c.styles.Item
	if e.IsOver(now) {
		nameStyle = c.styles.ItemDone
	}

	parts := []string{c.styles.Index.Render(fmt.Sprintf("%d.", pos)), nameStyle.Render(e.Name())}
	if tags := c.tags(e.Tags()); tags != "" {
		parts = append(parts, tags)
	}
	var span []string
	if start := e.StartDate(); start != nil {
		span = append(span, FormatDate(*start, now))
	}
	if end := e.EndDate(); end != nil {
		span = append(span, FormatDate(*end, now))
	}
	if len(span) > 0 {
		parts = append(parts, c.styles.Date.Render(strings.Join(span, " -> ")))
	}
	return strings.Join(parts, " ")
}

func (c *Console) tags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, c.styles.Tag.Render("#"+tag))
	}
	return strings.Join(parts, " ")
}

// Stats is the summary printed by RenderStats
type Stats struct {
	Tasks      int
	Incomplete int
	Overdue    int
	Events     int
	Upcoming   int
	Tags       int
	UndoSize   int
	RedoSize   int
}

// StatsOf collects the summary counters of s
func StatsOf(s *store.Store) Stats {
	return Stats{
		Tasks:      len(s.Tasks()),
		Incomplete: s.CountIncompleteTasks(),
		Overdue:    s.CountOverdueTasks(),
		Events:     len(s.Events()),
		Upcoming:   s.CountFutureEvents(),
		Tags:       s.CountTags(),
		UndoSize:   s.UndoSize(),
		RedoSize:   s.RedoSize(),
	}
}

// RenderStats prints the summary counters as a row of cards
func (c *Console) RenderStats(st Stats) {
	card := func(value int, label string) string {
		return c.styles.Card.Render(
			c.styles.CardValue.Render(fmt.Sprintf("%d", value)) + "\n" +
				c.styles.CardLabel.Render(label),
		)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		card(st.Incomplete, "Open tasks"),
		card(st.Overdue, "Overdue"),
		card(st.Upcoming, "Upcoming events"),
		card(st.Tags, "Tags"),
	)
	footer := c.styles.CardLabel.Render(fmt.Sprintf(
		"%d tasks, %d events • %d undo, %d redo available",
		st.Tasks, st.Events, st.UndoSize, st.RedoSize,
	))
	fmt.Fprintln(c.w, c.styles.Header.Render("Statistics"))
	fmt.Fprintln(c.w, top)
	fmt.Fprintln(c.w, footer)
}

// RenderTags prints each tag in use with the number of items carrying it
func (c *Console) RenderTags(index *store.TagIndex) {
	names := index.Names()
	if len(names) == 0 {
		fmt.Fprintln(c.w, c.styles.Empty.Render("No tags in use."))
		return
	}
	fmt.Fprintln(c.w, c.styles.Header.Render("Tags"))
	for _, name := range names {
		fmt.Fprintf(c.w, "  %s %s\n", c.styles.Tag.Render("#"+name), c.styles.Date.Render(fmt.Sprintf("(%d)", index.Count(name))))
	}
}

// RenderHistory prints the commit log, marking the current commit
func (c *Console) RenderHistory(commits []db.Commit) {
	if len(commits) == 0 {
		fmt.Fprintln(c.w, c.styles.Empty.Render("No history yet."))
		return
	}
	fmt.Fprintln(c.w, c.styles.Header.Render("History"))
	for _, cm := range commits {
		marker := " "
		if cm.Head {
			marker = "*"
		}
		op := cm.Op
		if op == "" {
			op = "save"
		}
		fmt.Fprintf(c.w, "%s %s %s %s\n",
			marker,
			c.styles.Date.Render(cm.ID.String()),
			c.styles.Item.Render(op),
			c.styles.Date.Render(cm.CreatedAt.Local().Format("2006-01-02 15:04")),
		)
	}
}

// Positions maps item IDs to their 1-based display position: tasks first,
// then events.
func Positions(src query.Source) map[string]int {
	tasks, events := src.Tasks(), src.Events()
	positions := make(map[string]int, len(tasks)+len(events))
	for i, t := range tasks {
		positions[t.ID()] = i + 1
	}
	for i, e := range events {
		positions[e.ID()] = len(tasks) + i + 1
	}
	return positions
}

// FormatDate renders t relative to now. Times at the very end of a day are
// treated as whole-day dates.
func FormatDate(t, now time.Time) string {
	var day string
	switch {
	case sameDay(t, now):
		day = "today"
	case sameDay(t, now.AddDate(0, 0, 1)):
		day = "tomorrow"
	case sameDay(t, now.AddDate(0, 0, -1)):
		day = "yesterday"
	case t.After(now) && t.Sub(now) < 7*24*time.Hour:
		day = t.Format("Mon")
	case t.Year() == now.Year():
		day = t.Format("Jan 2")
	default:
		day = t.Format("Jan 2, 2006")
	}

	if t.Hour() == 23 && t.Minute() == 59 {
		return day
	}
	return day + " " + t.Format("15:04")
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
