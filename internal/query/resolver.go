package query

import (
	"fmt"
	"time"

	"github.com/dori/dayplan/internal/filter"
	"github.com/dori/dayplan/internal/store"
	"github.com/dori/dayplan/internal/token"
)

// Summary messages
const (
	MessageFound    = "A total of %s found!"
	MessageNotFound = "No task or event found!"
)

// DateParser resolves a natural-language date. ok is false when the text
// is not understood.
type DateParser interface {
	Parse(s string) (t time.Time, ok bool)
}

// Source supplies the items a query runs over. *store.Store is a Source.
type Source interface {
	Tasks() []*store.Task
	Events() []*store.Event
}

// Renderer shows the outcome of a query
type Renderer interface {
	RenderIndex(src Source, message string)
	RenderSelected(src Source, message string, tasks []*store.Task, events []*store.Event)
}

// Plan is a validated query. Nil fields do not filter.
type Plan struct {
	Names []string
	Tags  []string

	// Exactly one of these is false when an item type was given
	WantTasks  bool
	WantEvents bool

	Completed *bool
	Over      *bool

	On   *time.Time
	From *time.Time
	To   *time.Time
}

// Result is what a query found
type Result struct {
	Tasks   []*store.Task
	Events  []*store.Event
	Message string
}

// Empty reports whether nothing matched
func (r *Result) Empty() bool {
	return len(r.Tasks) == 0 && len(r.Events) == 0
}

// Resolver validates token groups and runs them through the filter engine
type Resolver struct {
	Parser DateParser
	Now    func() time.Time
}

// NewResolver returns a Resolver using parser and the wall clock
func NewResolver(parser DateParser) *Resolver {
	return &Resolver{Parser: parser, Now: time.Now}
}

// Resolve validates tokens and builds a plan. It never touches any items.
func (r *Resolver) Resolve(tokens token.Result) (*Plan, error) {
	keywords := candidates(tokens, CategoryDefault)
	names := append(candidates(tokens, CategoryName), keywords...)
	tags := append(candidates(tokens, CategoryTag), keywords...)
	if len(names) == 0 && len(tags) == 0 {
		return nil, invalid(ErrNoKeyword, CommandSyntax, "No keyword found!")
	}

	plan := &Plan{
		Names:      dedupe(names),
		Tags:       dedupe(tags),
		WantTasks:  true,
		WantEvents: true,
	}

	hasTaskStatus := tokens.Has(CategoryTaskStatus)
	hasEventStatus := tokens.Has(CategoryEventStatus)
	if tokens.Has(CategoryItemType) {
		switch tokens.Keyword(CategoryItemType) {
		case "task", "tasks":
			if hasEventStatus {
				return nil, invalid(ErrItemTypeConflict, TaskSyntax, "Unable to find!\nItem type conflict detected!")
			}
			plan.WantEvents = false
		default:
			if hasTaskStatus {
				return nil, invalid(ErrItemTypeConflict, EventSyntax, "Unable to find!\nItem type conflict detected!")
			}
			plan.WantTasks = false
		}
	}

	dates := 0
	for _, category := range []string{CategoryOn, CategoryFrom, CategoryTo} {
		if tokens.Has(category) {
			dates++
		}
	}
	if dates > 0 {
		if (tokens.Has(CategoryOn) && dates > 1) || hasEventStatus {
			return nil, invalid(ErrDateConflict, CommandSyntax, "Unable to find!\nMore than 1 date criteria is provided!")
		}
		var err error
		if plan.On, err = r.date(tokens, CategoryOn); err != nil {
			return nil, err
		}
		if plan.From, err = r.date(tokens, CategoryFrom); err != nil {
			return nil, err
		}
		if plan.To, err = r.date(tokens, CategoryTo); err != nil {
			return nil, err
		}
	}

	if hasTaskStatus {
		completed := tokens.Keyword(CategoryTaskStatus) != "incomplete" && tokens.Keyword(CategoryTaskStatus) != "incompleted"
		plan.Completed = &completed
	}
	if hasEventStatus {
		over := tokens.Keyword(CategoryEventStatus) == "over"
		plan.Over = &over
	}
	return plan, nil
}

// date parses and floors the value of a date category. An absent category
// yields nil.
func (r *Resolver) date(tokens token.Result, category string) (*time.Time, error) {
	if !tokens.Has(category) {
		return nil, nil
	}
	var (
		t  time.Time
		ok bool
	)
	if r.Parser != nil {
		t, ok = r.Parser.Parse(tokens.Value(category))
	}
	if !ok {
		return nil, invalid(ErrUnparseableDate, CommandSyntax, "Unable to find!\nThe natural date entered is not supported.")
	}
	t = filter.Floor(t)
	return &t, nil
}

// Execute runs a plan over src: identity filters first, then status, then
// date.
func (r *Resolver) Execute(plan *Plan, src Source) *Result {
	var (
		tasks  []*store.Task
		events []*store.Event
	)
	if plan.WantTasks {
		tasks = src.Tasks()
		tasks = filter.UnionTasks(
			matchSide(tasks, plan.Names, filter.TasksByName),
			matchSide(tasks, plan.Tags, filter.TasksByTag),
		)
	}
	if plan.WantEvents {
		events = src.Events()
		events = filter.UnionEvents(
			matchSide(events, plan.Names, filter.EventsByName),
			matchSide(events, plan.Tags, filter.EventsByTag),
		)
	}

	if plan.Completed != nil {
		tasks = filter.TasksByCompletion(tasks, *plan.Completed)
	}
	if plan.Over != nil {
		events = filter.EventsByOver(events, *plan.Over, r.now())
	}

	if plan.On != nil {
		tasks = filter.TasksOnDate(tasks, *plan.On)
		events = filter.EventsOnDate(events, *plan.On)
	} else {
		tasks = filter.TasksInRange(tasks, plan.From, plan.To)
		events = filter.EventsInRange(events, plan.From, plan.To)
	}

	res := &Result{Tasks: tasks, Events: events, Message: MessageNotFound}
	if !res.Empty() {
		res.Message = fmt.Sprintf(MessageFound, CountItems(len(tasks), len(events)))
	}
	return res
}

// Run resolves tokens and executes the plan over src
func (r *Resolver) Run(tokens token.Result, src Source) (*Result, error) {
	plan, err := r.Resolve(tokens)
	if err != nil {
		return nil, err
	}
	return r.Execute(plan, src), nil
}

// Find runs a raw find command and hands the outcome to out
func (r *Resolver) Find(input string, src Source, out Renderer) (*Result, error) {
	res, err := r.Run(Tokenize(input), src)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		out.RenderIndex(src, res.Message)
	} else {
		out.RenderSelected(src, res.Message, res.Tasks, res.Events)
	}
	return res, nil
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// matchSide applies match unless there is nothing to match against, in
// which case the side contributes no items to the union.
func matchSide[T any](items []T, candidates []string, match func([]T, []string) []T) []T {
	if len(candidates) == 0 {
		return nil
	}
	return match(items, candidates)
}

// candidates returns the whole captured value of category followed by its
// individual words
func candidates(tokens token.Result, category string) []string {
	value := tokens.Value(category)
	if value == "" {
		return nil
	}
	return append([]string{value}, token.Fields(value)...)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
