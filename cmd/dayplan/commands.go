package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dori/dayplan/internal/app"
	"github.com/dori/dayplan/internal/ics"
	"github.com/dori/dayplan/internal/query"
	"github.com/dori/dayplan/internal/render"
	"github.com/dori/dayplan/internal/store"
	"github.com/dori/dayplan/internal/token"
)

type command func(a *app.App, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"list":       handleList,
		"ls":         handleList,
		"add":        handleAdd,
		"find":       handleFind,
		"rename":     handleRename,
		"reschedule": handleReschedule,
		"tag":        handleTag,
		"untag":      handleUntag,
		"complete":   handleComplete(true),
		"done":       handleComplete(true),
		"uncomplete": handleComplete(false),
		"delete":     handleDelete,
		"rm":         handleDelete,
		"clear":      handleClear,
		"undo":       handleUndo,
		"redo":       handleRedo,
		"history":    handleHistory,
		"tags":       handleTags,
		"stats":      handleStats,
		"remind":     handleRemind,
		"export":     handleExport,
		"import":     handleImport,
		"move":       handleMove,
	}
}

var (
	taskGrammar = token.Grammar{
		"name": {"task"},
		"due":  {"by", "due"},
		"tags": {"tag", "tags"},
	}
	eventGrammar = token.Grammar{
		"name": {"event"},
		"from": {"from", "on", "at"},
		"to":   {"to", "until"},
		"tags": {"tag", "tags"},
	}
	spanGrammar = token.Grammar{
		"from": {"at"},
		"to":   {"to", "until"},
	}
)

func handleList(a *app.App, args []string) error {
	tasks, events := len(a.Store.Tasks()), len(a.Store.Events())
	message := ""
	if tasks+events > 0 {
		message = fmt.Sprintf("Showing %s.", query.CountItems(tasks, events))
	}
	a.Console.RenderIndex(a.Store, message)
	return nil
}

func handleAdd(a *app.App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: dayplan add task|event <name> ...")
	}
	input := strings.Join(args, " ")

	switch strings.ToLower(args[0]) {
	case "task":
		tokens := token.Tokenize(taskGrammar, input)
		name := tokens.Value("name")
		if name == "" {
			return errors.New("a task needs a name")
		}
		due, err := optionalDate(a, tokens, "due")
		if err != nil {
			return err
		}
		t := a.Store.CreateTask()
		t.SetName(name)
		t.SetDueDate(due)
		if err := a.Store.AddTags(t, token.Fields(tokens.Value("tags"))...); err != nil {
			return err
		}
		if err := a.Store.Save(); err != nil {
			return err
		}
		a.Console.Message(fmt.Sprintf("Added task: %s", name))

	case "event":
		tokens := token.Tokenize(eventGrammar, input)
		name := tokens.Value("name")
		if name == "" {
			return errors.New("an event needs a name")
		}
		start, err := optionalDate(a, tokens, "from")
		if err != nil {
			return err
		}
		end, err := optionalDate(a, tokens, "to")
		if err != nil {
			return err
		}
		e := a.Store.CreateEvent()
		e.SetName(name)
		if err := e.SetRange(start, end); err != nil {
			return err
		}
		if err := a.Store.AddTags(e, token.Fields(tokens.Value("tags"))...); err != nil {
			return err
		}
		if err := a.Store.Save(); err != nil {
			return err
		}
		a.Console.Message(fmt.Sprintf("Added event: %s", name))

	default:
		return fmt.Errorf("cannot add %q: expected task or event", args[0])
	}
	return nil
}

func handleFind(a *app.App, args []string) error {
	_, err := a.Resolver.Find("find "+strings.Join(args, " "), a.Store, a.Console)
	return err
}

func handleRename(a *app.App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: dayplan rename <n> <name>")
	}
	item, err := itemAt(a.Store, args[0])
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")
	old := item.Name()
	switch v := item.(type) {
	case *store.Task:
		v.SetName(name)
	case *store.Event:
		v.SetName(name)
	}
	if err := a.Store.Save(); err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Renamed %q to %q", old, name))
	return nil
}

func handleReschedule(a *app.App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: dayplan reschedule <n> <date> [to <date>]")
	}
	item, err := itemAt(a.Store, args[0])
	if err != nil {
		return err
	}
	tokens := token.Tokenize(spanGrammar, "at "+strings.Join(args[1:], " "))
	from, err := optionalDate(a, tokens, "from")
	if err != nil {
		return err
	}
	to, err := optionalDate(a, tokens, "to")
	if err != nil {
		return err
	}

	switch v := item.(type) {
	case *store.Task:
		if to != nil {
			return errors.New("a task has a single due date")
		}
		v.SetDueDate(from)
	case *store.Event:
		if err := v.SetRange(from, to); err != nil {
			return err
		}
	}
	if err := a.Store.Save(); err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Rescheduled %q", item.Name()))
	return nil
}

func handleTag(a *app.App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: dayplan tag <n> <tags>")
	}
	item, err := itemAt(a.Store, args[0])
	if err != nil {
		return err
	}
	if err := a.Store.AddTags(item, token.Fields(strings.Join(args[1:], " "))...); err != nil {
		return err
	}
	if err := a.Store.Save(); err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Tagged %q: %s", item.Name(), strings.Join(item.Tags(), ", ")))
	return nil
}

func handleUntag(a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: dayplan untag <n> [tags]")
	}
	item, err := itemAt(a.Store, args[0])
	if err != nil {
		return err
	}
	names := token.Fields(strings.Join(args[1:], " "))
	if len(names) == 0 {
		err = a.Store.ClearTags(item)
	} else {
		err = a.Store.RemoveTags(item, names...)
	}
	if err != nil {
		return err
	}
	if err := a.Store.Save(); err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Untagged %q", item.Name()))
	return nil
}

func handleComplete(completed bool) command {
	return func(a *app.App, args []string) error {
		if len(args) != 1 {
			return errors.New("usage: dayplan complete|uncomplete <n>")
		}
		item, err := itemAt(a.Store, args[0])
		if err != nil {
			return err
		}
		task, ok := item.(*store.Task)
		if !ok {
			return fmt.Errorf("%q is an event and has no status", item.Name())
		}
		if task.IsCompleted() == completed {
			state := "incomplete"
			if completed {
				state = "complete"
			}
			return fmt.Errorf("%q is already %s", task.Name(), state)
		}
		task.SetCompleted(completed)
		if err := a.Store.Save(); err != nil {
			return err
		}
		verb := "Reopened"
		if completed {
			verb = "Completed"
		}
		a.Console.Message(fmt.Sprintf("%s %q", verb, task.Name()))
		return nil
	}
}

func handleDelete(a *app.App, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: dayplan delete <n>...")
	}
	var (
		tasks  []*store.Task
		events []*store.Event
	)
	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		item, err := itemAt(a.Store, arg)
		if err != nil {
			return err
		}
		if seen[item.ID()] {
			continue
		}
		seen[item.ID()] = true
		switch v := item.(type) {
		case *store.Task:
			tasks = append(tasks, v)
		case *store.Event:
			events = append(events, v)
		}
	}
	if err := a.Store.DestroyByList(tasks, events); err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Deleted %s.", query.CountItems(len(tasks), len(events))))
	return nil
}

func handleClear(a *app.App, args []string) error {
	tasks, events := len(a.Store.Tasks()), len(a.Store.Events())
	if err := a.Store.DestroyAll(); err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Deleted %s.", query.CountItems(tasks, events)))
	return nil
}

func handleUndo(a *app.App, args []string) error {
	err := a.Store.Undo()
	if errors.Is(err, store.ErrNothingToUndo) {
		a.Console.Message("There are no more steps to undo!")
		return nil
	}
	if err != nil {
		return err
	}
	a.Console.RenderIndex(a.Store, fmt.Sprintf("Undid 1 step (%d more available).", a.Store.UndoSize()))
	return nil
}

func handleRedo(a *app.App, args []string) error {
	err := a.Store.Redo()
	if errors.Is(err, store.ErrNothingToRedo) {
		a.Console.Message("There are no more steps to redo!")
		return nil
	}
	if err != nil {
		return err
	}
	a.Console.RenderIndex(a.Store, fmt.Sprintf("Redid 1 step (%d more available).", a.Store.RedoSize()))
	return nil
}

func handleHistory(a *app.App, args []string) error {
	commits, err := a.Log.History()
	if err != nil {
		return err
	}
	a.Console.RenderHistory(commits)
	return nil
}

func handleTags(a *app.App, args []string) error {
	a.Console.RenderTags(a.Store.TagIndex())
	return nil
}

func handleStats(a *app.App, args []string) error {
	a.Console.RenderStats(render.StatsOf(a.Store))
	return nil
}

func handleRemind(a *app.App, args []string) error {
	if !a.Notifier.IsEnabled() {
		a.Console.Message("Reminders are disabled in the config.")
		return nil
	}
	window := time.Duration(a.Config.ReminderMinutes) * time.Minute
	sent, err := a.Notifier.Remind(a.Store, window)
	if err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Sent %d %s.", sent, query.Pluralize(sent, "reminder", "reminders")))
	return nil
}

func handleExport(a *app.App, args []string) error {
	if len(args) == 0 {
		return ics.Export(a.Out, a.Store)
	}

	path := args[0]
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ics.Export(f, a.Store); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.Console.Message(fmt.Sprintf("Exported %s to %s.",
		query.CountItems(len(a.Store.Tasks()), len(a.Store.Events())), path))
	return nil
}

func handleImport(a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dayplan import <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	report, err := ics.Import(a.Store, f, ics.ImportOptions{
		Horizon: time.Duration(a.Config.ImportHorizonDays) * 24 * time.Hour,
	})
	if err != nil {
		return err
	}
	for _, uid := range report.Truncated {
		a.Logger.Warn("recurrence truncated", "uid", uid)
	}
	if err := a.Store.Save(); err != nil {
		return err
	}
	a.Console.Message(fmt.Sprintf("Imported %s (%d skipped).",
		query.CountItems(report.Tasks, report.Events), report.Skipped))
	return nil
}

func handleMove(a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dayplan move <path>")
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if err := a.Store.Move(path); err != nil {
		return err
	}
	if a.ConfigPath != "" {
		a.Config.DBFile = path
		if err := a.Config.Save(a.ConfigPath); err != nil {
			return fmt.Errorf("moved to %s but failed to update config: %w", path, err)
		}
	}
	a.Console.Message(fmt.Sprintf("Moved data to %s.", path))
	return nil
}

// itemAt resolves a 1-based display number: tasks first, then events
func itemAt(s *store.Store, arg string) (store.Item, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(arg, "."))
	if err != nil {
		return nil, fmt.Errorf("%q is not an item number", arg)
	}
	tasks, events := s.Tasks(), s.Events()
	switch {
	case n >= 1 && n <= len(tasks):
		return tasks[n-1], nil
	case n > len(tasks) && n <= len(tasks)+len(events):
		return events[n-len(tasks)-1], nil
	}
	return nil, fmt.Errorf("no item number %d", n)
}

func optionalDate(a *app.App, tokens token.Result, category string) (*time.Time, error) {
	if !tokens.Has(category) {
		return nil, nil
	}
	value := tokens.Value(category)
	t, ok := a.Dates.Parse(value)
	if !ok {
		return nil, fmt.Errorf("the date %q is not supported", value)
	}
	return &t, nil
}
