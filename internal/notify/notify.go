// Package notify sends desktop reminders for overdue and upcoming items
// through notify-send.
package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dori/dayplan/internal/store"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Runner executes an external command
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     Runner
}

// NewNotifier creates a new notifier
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
		run:     execRunner,
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// SetRunner replaces the command runner
func (n *Notifier) SetRunner(run Runner) {
	n.run = run
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Timeout in milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "dayplan")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	return n.run("notify-send", args...)
}

// Source is what reminders are computed from. *store.Store is a Source.
type Source interface {
	Now() time.Time
	Tasks() []*store.Task
	Events() []*store.Event
	CountOverdueTasks() int
}

const maxListed = 5

// Reminders returns the notifications due for src: one summary of overdue
// tasks, then one per task due and per event starting within window.
func Reminders(src Source, window time.Duration) []Notification {
	now := src.Now()
	var out []Notification

	if overdue := src.CountOverdueTasks(); overdue > 0 {
		var names []string
		for _, t := range src.Tasks() {
			if t.IsOverdue(now) {
				names = append(names, t.Name())
			}
		}
		if len(names) > maxListed {
			names = append(names[:maxListed], "…")
		}
		noun := "tasks"
		if overdue == 1 {
			noun = "task"
		}
		out = append(out, Notification{
			Title:   fmt.Sprintf("%d overdue %s", overdue, noun),
			Body:    strings.Join(names, "\n"),
			Urgency: UrgencyCritical,
			Timeout: 15 * time.Second,
			Icon:    "emblem-important-symbolic",
		})
	}

	for _, t := range src.Tasks() {
		due := t.DueDate()
		if t.IsCompleted() || due == nil || !due.After(now) || due.Sub(now) > window {
			continue
		}
		out = append(out, dueReminder(t.Name(), due.Sub(now)))
	}

	for _, e := range src.Events() {
		start := e.StartDate()
		if start == nil || start.Before(now) || start.Sub(now) > window {
			continue
		}
		out = append(out, Notification{
			Title:   e.Name(),
			Body:    "Starts at " + start.Local().Format("15:04"),
			Urgency: UrgencyNormal,
			Timeout: 10 * time.Second,
			Icon:    "appointment-soon-symbolic",
		})
	}
	return out
}

// Remind sends every reminder for src and returns how many were sent
func (n *Notifier) Remind(src Source, window time.Duration) (int, error) {
	if !n.enabled {
		return 0, nil
	}
	sent := 0
	for _, notification := range Reminders(src, window) {
		if err := n.Send(notification); err != nil {
			return sent, fmt.Errorf("failed to send notification: %w", err)
		}
		sent++
	}
	return sent, nil
}

func dueReminder(name string, dueIn time.Duration) Notification {
	body := "Task due soon"
	if dueIn < time.Hour {
		body = "Task due in less than an hour"
	}
	return Notification{
		Title:   name,
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	}
}
