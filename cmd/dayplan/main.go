package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dori/dayplan/internal/app"
	"github.com/dori/dayplan/internal/config"
)

var (
	version = "0.1.0"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dayplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFlag := fs.String("config", config.DefaultPath(), "Path to the config file")
	dataDirFlag := fs.String("data-dir", "", "Override the data directory")
	fs.Usage = func() { printHelp(stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"list"}
	}
	name, cmdArgs := rest[0], rest[1:]

	switch name {
	case "version":
		fmt.Fprintf(stdout, "dayplan v%s\n", version)
		return 0
	case "help", "-h", "--help":
		printHelp(stdout)
		return 0
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", name)
		printHelp(stderr)
		return 2
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		if cfg == nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Warning: could not write default config: %v\n", err)
	}
	if *dataDirFlag != "" {
		cfg.DataDir = *dataDirFlag
	}

	application, err := app.New(cfg, app.Options{Stdout: stdout, Stderr: stderr, ConfigPath: *configFlag})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer application.Close()

	if err := cmd(application, cmdArgs); err != nil {
		application.Console.Error(err)
		application.Logger.Debug("command failed", "command", name, "err", err)
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	help := `dayplan - tasks and events from the command line

Usage:
  dayplan [--config <file>] [--data-dir <dir>] <command> [args]

Commands:
  list                                List every task and event (default)
  add task <name> [by <date>] [tag <tags>]
  add event <name> [from <date>] [to <date>] [tag <tags>]
  find <keywords> [name <name>] [tag <tag>] [task|event]
       [complete|incomplete] [over|current] [on <date>|from <date> to <date>]
  rename <n> <name>                   Rename item n
  reschedule <n> <date> [to <date>]   Set a task's due date or an event's span
  tag <n> <tags>                      Add tags to item n
  untag <n> [tags]                    Remove tags (all when none given)
  complete <n> / uncomplete <n>       Mark task n done or not done
  delete <n>...                       Delete items
  clear                               Delete everything
  undo / redo                         Step through the commit history
  history                             Show the commit history
  tags                                Show tags in use
  stats                               Show a summary
  remind                              Send desktop reminders
  export [file]                       Write an iCalendar file (stdout by default)
  import <file>                       Read tasks and events from an iCalendar file
  move <path>                         Move the data file
  version                             Show version
  help                                Show this help

Items are addressed by the number shown in list: tasks first, then events.

Dates:
  today, tomorrow, friday, next monday, in 3 days, 2024-03-01, Mar 1,
  2024-03-01 14:30`

	fmt.Fprintln(w, help)
}
