// Package query turns a tokenized find command into a filter plan, runs it
// over a set of tasks and events and reports what was found.
package query

import "github.com/dori/dayplan/internal/token"

// Token categories understood by the resolver
const (
	CategoryDefault     = "default"
	CategoryItemType    = "itemType"
	CategoryTaskStatus  = "taskStatus"
	CategoryEventStatus = "eventStatus"
	CategoryOn          = "time"
	CategoryFrom        = "timeFrom"
	CategoryTo          = "timeTo"
	CategoryName        = "itemName"
	CategoryTag         = "tagName"
)

// Command syntax shown alongside validation errors
const (
	CommandSyntax = "find <name> [on <date>] [task/event]"
	TaskSyntax    = "find <name> task [complete/incomplete]"
	EventSyntax   = "find <name> event [over/ongoing]"
)

// Grammar is the keyword set of the find command
var Grammar = token.Grammar{
	CategoryDefault:     {"find"},
	CategoryItemType:    {"event", "events", "task", "tasks"},
	CategoryTaskStatus:  {"complete", "completed", "incomplete", "incompleted"},
	CategoryEventStatus: {"over", "ongoing", "current", "schedule", "scheduled"},
	CategoryOn:          {"at", "by", "on", "time", "date"},
	CategoryFrom:        {"from"},
	CategoryTo:          {"to", "before"},
	CategoryName:        {"name"},
	CategoryTag:         {"tag"},
}

// Tokenize splits a raw find command with Grammar
func Tokenize(input string) token.Result {
	return token.Tokenize(Grammar, input)
}
