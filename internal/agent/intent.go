package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is the category a chat message resolves to.
type Intent string

const (
	IntentAdd      Intent = "add"
	IntentList     Intent = "list"
	IntentComplete Intent = "complete"
	IntentDelete   Intent = "delete"
	IntentUnknown  Intent = "unknown"
)

// Keyword sets checked in fixed priority order. A message matching several
// categories resolves to the earliest-checked one; this first-match-wins
// tie-break is part of the observable contract, not an accident.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentAdd, []string{"add", "create", "new task", "make"}},
	{IntentList, []string{"list", "show", "display", "my tasks", "all tasks"}},
	{IntentComplete, []string{"complete", "done", "finish", "mark as"}},
	{IntentDelete, []string{"delete", "remove", "cancel"}},
}

// Classify normalizes text and maps it to an intent by keyword presence.
func Classify(message string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(message))

	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, kw) {
				return entry.intent
			}
		}
	}
	return IntentUnknown
}

var (
	// Title is the span after an add-trigger word, up to a trailing
	// due-date phrase or the end of the message.
	titleRe = regexp.MustCompile(`(?:add|create|make)\s+(.+?)(?:\s+to\s+my\s+todo|\s+tomorrow|\s+by\s+\w+|\s+due\s+\w+|$)`)

	// Small fixed due-date vocabulary: "tomorrow", "due X", "by X".
	dueDateRe = regexp.MustCompile(`(?:tomorrow|due\s+(\w+)|by\s+(\w+))`)

	taskIDRe = regexp.MustCompile(`\d+`)

	titleFillers = []string{"a task to ", "a task ", "the task ", "task to ", "a ", "the "}
)

// ExtractAddParams pulls a task title and optional due-date token out of an
// add-intent message. When no title pattern matches, the final
// whitespace-delimited token of the message is used.
func ExtractAddParams(message string) (title, dueDate string) {
	normalized := strings.ToLower(strings.TrimSpace(message))

	if m := titleRe.FindStringSubmatch(normalized); m != nil {
		title = strings.TrimSpace(m[1])
	} else {
		fields := strings.Fields(normalized)
		if len(fields) > 0 {
			title = fields[len(fields)-1]
		}
	}

	// Drop leading filler ("add a task to buy milk" -> "buy milk").
	for _, filler := range titleFillers {
		if strings.HasPrefix(title, filler) {
			title = strings.TrimPrefix(title, filler)
			break
		}
	}

	if m := dueDateRe.FindStringSubmatch(normalized); m != nil {
		switch {
		case m[1] != "":
			dueDate = m[1]
		case m[2] != "":
			dueDate = m[2]
		default:
			dueDate = "tomorrow"
		}
	}

	return title, dueDate
}

// ExtractListStatus infers the status filter for a list-intent message.
func ExtractListStatus(message string) string {
	normalized := strings.ToLower(message)
	switch {
	case strings.Contains(normalized, "completed"):
		return "completed"
	case strings.Contains(normalized, "pending"), strings.Contains(normalized, "incomplete"):
		return "pending"
	}
	return "all"
}

// ExtractTaskID takes the first integer-looking substring in the message as
// the task identifier. The second return is false when the message has none,
// in which case the resolver asks for clarification instead of guessing.
func ExtractTaskID(message string) (int64, bool) {
	m := taskIDRe.FindString(message)
	if m == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
