package agent

import (
	"fmt"
	"strings"

	"github.com/rensmac/tasktalk/internal/agent/tools"
	"github.com/rensmac/tasktalk/internal/llm"
)

// helpText is the static fallback for unrecognized messages.
const helpText = "I can help you manage your task list by adding, listing, completing, or deleting tasks. " +
	"Try saying something like 'Add a task to buy groceries' or 'Show my tasks'."

const maxListedTasks = 5

// renderAdd maps an add_task result onto the response template.
func renderAdd(title string, result tools.Result) string {
	if !result.OK {
		return fmt.Sprintf("Sorry, I couldn't add the task '%s'. Error: %s", title, failureDetail(result))
	}
	return fmt.Sprintf("I've added the task '%s' to your list. %s.", title, result.Summary)
}

// renderList maps a list_tasks result onto the response template. Only the
// first few titles are spelled out.
func renderList(status string, result tools.Result) string {
	if !result.OK {
		return fmt.Sprintf("Sorry, I couldn't list your %s tasks. Error: %s", status, failureDetail(result))
	}
	if len(result.Tasks) == 0 {
		return fmt.Sprintf("You have no %s tasks.", status)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d %s tasks:\n", len(result.Tasks), status)
	for i, task := range result.Tasks {
		if i == maxListedTasks {
			break
		}
		fmt.Fprintf(&b, "- %s\n", task.Title)
	}
	if remaining := len(result.Tasks) - maxListedTasks; remaining > 0 {
		fmt.Fprintf(&b, "...and %d more tasks.", remaining)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderComplete(id int64, result tools.Result) string {
	if !result.OK {
		return fmt.Sprintf("Sorry, I couldn't mark task %d as complete. Error: %s", id, failureDetail(result))
	}
	return fmt.Sprintf("I've marked task %d as complete. %s.", id, result.Summary)
}

func renderDelete(id int64, result tools.Result) string {
	if !result.OK {
		return fmt.Sprintf("Sorry, I couldn't delete task %d. Error: %s", id, failureDetail(result))
	}
	return fmt.Sprintf("I've deleted task %d. %s.", id, result.Summary)
}

// renderToolResult handles results for provider-chosen tools that have no
// dedicated rule-path template.
func renderToolResult(result tools.Result) string {
	if !result.OK {
		return fmt.Sprintf("Sorry, that didn't work. Error: %s", failureDetail(result))
	}
	return result.Summary + "."
}

func failureDetail(result tools.Result) string {
	if result.Detail != "" {
		return result.Detail
	}
	return result.Summary
}

// renderProviderFailure maps a language-model failure onto a user-facing
// apology by failure kind.
func renderProviderFailure(err error) string {
	switch llm.ClassifyFailure(err) {
	case llm.FailureQuota:
		return "Sorry, I've reached my usage quota. Please try again later or contact the administrator."
	case llm.FailureAuth:
		return "Sorry, there's an issue with the AI service configuration. Please contact the administrator."
	case llm.FailureTimeout:
		return "Sorry, the AI service is taking too long to respond. Please try again later."
	case llm.FailureConnection:
		return "Sorry, I couldn't connect to the AI service. Please try again later."
	}
	return fmt.Sprintf("Sorry, I encountered an error processing your request: %v", err)
}
