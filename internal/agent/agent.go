package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rensmac/tasktalk/internal/agent/tools"
	"github.com/rensmac/tasktalk/internal/llm"
	"github.com/rs/zerolog/log"
)

// Agent resolves a free-text chat message to exactly one tool invocation and
// renders the outcome as text. When a language-model provider is configured
// it delegates classification and extraction to it; otherwise, and whenever
// the provider's output is unusable, the rule-based path takes over.
// Provider failures surface as categorized apologies, never as errors.
type Agent struct {
	tools           *tools.Client
	providers       *llm.Router
	providerTimeout time.Duration
}

// New creates an agent. providers may be nil for a purely rule-based agent.
func New(toolClient *tools.Client, providers *llm.Router, providerTimeout time.Duration) *Agent {
	if providerTimeout <= 0 {
		providerTimeout = 30 * time.Second
	}
	return &Agent{
		tools:           toolClient,
		providers:       providers,
		providerTimeout: providerTimeout,
	}
}

// Resolve processes one chat message under the caller's bearer token and
// always returns response text.
func (a *Agent) Resolve(ctx context.Context, message, token string) string {
	if a.providers != nil && a.providers.HasDefault() {
		if text, handled := a.resolveWithProvider(ctx, message, token); handled {
			return text
		}
		log.Debug().Msg("provider output unusable, using rule-based resolution")
	}
	return a.resolveWithRules(ctx, message, token)
}

// resolveWithProvider delegates to the configured language model. The second
// return is false when the model produced nothing usable and the rule-based
// path should run instead.
func (a *Agent) resolveWithProvider(ctx context.Context, message, token string) (string, bool) {
	provider, err := a.providers.GetProvider("")
	if err != nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	defer cancel()

	resp, err := provider.ResolveTool(ctx, llm.Request{Message: message}, "")
	if err != nil {
		log.Warn().Err(err).Str("provider", provider.Name()).Msg("provider resolution failed")
		return renderProviderFailure(err), true
	}

	if resp.ToolCall != nil {
		result := a.tools.Call(ctx, token, resp.ToolCall.Name, resp.ToolCall.Args)
		return a.renderToolCall(resp.ToolCall, result), true
	}
	if resp.Reply != "" {
		return resp.Reply, true
	}
	return "", false
}

func (a *Agent) renderToolCall(call *llm.ToolCall, result tools.Result) string {
	switch call.Name {
	case "add_task":
		title, _ := call.Args["title"].(string)
		return renderAdd(title, result)
	case "list_tasks":
		status, _ := call.Args["status"].(string)
		if status == "" {
			status = "all"
		}
		return renderList(status, result)
	case "mark_task_complete":
		return renderToolResult(result)
	case "delete_task":
		return renderToolResult(result)
	}
	return renderToolResult(result)
}

// resolveWithRules is the deterministic keyword path.
func (a *Agent) resolveWithRules(ctx context.Context, message, token string) string {
	switch Classify(message) {
	case IntentAdd:
		title, dueDate := ExtractAddParams(message)
		if title == "" {
			return "I can add a task for you. What should it be called?"
		}
		result := a.tools.AddTask(ctx, token, tools.AddTaskParams{
			Title:       title,
			Description: fmt.Sprintf("Added from chat: %s", message),
			DueDate:     dueDate,
		})
		return renderAdd(title, result)

	case IntentList:
		status := ExtractListStatus(message)
		result := a.tools.ListTasks(ctx, token, tools.ListTasksParams{Status: status})
		return renderList(status, result)

	case IntentComplete:
		id, ok := ExtractTaskID(message)
		if !ok {
			return "I can help mark a task as complete. Please specify which task by number."
		}
		result := a.tools.MarkTaskComplete(ctx, token, tools.MarkTaskCompleteParams{TaskID: id, Complete: true})
		return renderComplete(id, result)

	case IntentDelete:
		id, ok := ExtractTaskID(message)
		if !ok {
			return "I can help delete a task. Please specify which task by number."
		}
		result := a.tools.DeleteTask(ctx, token, tools.DeleteTaskParams{TaskID: id})
		return renderDelete(id, result)
	}

	return helpText
}
