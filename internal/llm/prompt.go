package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer with exactly one JSON object:
// either a call into the tool catalog or a plain reply.
const SystemPrompt = `You are a task-list assistant. You never store information or perform task operations yourself; every task operation goes through one of these tools:

- add_task: create a task. args: title (string, required), description (string), due_date (string, YYYY-MM-DD)
- list_tasks: list tasks. args: status (one of "all", "pending", "completed")
- update_task: modify a task. args: task_id (integer, required), title (string), description (string), due_date (string)
- delete_task: remove a task. args: task_id (integer, required)
- mark_task_complete: change completion status. args: task_id (integer, required), complete (boolean, required)

Respond with EXACTLY ONE JSON object and nothing else.
To invoke a tool: {"tool": "<name>", "args": {...}}
To answer without a tool: {"reply": "<text>"}`

// BuildPrompt creates the user prompt for a chat message.
func BuildPrompt(req Request) string {
	return fmt.Sprintf("User message: %s\n\nJSON:", req.Message)
}

// ExtractToolCall parses a model response into a tool call or a plain reply.
// It tolerates markdown fencing and surrounding prose; it returns an error
// only when no usable JSON object can be found.
func ExtractToolCall(content string) (*ToolCall, string, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return nil, "", fmt.Errorf("no JSON object in model output")
	}

	var parsed struct {
		Tool  string         `json:"tool"`
		Args  map[string]any `json:"args"`
		Reply string         `json:"reply"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to parse model output: %w", err)
	}

	if parsed.Tool != "" {
		args := parsed.Args
		if args == nil {
			args = map[string]any{}
		}
		return &ToolCall{Name: parsed.Tool, Args: args}, "", nil
	}
	if parsed.Reply != "" {
		return nil, parsed.Reply, nil
	}
	return nil, "", fmt.Errorf("model output has neither tool nor reply")
}

// extractJSONObject returns the first balanced {...} span in content,
// ignoring any markdown fences around it.
func extractJSONObject(content string) string {
	content = strings.TrimSpace(content)

	start := strings.IndexByte(content, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}
