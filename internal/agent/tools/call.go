package tools

import (
	"context"
	"fmt"
)

// Call dispatches a named tool invocation with loosely-typed arguments, as
// produced by a language-model resolution. Unknown tools and missing
// required arguments come back as validation failures, never errors.
func (c *Client) Call(ctx context.Context, token, name string, args map[string]any) Result {
	switch name {
	case "add_task":
		title := stringArg(args, "title")
		if title == "" {
			return argFailure(name, "title is required")
		}
		return c.AddTask(ctx, token, AddTaskParams{
			Title:       title,
			Description: stringArg(args, "description"),
			DueDate:     stringArg(args, "due_date"),
		})

	case "list_tasks":
		status := stringArg(args, "status")
		if status == "" {
			status = "all"
		}
		return c.ListTasks(ctx, token, ListTasksParams{Status: status})

	case "update_task":
		id, ok := intArg(args, "task_id")
		if !ok {
			return argFailure(name, "task_id is required")
		}
		return c.UpdateTask(ctx, token, UpdateTaskParams{
			TaskID:      id,
			Title:       stringArg(args, "title"),
			Description: stringArg(args, "description"),
			DueDate:     stringArg(args, "due_date"),
		})

	case "delete_task":
		id, ok := intArg(args, "task_id")
		if !ok {
			return argFailure(name, "task_id is required")
		}
		return c.DeleteTask(ctx, token, DeleteTaskParams{TaskID: id})

	case "mark_task_complete":
		id, ok := intArg(args, "task_id")
		if !ok {
			return argFailure(name, "task_id is required")
		}
		complete, ok := boolArg(args, "complete")
		if !ok {
			return argFailure(name, "complete is required")
		}
		return c.MarkTaskComplete(ctx, token, MarkTaskCompleteParams{TaskID: id, Complete: complete})
	}

	return Result{
		Summary:  "Unknown tool",
		Category: CategoryValidation,
		Detail:   fmt.Sprintf("tool %s not found", name),
	}
}

func argFailure(tool, detail string) Result {
	return Result{
		Summary:  fmt.Sprintf("Error calling %s", tool),
		Category: CategoryValidation,
		Detail:   detail,
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		// JSON numbers decode as float64
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func boolArg(args map[string]any, key string) (bool, bool) {
	b, ok := args[key].(bool)
	return b, ok
}
