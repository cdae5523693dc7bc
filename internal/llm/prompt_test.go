package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToolCall_Tool(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bare object", `{"tool": "add_task", "args": {"title": "buy milk"}}`},
		{"fenced", "```json\n{\"tool\": \"add_task\", \"args\": {\"title\": \"buy milk\"}}\n```"},
		{"surrounding prose", `Sure! Here is the call: {"tool": "add_task", "args": {"title": "buy milk"}} Hope that helps.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, reply, err := ExtractToolCall(tt.content)
			require.NoError(t, err)
			require.NotNil(t, call)
			assert.Empty(t, reply)
			assert.Equal(t, "add_task", call.Name)
			assert.Equal(t, "buy milk", call.Args["title"])
		})
	}
}

func TestExtractToolCall_Reply(t *testing.T) {
	call, reply, err := ExtractToolCall(`{"reply": "You have 3 tasks."}`)
	require.NoError(t, err)
	assert.Nil(t, call)
	assert.Equal(t, "You have 3 tasks.", reply)
}

func TestExtractToolCall_BracesInStrings(t *testing.T) {
	call, _, err := ExtractToolCall(`{"tool": "add_task", "args": {"title": "fix {braces} bug"}}`)
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, "fix {braces} bug", call.Args["title"])
}

func TestExtractToolCall_MissingArgs(t *testing.T) {
	call, _, err := ExtractToolCall(`{"tool": "list_tasks"}`)
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.NotNil(t, call.Args)
}

func TestExtractToolCall_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no json", "I am not able to help with that."},
		{"unbalanced", `{"tool": "add_task"`},
		{"neither tool nor reply", `{"something": "else"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ExtractToolCall(tt.content)
			assert.Error(t, err)
		})
	}
}
