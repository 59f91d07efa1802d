package llm_test

import (
	"strings"
	"testing"

	"askpdf/internal/domain"
	"askpdf/internal/llm"
)

func TestBuildPrompt(t *testing.T) {
	window := []domain.Turn{
		{Role: domain.RoleHuman, Content: "What is the report about?"},
		{Role: domain.RoleAI, Content: "It covers quarterly revenue."},
	}

	prompt := llm.BuildPrompt(window, "Revenue grew 12% in Q3.", "How much did revenue grow?")

	mustContain := []string{
		"human: What is the report about?",
		"ai: It covers quarterly revenue.",
		"Revenue grew 12% in Q3.",
		"Current Question: How much did revenue grow?",
		"If the information is not in the context, say so clearly",
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	window := []domain.Turn{{Role: domain.RoleHuman, Content: "hi"}}

	a := llm.BuildPrompt(window, "ctx", "q")
	b := llm.BuildPrompt(window, "ctx", "q")
	if a != b {
		t.Error("prompt rendering must be deterministic")
	}
}

func TestBuildPrompt_EmptyHistoryAndContext(t *testing.T) {
	prompt := llm.BuildPrompt(nil, "", "What is X?")

	if !strings.Contains(prompt, "Current Question: What is X?") {
		t.Error("prompt should contain the question")
	}
	if !strings.Contains(prompt, "Conversation History:") {
		t.Error("prompt should keep the history section even when empty")
	}
}

func TestFormatHistory(t *testing.T) {
	tests := []struct {
		name     string
		turns    []domain.Turn
		expected string
	}{
		{
			"empty",
			nil,
			"",
		},
		{
			"single turn",
			[]domain.Turn{{Role: domain.RoleHuman, Content: "hello"}},
			"human: hello",
		},
		{
			"alternating roles",
			[]domain.Turn{
				{Role: domain.RoleHuman, Content: "hello"},
				{Role: domain.RoleAI, Content: "hi"},
			},
			"human: hello\nai: hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := llm.FormatHistory(tt.turns); got != tt.expected {
				t.Errorf("FormatHistory() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestJoinPassages(t *testing.T) {
	got := llm.JoinPassages([]string{"first", "second", "third"})
	want := "first\n\nsecond\n\nthird"
	if got != want {
		t.Errorf("JoinPassages() = %q, want %q", got, want)
	}

	if llm.JoinPassages(nil) != "" {
		t.Error("no passages must render as an empty context")
	}
}
