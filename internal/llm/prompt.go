package llm

import (
	"fmt"
	"strings"

	"askpdf/internal/domain"
)

// BuildPrompt renders the deterministic generation prompt: the recent
// conversation window as "role: content" lines, the retrieved document
// context, and the current question. The instruction block pins the model to
// the provided context and requires it to say so when the context is not
// enough, so an empty retrieval still yields a well-formed answer.
func BuildPrompt(window []domain.Turn, context, question string) string {
	return fmt.Sprintf(`You are a helpful AI assistant that answers questions based on the provided context and conversation history.

Conversation History:
%s

Current Context from Documents:
%s

Current Question: %s

Instructions:
1. Answer based primarily on the document context provided
2. Consider the conversation history for better understanding
3. If the information is not in the context, say so clearly
4. Be concise but comprehensive
5. Reference specific parts of the documents when relevant

Answer:`, FormatHistory(window), context, question)
}

// FormatHistory renders turns as newline-separated "role: content" lines.
func FormatHistory(turns []domain.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, t.Content))
	}
	return strings.Join(lines, "\n")
}

// JoinPassages concatenates retrieved passages with a blank-line separator,
// preserving similarity rank order.
func JoinPassages(passages []string) string {
	return strings.Join(passages, "\n\n")
}
