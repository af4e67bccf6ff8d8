package generation

import (
	"fmt"
	"strings"
)

// Fixed system instruction: role, tone and accuracy constraints. The
// model is told to cite sources so answers stay checkable against the
// retrieved context.
const systemInstruction = `You are RAMate, a helpful AI assistant for Resident Assistants (RAs). ` +
	`You help RAs find information from their training documents. ` +
	`Give direct, actionable answers in 2-3 paragraphs maximum. ` +
	`Use bullet points for procedures or lists when helpful. ` +
	`Always cite your sources at the end using the format: (Source: Document Name, Page X). ` +
	`Be conversational but professional. ` +
	`If the context does not fully answer the question, say what you know and suggest contacting a supervisor. ` +
	`Never invent policies that are not in the provided context.`

// buildUserPrompt assembles the user turn. The context section is
// omitted entirely when retrieval came back empty, and recent session
// history is prepended so follow-up questions resolve.
func buildUserPrompt(query string, contextBlock string, history []string) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("RECENT CONVERSATION (oldest first):\n")
		b.WriteString(strings.Join(history, "\n"))
		b.WriteString("\n\n")
	}

	if contextBlock != "" {
		fmt.Fprintf(&b, "CONTEXT FROM RA TRAINING DOCUMENTS:\n%s\n\n", contextBlock)
	} else {
		b.WriteString("No relevant training documents were found for this question. " +
			"Say so, answer only from general knowledge if safe, and recommend contacting a supervisor.\n\n")
	}

	fmt.Fprintf(&b, "QUESTION: %s\n\nANSWER (be concise and practical):", query)
	return b.String()
}
