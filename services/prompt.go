package services

import "strings"

// UncertainAnswer is the message the model must emit verbatim when the
// context does not support an answer.
const UncertainAnswer = "I'm not fully sure based on our docs. I've flagged this for a human specialist."

const answerPrompt = `You are a careful customer support assistant.
Answer ONLY using the Context. If the answer is missing or uncertain, say:
"` + UncertainAnswer + `"

Always include bracketed citations like [1], [2] that refer to the "Context Sources".
Return a JSON object: {"answer": "...", "citations": [1,2], "confidence": 0.0-1.0}

Question: {{question}}

Context:
{{context}}

Context Sources:
{{sources}}
`

// BuildPrompt fills the answer prompt with the question, the numbered context
// block and the rendered source list.
func BuildPrompt(question, context, sources string) string {
	return strings.NewReplacer(
		"{{question}}", question,
		"{{context}}", context,
		"{{sources}}", sources,
	).Replace(answerPrompt)
}
