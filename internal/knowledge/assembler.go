package knowledge

import (
	"strings"

	knowledgemodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/knowledge"
)

// DefaultContextBudget 是拼接上下文的默认字符上限。
const DefaultContextBudget = 150000

// Assemble concatenates the documents in store order into one grounding
// string and reports whether it was cut down to the budget. The cut is a
// hard character-offset truncation; it may split a document or a word.
func Assemble(docs []knowledgemodel.Document, budget int) (string, bool) {
	if len(docs) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, "--- Document: "+doc.Name+" ---\n"+doc.Content)
	}

	text := strings.Join(parts, "\n\n")
	if budget > 0 && len(text) > budget {
		return text[:budget], true
	}
	return text, false
}
