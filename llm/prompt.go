package llm

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the retrieved context blocks and the question into a
// single completion prompt. Blocks are joined with sep.
func BuildPrompt(query string, contexts []string, sep string) string {
	nonEmpty := contexts[:0:0]
	for _, c := range contexts {
		if strings.TrimSpace(c) != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	contexts = nonEmpty
	if len(contexts) == 0 {
		return query
	}
	var sb strings.Builder
	sb.WriteString("Answer the question using the context below. If the context does not contain the answer, say so.\n\nContext:\n")
	sb.WriteString(strings.Join(contexts, sep))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\nAnswer:")
	return sb.String()
}

// BuildComparativePrompt renders per-school context sections for a question
// answered across several schools at once. Sections keep their school headers
// so the model can attribute each position.
func BuildComparativePrompt(query string, sections map[string]string, order []string) string {
	var sb strings.Builder
	sb.WriteString("Answer the question by comparing the positions of the Islamic schools below. Attribute every position to its school.\n")
	for _, key := range order {
		section, ok := sections[key]
		if !ok || section == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n=== %s ===\n%s\n", strings.ToUpper(key), section))
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\nAnswer:")
	return sb.String()
}
