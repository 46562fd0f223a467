package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("What breaks wudu?", []string{"ctx one", "ctx two"}, "\n\n")
	assert.Contains(t, prompt, "Context:\nctx one\n\nctx two")
	assert.Contains(t, prompt, "Question: What breaks wudu?")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestBuildPromptNoContext(t *testing.T) {
	assert.Equal(t, "hello", BuildPrompt("hello", nil, "\n"))
	// Whitespace-only blocks are dropped, not rendered as empty sections.
	assert.Equal(t, "hello", BuildPrompt("hello", []string{"", "   ", "\n"}, "\n"))
}

func TestBuildPromptSkipsEmptyBlocks(t *testing.T) {
	prompt := BuildPrompt("q", []string{"", "real block", "  "}, "\n---\n")
	assert.Contains(t, prompt, "real block")
	assert.NotContains(t, prompt, "---")
}

func TestBuildComparativePrompt(t *testing.T) {
	sections := map[string]string{
		"maliki": "maliki position",
		"hanafi": "hanafi position",
	}
	prompt := BuildComparativePrompt("raising hands in prayer", sections, []string{"maliki", "hanafi", "shafii"})

	assert.Contains(t, prompt, "=== MALIKI ===\nmaliki position")
	assert.Contains(t, prompt, "=== HANAFI ===\nhanafi position")
	assert.NotContains(t, prompt, "SHAFII")
	assert.Contains(t, prompt, "Question: raising hands in prayer")

	// Section order follows the caller's order, not map iteration.
	assert.Less(t, strings.Index(prompt, "MALIKI"), strings.Index(prompt, "HANAFI"))
}
