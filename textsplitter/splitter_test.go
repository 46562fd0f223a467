package textsplitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

func TestNewTextSplitter(t *testing.T) {
	s, err := NewTextSplitter(&config.SplitterConfig{Provider: "character", ChunkSize: 100, ChunkOverlap: 10})
	require.NoError(t, err)
	assert.IsType(t, &characterSplitter{}, s)

	_, err = NewTextSplitter(&config.SplitterConfig{Provider: "nope"})
	assert.Error(t, err)

	_, err = NewTextSplitter(&config.SplitterConfig{Provider: "character", ChunkSize: 10, ChunkOverlap: 10})
	assert.Error(t, err)
}

func TestCharacterSplitter(t *testing.T) {
	s := &characterSplitter{chunkSize: 10, overlap: 2}

	chunks, err := s.SplitText("short")
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, chunks)

	chunks, err = s.SplitText("")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	text := strings.Repeat("abcdefgh ", 5)
	chunks, err = s.SplitText(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 10)
	}
}

func TestCharacterSplitterArabic(t *testing.T) {
	s := &characterSplitter{chunkSize: 8, overlap: 0}
	text := "الصلاة عماد الدين والزكاة ركن من أركان الإسلام"
	chunks, err := s.SplitText(text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	// Chunk boundaries must land on rune edges.
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
		assert.LessOrEqual(t, len([]rune(chunk)), 8)
	}
}

func TestCreateDocuments(t *testing.T) {
	s := &characterSplitter{chunkSize: 12, overlap: 0}
	texts := []string{"first block of text here", "tiny"}
	metas := []map[string]any{{schema.MetaMadhab: "maliki"}}

	docs, err := CreateDocuments(s, texts, metas)
	require.NoError(t, err)
	require.Greater(t, len(docs), 1)

	seen := map[string]bool{}
	for _, doc := range docs {
		require.NotEmpty(t, doc.ID)
		assert.False(t, seen[doc.ID], "duplicate document ID %s", doc.ID)
		seen[doc.ID] = true
		assert.Contains(t, doc.Metadata, schema.MetaChunkIndex)
	}
	// Metadata only applies to the text it was given for.
	assert.Equal(t, "maliki", docs[0].Metadata[schema.MetaMadhab])
	last := docs[len(docs)-1]
	assert.Equal(t, "tiny", last.Content)
	assert.NotContains(t, last.Metadata, schema.MetaMadhab)
}

func TestTokenSplitter(t *testing.T) {
	s, err := newTokenSplitter(8, 2)
	require.NoError(t, err)

	chunks, err := s.SplitText("")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	short := "hello world"
	chunks, err = s.SplitText(short)
	require.NoError(t, err)
	assert.Equal(t, []string{short}, chunks)

	long := strings.Repeat("the quick brown fox jumps over the lazy dog ", 10)
	chunks, err = s.SplitText(long)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
}
