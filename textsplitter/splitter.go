// Package textsplitter chunks raw text ahead of embedding. Two strategies are
// available: rune-window splitting and token-window splitting backed by the
// tiktoken vocabulary.
package textsplitter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

// TextSplitter splits a text into chunks sized for embedding.
type TextSplitter interface {
	SplitText(text string) ([]string, error)
}

// NewTextSplitter builds the configured splitter.
func NewTextSplitter(cfg *config.SplitterConfig) (TextSplitter, error) {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 500
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "character":
		return &characterSplitter{chunkSize: chunkSize, overlap: overlap}, nil
	case "token":
		return newTokenSplitter(chunkSize, overlap)
	default:
		return nil, fmt.Errorf("unknown splitter provider: %s", cfg.Provider)
	}
}

// CreateDocuments runs the splitter over each text and wraps every chunk in a
// Document carrying a fresh UUID, the chunk index, and a copy of the matching
// metadata map. metadatas may be shorter than texts; missing entries mean no
// metadata.
func CreateDocuments(splitter TextSplitter, texts []string, metadatas []map[string]any) ([]schema.Document, error) {
	var docs []schema.Document
	now := time.Now()
	for i, text := range texts {
		chunks, err := splitter.SplitText(text)
		if err != nil {
			return nil, fmt.Errorf("split text %d: %w", i, err)
		}
		for j, chunk := range chunks {
			meta := map[string]interface{}{schema.MetaChunkIndex: j}
			if i < len(metadatas) {
				for k, v := range metadatas[i] {
					meta[k] = v
				}
			}
			docs = append(docs, schema.Document{
				ID:        uuid.NewString(),
				Content:   chunk,
				Metadata:  meta,
				CreatedAt: now,
			})
		}
	}
	return docs, nil
}

// characterSplitter slides a rune window of chunkSize with the given overlap.
// Splitting on runes keeps Arabic text intact; a byte window could cut a
// codepoint in half.
type characterSplitter struct {
	chunkSize int
	overlap   int
}

func (s *characterSplitter) SplitText(text string) ([]string, error) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil, nil
	}
	if len(runes) <= s.chunkSize {
		return []string{string(runes)}, nil
	}

	step := s.chunkSize - s.overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
