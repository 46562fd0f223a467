package textsplitter

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "cl100k_base"

// tokenSplitter slides a token window over the tiktoken encoding of the text.
// Chunk boundaries land on token edges, so every chunk decodes back to valid
// text.
type tokenSplitter struct {
	enc       *tiktoken.Tiktoken
	chunkSize int
	overlap   int
}

func newTokenSplitter(chunkSize, overlap int) (*tokenSplitter, error) {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", tokenEncoding, err)
	}
	return &tokenSplitter{enc: enc, chunkSize: chunkSize, overlap: overlap}, nil
}

func (s *tokenSplitter) SplitText(text string) ([]string, error) {
	tokens := s.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) <= s.chunkSize {
		return []string{text}, nil
	}

	step := s.chunkSize - s.overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + s.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, s.enc.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}
