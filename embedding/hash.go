package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashProvider is a pure in-process embedder: tokens are hashed into a
// fixed-size bucket vector which is then L2-normalized. It carries no semantic
// model, but it is deterministic, language-agnostic at the token level, and
// fast, which makes it the reference provider for tests and offline use.
type HashProvider struct {
	dims int
}

// NewHashProvider creates a hashing embedder of the given dimension.
func NewHashProvider(dims int) *HashProvider {
	if dims <= 0 {
		dims = 384
	}
	return &HashProvider{dims: dims}
}

func (p *HashProvider) GetProviderType() string { return "hash" }

func (p *HashProvider) Dimensions() int { return p.dims }

func (p *HashProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dims)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()
		idx := int(sum % uint32(p.dims))
		// Sign derived from a high hash bit spreads tokens over both
		// directions, which keeps unrelated texts close to orthogonal.
		if sum&0x80000000 != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	normalize(vec)
	return vec, nil
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
