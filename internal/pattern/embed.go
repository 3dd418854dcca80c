package pattern

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	chromem "github.com/philippgille/chromem-go"
)

const embeddingDims = 128

// TokenHashEmbedding returns a deterministic local embedding function:
// a hashed bag-of-words projected into a fixed number of dimensions and
// L2-normalized. Texts sharing vendor names or keywords land close under
// cosine similarity, which is all the pattern index needs. Deployments
// with a real embedding service plug their own chromem.EmbeddingFunc in.
func TokenHashEmbedding() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, embeddingDims)

		for _, token := range tokenize(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			sum := h.Sum32()
			// Low bits pick the bucket, one higher bit picks the sign so
			// unrelated tokens cancel rather than pile up.
			bucket := sum % embeddingDims
			if sum&(1<<30) != 0 {
				vec[bucket]--
			} else {
				vec[bucket]++
			}
		}

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			vec[0] = 1
			return vec, nil
		}

		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
		return vec, nil
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
