package services

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// HashingVectorizer folds a token stream into a fixed-dimension term
// count vector by bucket hashing. It is stateless apart from its
// dimension, so transform results are stable across processes and
// restarts as long as the dimension matches.
type HashingVectorizer struct {
	Dims int `json:"dims"`
}

// NewHashingVectorizer creates a vectorizer with the given dimension
func NewHashingVectorizer(dims int) *HashingVectorizer {
	if dims <= 0 {
		dims = 256
	}
	return &HashingVectorizer{Dims: dims}
}

// Transform maps text to its hashed bag-of-words vector. Tokens are
// lowercased runs of letters and digits, two runes or longer.
func (v *HashingVectorizer) Transform(text string) []float64 {
	vec := make([]float64, v.Dims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%v.Dims]++
	}
	return vec
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
