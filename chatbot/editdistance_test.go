package chatbot

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"how are you", "how r u", 4},
		{"你好吗", "你好", 1},
		{"前男友", "前女友", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EditDistance(tt.a, tt.b), "EditDistance(%q, %q)", tt.a, tt.b)
	}
}

func TestEditDistanceProperties(t *testing.T) {
	words := []string{"", "a", "ab", "kitten", "sitting", "how are you", "how r u", "大白", "bigwhite", "？?!"}

	for _, a := range words {
		assert.Equal(t, 0, EditDistance(a, a), "identity for %q", a)
		for _, b := range words {
			d := EditDistance(a, b)
			assert.Equal(t, d, EditDistance(b, a), "symmetry for %q/%q", a, b)

			lenDiff := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
			if lenDiff < 0 {
				lenDiff = -lenDiff
			}
			assert.GreaterOrEqual(t, d, lenDiff, "length lower bound for %q/%q", a, b)
		}
	}
}

func TestNearest(t *testing.T) {
	best, d, ok := Nearest("how r u", []string{"hello", "how are you", "bye"})
	assert.True(t, ok)
	assert.Equal(t, "how are you", best)
	assert.Equal(t, 4, d)

	// equal distances keep the first candidate seen
	best, _, _ = Nearest("abx", []string{"abc", "abd"})
	assert.Equal(t, "abc", best)
	best, _, _ = Nearest("abx", []string{"abd", "abc"})
	assert.Equal(t, "abd", best)

	_, _, ok = Nearest("anything", nil)
	assert.False(t, ok)
}
