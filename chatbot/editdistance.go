package chatbot

import "github.com/agnivade/levenshtein"

// EditDistance returns the Levenshtein distance between a and b, counted in
// runes: the minimum number of single-rune insertions, deletions or
// substitutions needed to turn one string into the other.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Nearest returns the candidate with the smallest edit distance to input.
// Ties go to the earliest candidate. ok is false when candidates is empty.
func Nearest(input string, candidates []string) (best string, distance int, ok bool) {
	for i, candidate := range candidates {
		d := EditDistance(candidate, input)
		if i == 0 || d < distance {
			best, distance = candidate, d
		}
	}
	return best, distance, len(candidates) > 0
}
