package wordlist

import "fmt"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Filter keeps the words accepted by keep. It fails when nothing is left.
func Filter(words []string, keep FilterFunc) ([]string, error) {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if keep(w) {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable words left after filtering %d", len(words))
	}
	return out, nil
}

// ASCIILetters accepts non-empty words made of a-z only.
func ASCIILetters(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
