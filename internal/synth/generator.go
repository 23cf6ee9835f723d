// Package synth builds synthetic key-down sessions from random text.
package synth

import (
	"math/rand"
	"time"
	"unicode"
)

// Generator produces randomized text to type.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator for seed. A zero seed uses the current time.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks count words uniformly and applies caps/punctuation rules.
func (g *Generator) Generate(words []string, count int, capsPct, punctPct float64, punctSet []rune) []string {
	if len(words) == 0 {
		return nil
	}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, g.decorate(words[g.rnd.Intn(len(words))], capsPct, punctPct, punctSet))
	}
	return result
}

// GenerateWeighted picks words with a bias toward those typed on costly keys.
// Each costly key in a word adds factor to the word's weight.
func (g *Generator) GenerateWeighted(words []string, count int, capsPct, punctPct float64, punctSet []rune, costly map[string]struct{}, factor float64) []string {
	if len(words) == 0 {
		return nil
	}
	if len(costly) == 0 || factor <= 0 {
		return g.Generate(words, count, capsPct, punctPct, punctSet)
	}
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		hits := costlyHits(word, costly)
		w := 1.0 + float64(hits)*factor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(words) - 1
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, g.decorate(words[idx], capsPct, punctPct, punctSet))
	}
	return result
}

func costlyHits(word string, costly map[string]struct{}) int {
	hits := 0
	for _, r := range word {
		stroke, ok := KeyFor(r)
		if !ok {
			continue
		}
		if _, ok := costly[stroke.Key]; ok {
			hits++
		}
	}
	return hits
}

func (g *Generator) decorate(word string, capsPct, punctPct float64, punctSet []rune) string {
	word = applyCaps(g.rnd, word, capsPct)
	return applyPunct(g.rnd, word, punctPct, punctSet)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
