// Package embedding produces fixed-width lexical term-weighted vectors using
// an online TF-IDF model refit over every text it has seen.
package embedding

import (
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/docmind/backend/pkg/logger"
)

const (
	// DefaultDimension is the fixed output width of the generator.
	DefaultDimension = 1000
	defaultMaxChars  = 2000
	maxDocFreqRatio  = 0.95
)

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

// Generator converts text into TF-IDF vectors. It keeps every cleaned text it
// has embedded and refits vocabulary and IDF weights over the whole corpus on
// each call, so the term weighting reflects all texts seen so far. Vectors
// produced earlier are not recomputed; that staleness is an accepted
// trade-off of the online model.
type Generator struct {
	mu         sync.Mutex
	dimension  int
	maxChars   int
	corpus     []string
	vocabulary map[string]int
	idf        []float64
	stopwords  map[string]struct{}
	rng        *rand.Rand
}

// NewGenerator builds a generator with the given output dimension and input
// character budget. Non-positive values fall back to the defaults.
func NewGenerator(dimension, maxChars int) *Generator {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Generator{
		dimension: dimension,
		maxChars:  maxChars,
		stopwords: defaultStopwords(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Dimension returns the fixed width of produced vectors.
func (g *Generator) Dimension() int { return g.dimension }

// CorpusSize reports how many texts have been folded into the model.
func (g *Generator) CorpusSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.corpus)
}

// Embed returns the TF-IDF vector for text, always of length Dimension.
// Empty text yields a zero vector without touching the corpus. Embed never
// fails: an internal fault degrades to a small-magnitude pseudo-random
// vector.
func (g *Generator) Embed(text string) (vec []float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Embedding generation failed, returning fallback vector", zap.Any("panic", r))
			vec = g.fallbackVector()
		}
	}()

	cleaned := g.clean(text)
	if cleaned == "" {
		return make([]float64, g.dimension)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.corpus = append(g.corpus, cleaned)
	g.refit()
	return g.transform(cleaned)
}

// clean lowercases, strips punctuation, collapses whitespace, and truncates
// to the character budget.
func (g *Generator) clean(text string) string {
	text = strings.ToLower(text)
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > g.maxChars {
		cut := g.maxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = strings.TrimSpace(text[:cut])
	}
	return text
}

// refit rebuilds vocabulary and IDF weights from the full corpus: unigram and
// bigram terms, stop words removed, terms present in more than 95% of texts
// dropped, and the vocabulary capped at the output dimension keeping the most
// frequent terms.
func (g *Generator) refit() {
	docFreq := make(map[string]int)
	termFreq := make(map[string]int)

	for _, text := range g.corpus {
		terms := g.terms(text)
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			termFreq[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	n := len(g.corpus)
	candidates := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if n > 1 && float64(df)/float64(n) > maxDocFreqRatio {
			continue
		}
		candidates = append(candidates, term)
	}

	if len(candidates) > g.dimension {
		sort.Slice(candidates, func(i, j int) bool {
			ti, tj := candidates[i], candidates[j]
			if termFreq[ti] != termFreq[tj] {
				return termFreq[ti] > termFreq[tj]
			}
			return ti < tj
		})
		candidates = candidates[:g.dimension]
	}
	sort.Strings(candidates)

	g.vocabulary = make(map[string]int, len(candidates))
	g.idf = make([]float64, len(candidates))
	for i, term := range candidates {
		g.vocabulary[term] = i
		g.idf[i] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1.0
	}
}

// transform produces the L2-normalized TF-IDF vector for a cleaned text,
// padded with zeros to the fixed dimension.
func (g *Generator) transform(text string) []float64 {
	vec := make([]float64, g.dimension)

	counts := make(map[int]int)
	for _, term := range g.terms(text) {
		if idx, ok := g.vocabulary[term]; ok && idx < g.dimension {
			counts[idx]++
		}
	}
	for idx, count := range counts {
		vec[idx] = float64(count) * g.idf[idx]
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// terms tokenizes a cleaned text into unigrams and bigrams with stop words
// removed.
func (g *Generator) terms(text string) []string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if _, stop := g.stopwords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}

	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

func (g *Generator) fallbackVector() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	vec := make([]float64, g.dimension)
	for i := range vec {
		vec[i] = g.rng.Float64() * 0.1
	}
	return vec
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through",
		"during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
