// Package synthesis turns a query plus retrieved chunks into a cited,
// template-based answer. Classification is rule-based: an ordered list of
// keyword predicates picks the response shape, first match wins.
package synthesis

import (
	"regexp"
	"strings"

	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/pkg/errs"
)

// Name identifies the agent in message envelopes.
const Name = "SynthesisAgent"

const noContextResponse = "I don't have enough information in the uploaded documents to answer your question. " +
	"Please make sure you've uploaded relevant documents and try asking a more specific question " +
	"about the content in those documents."

const (
	maxRelevantSentences = 5
	minSentenceLength    = 20
	maxListItems         = 10
)

var sentencePattern = regexp.MustCompile(`[.!?]+`)

type renderFunc func(relevant []string, chunks []domain.RetrievedChunk) string

type responseShape struct {
	name     string
	keywords []string
	render   renderFunc
}

// Synthesizer holds the shape table in priority order.
type Synthesizer struct {
	shapes  []responseShape
	general responseShape
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		shapes: []responseShape{
			{name: "explanation", keywords: []string{"what", "what is", "define", "explain"}, render: renderExplanation},
			{name: "process", keywords: []string{"how", "how to", "process", "procedure"}, render: renderProcess},
			{name: "list", keywords: []string{"list", "show", "enumerate", "what are"}, render: renderList},
			{name: "temporal", keywords: []string{"when", "date", "time"}, render: renderTemporal},
			{name: "location", keywords: []string{"where", "location"}, render: renderLocation},
			{name: "causal", keywords: []string{"why", "reason", "because"}, render: renderCausal},
		},
		general: responseShape{name: "general", render: renderGeneral},
	}
}

// Synthesize produces the answer text. An empty chunk list yields the fixed
// insufficient-context message.
func (s *Synthesizer) Synthesize(query string, chunks []domain.RetrievedChunk, history []domain.HistoryTurn) (string, error) {
	if query == "" {
		return "", errs.Generation("no query provided for response generation")
	}
	if len(chunks) == 0 {
		return noContextResponse, nil
	}

	relevant := extractRelevant(query, chunks)
	shape := s.classify(query)
	return shape.render(relevant, chunks), nil
}

// HandleMessage dispatches a protocol message to the synthesizer.
func (s *Synthesizer) HandleMessage(msg protocol.Message) protocol.Message {
	switch msg.Type {
	case protocol.RetrievalResult:
		payload, ok := msg.Payload.(*protocol.RetrievalResultPayload)
		if !ok {
			return protocol.NewError(msg, Name, "malformed RETRIEVAL_RESULT payload")
		}
		response, err := s.Synthesize(payload.Query, payload.RetrievedChunks, payload.ConversationHistory)
		if err != nil {
			return protocol.NewError(msg, Name, errs.MessageOf(err))
		}
		sources := payload.Sources
		if sources == nil {
			sources = []string{}
		}
		return protocol.NewResponse(msg, Name, protocol.LLMResponse, &protocol.LLMResponsePayload{
			Status:            "success",
			Query:             payload.Query,
			Response:          response,
			Sources:           sources,
			ContextChunksUsed: len(payload.RetrievedChunks),
		})
	default:
		err := errs.Routing("unsupported message type: %s", msg.Type)
		return protocol.NewError(msg, Name, errs.MessageOf(err))
	}
}

// classify picks the first shape whose keywords appear in the query.
func (s *Synthesizer) classify(query string) responseShape {
	queryLower := strings.ToLower(query)
	for _, shape := range s.shapes {
		for _, keyword := range shape.keywords {
			if strings.Contains(queryLower, keyword) {
				return shape
			}
		}
	}
	return s.general
}

// extractRelevant scores chunks by query-word overlap and collects sentences
// that mention a query word, capped at maxRelevantSentences across all
// chunks. Chunks with zero overlap contribute nothing.
func extractRelevant(query string, chunks []domain.RetrievedChunk) []string {
	queryWords := wordSet(query)

	var relevant []string
	for _, chunk := range chunks {
		if overlap(queryWords, wordSet(chunk.Text)) == 0 {
			continue
		}
		for _, sentence := range sentencePattern.Split(chunk.Text, -1) {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) <= minSentenceLength {
				continue
			}
			if containsAny(strings.ToLower(sentence), queryWords) {
				relevant = append(relevant, sentence)
			}
		}
	}

	if len(relevant) > maxRelevantSentences {
		relevant = relevant[:maxRelevantSentences]
	}
	return relevant
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

func containsAny(text string, words map[string]struct{}) bool {
	for w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
