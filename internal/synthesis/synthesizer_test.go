package synthesis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/pkg/errs"
)

func chunkWith(text, source string) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		ID:              "chunk-1",
		Text:            text,
		SourceFile:      source,
		SimilarityScore: 0.8,
	}
}

func TestSynthesizeRejectsEmptyQuery(t *testing.T) {
	s := NewSynthesizer()

	_, err := s.Synthesize("", []domain.RetrievedChunk{chunkWith("text", "a.txt")}, nil)
	assert.True(t, errs.Is(err, errs.KindGeneration))
}

func TestSynthesizeNoChunksReturnsFixedResponse(t *testing.T) {
	s := NewSynthesizer()

	response, err := s.Synthesize("what is kubernetes", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, noContextResponse, response)
}

func TestClassifyShapes(t *testing.T) {
	s := NewSynthesizer()

	cases := map[string]string{
		"what is kubernetes":       "explanation",
		"explain the architecture": "explanation",
		"how to deploy the app":    "process",
		"list the components":      "list",
		"when was it released":     "temporal",
		"where is the office":      "location",
		"why does it fail":         "causal",
		"tell me more":             "general",
	}

	for query, want := range cases {
		assert.Equal(t, want, s.classify(query).name, "query: %s", query)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	s := NewSynthesizer()

	// "what" precedes "when" in the shape table
	assert.Equal(t, "explanation", s.classify("what happened and when").name)
}

func TestSynthesizeExplanationCitesSources(t *testing.T) {
	s := NewSynthesizer()

	chunks := []domain.RetrievedChunk{
		chunkWith("Kubernetes is a container orchestration platform that automates deployment. It schedules workloads across many cluster nodes.", "intro.txt"),
	}

	response, err := s.Synthesize("what is kubernetes", chunks, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(response, "Based on the uploaded documents:"))
	assert.Contains(t, response, "1. ")
	assert.Contains(t, response, "This information comes from: intro.txt")
}

func TestSynthesizeProcessNumbersSteps(t *testing.T) {
	s := NewSynthesizer()

	chunks := []domain.RetrievedChunk{
		chunkWith("First you deploy the manifest to the cluster control plane. Then the deploy controller creates the pods automatically.", "guide.txt"),
	}

	response, err := s.Synthesize("how to deploy", chunks, nil)
	require.NoError(t, err)
	assert.Contains(t, response, "Step 1:")
}

func TestSynthesizeNoRelevantSentencesFallsBack(t *testing.T) {
	s := NewSynthesizer()

	// no query word appears in the chunk text
	chunks := []domain.RetrievedChunk{
		chunkWith("Bananas ripen faster when stored near apples in warm rooms.", "fruit.txt"),
	}

	response, err := s.Synthesize("what is kubernetes", chunks, nil)
	require.NoError(t, err)
	assert.Equal(t, "Based on the documents, I couldn't find a clear explanation for your question.", response)
}

func TestExtractRelevantCapsSentences(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("The replication service copies data between storage nodes continuously. ")
	}

	relevant := extractRelevant("replication service", []domain.RetrievedChunk{chunkWith(b.String(), "a.txt")})
	assert.Len(t, relevant, maxRelevantSentences)
}

func TestExtractRelevantSkipsShortSentences(t *testing.T) {
	relevant := extractRelevant("cache", []domain.RetrievedChunk{chunkWith("cache is fast. The cache layer stores frequently accessed values in memory.", "a.txt")})
	require.Len(t, relevant, 1)
	assert.Contains(t, relevant[0], "cache layer")
}

func TestHandleMessageRetrievalResult(t *testing.T) {
	s := NewSynthesizer()

	msg := protocol.New("CoordinatorAgent", Name, protocol.RetrievalResult, "trace-1", &protocol.RetrievalResultPayload{
		Status: "success",
		Query:  "what is kubernetes",
		RetrievedChunks: []domain.RetrievedChunk{
			chunkWith("Kubernetes is a container orchestration platform used in production.", "intro.txt"),
		},
		Sources:      []string{"intro.txt (chunk 0)"},
		TotalResults: 1,
	})

	resp := s.HandleMessage(msg)
	require.Equal(t, protocol.LLMResponse, resp.Type)

	payload := resp.Payload.(*protocol.LLMResponsePayload)
	assert.Equal(t, "success", payload.Status)
	assert.Equal(t, 1, payload.ContextChunksUsed)
	assert.Equal(t, []string{"intro.txt (chunk 0)"}, payload.Sources)
	assert.NotEmpty(t, payload.Response)
}

func TestHandleMessageEmptyRetrievalYieldsNoContextResponse(t *testing.T) {
	s := NewSynthesizer()

	msg := protocol.New("CoordinatorAgent", Name, protocol.RetrievalResult, "trace-2", &protocol.RetrievalResultPayload{
		Status: "success",
		Query:  "what is kubernetes",
	})

	resp := s.HandleMessage(msg)
	require.Equal(t, protocol.LLMResponse, resp.Type)

	payload := resp.Payload.(*protocol.LLMResponsePayload)
	assert.Equal(t, noContextResponse, payload.Response)
	assert.Equal(t, []string{}, payload.Sources)
	assert.Zero(t, payload.ContextChunksUsed)
}

func TestHandleMessageRejectsUnsupportedType(t *testing.T) {
	s := NewSynthesizer()

	msg := protocol.New("CoordinatorAgent", Name, protocol.QueryRequest, "trace-3", &protocol.QueryRequestPayload{Query: "q"})
	resp := s.HandleMessage(msg)

	require.Equal(t, protocol.Error, resp.Type)
	assert.Contains(t, resp.Payload.(*protocol.ErrorPayload).Error, "unsupported message type")
}

func TestSourceNamesDeduplicates(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		chunkWith("a", "one.txt"),
		chunkWith("b", "two.txt"),
		chunkWith("c", "one.txt"),
		chunkWith("d", ""),
	}

	assert.Equal(t, []string{"one.txt", "two.txt", "Unknown"}, sourceNames(chunks))
}
