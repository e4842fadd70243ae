package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmind/backend/internal/domain"
)

func TestMessageRoundTrip(t *testing.T) {
	original := New("APIServer", "CoordinatorAgent", QueryRequest, "trace-1", &QueryRequestPayload{
		Query: "what is the refund policy",
		ConversationHistory: []domain.HistoryTurn{
			{Role: "user", Content: "hello"},
		},
	})

	data, err := original.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, original.Sender, decoded.Sender)
	assert.Equal(t, original.Receiver, decoded.Receiver)
	assert.Equal(t, original.Type, decoded.Type)
	assert.Equal(t, original.TraceID, decoded.TraceID)
	assert.Equal(t, original.Timestamp, decoded.Timestamp)

	payload, ok := decoded.Payload.(*QueryRequestPayload)
	require.True(t, ok)
	assert.Equal(t, "what is the refund policy", payload.Query)
	require.Len(t, payload.ConversationHistory, 1)
	assert.Equal(t, "user", payload.ConversationHistory[0].Role)
}

func TestMessageRoundTripErrorPayload(t *testing.T) {
	original := NewError(
		New("APIServer", "IngestionAgent", DocumentUpload, "trace-2", &DocumentUploadPayload{FileName: "a.txt"}),
		"IngestionAgent",
		"something broke",
	)

	data, err := original.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)

	payload, ok := decoded.Payload.(*ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, "something broke", payload.Error)
	assert.Equal(t, DocumentUpload, payload.OriginalType)
}

func TestFromJSONFillsMissingTimestamp(t *testing.T) {
	raw := []byte(`{
		"sender": "APIServer",
		"receiver": "CoordinatorAgent",
		"type": "QUERY_REQUEST",
		"trace_id": "trace-3",
		"payload": {"query": "hello"}
	}`)

	msg, err := FromJSON(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Timestamp)
}

func TestFromJSONRejectsUnknownType(t *testing.T) {
	raw := []byte(`{
		"sender": "a",
		"receiver": "b",
		"type": "SOMETHING_ELSE",
		"trace_id": "trace-4",
		"payload": {}
	}`)

	_, err := FromJSON(raw)
	assert.Error(t, err)
}

func TestFromJSONRejectsMissingPayload(t *testing.T) {
	raw := []byte(`{
		"sender": "a",
		"receiver": "b",
		"type": "QUERY_REQUEST",
		"trace_id": "trace-5"
	}`)

	_, err := FromJSON(raw)
	assert.Error(t, err)
}

func TestNewResponseAddressesOriginalSender(t *testing.T) {
	original := New("APIServer", "CoordinatorAgent", QueryRequest, "trace-6", &QueryRequestPayload{Query: "q"})
	response := NewResponse(original, "CoordinatorAgent", Success, &SuccessPayload{Status: "success"})

	assert.Equal(t, "CoordinatorAgent", response.Sender)
	assert.Equal(t, "APIServer", response.Receiver)
	assert.Equal(t, "trace-6", response.TraceID)
}
