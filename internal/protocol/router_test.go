package protocol

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(traceID string, n int) Message {
	return New("a", "b", QueryRequest, traceID, &QueryRequestPayload{
		Query: fmt.Sprintf("query %d", n),
	})
}

func TestRouterPreservesArrivalOrder(t *testing.T) {
	router := NewRouter()
	for i := 0; i < 5; i++ {
		router.Route(testMessage("trace-a", i))
	}

	history := router.History("trace-a")
	require.Len(t, history, 5)
	for i, msg := range history {
		payload := msg.Payload.(*QueryRequestPayload)
		assert.Equal(t, fmt.Sprintf("query %d", i), payload.Query)
	}
}

func TestRouterSeparatesTraces(t *testing.T) {
	router := NewRouter()
	router.Route(testMessage("trace-a", 0))
	router.Route(testMessage("trace-b", 1))
	router.Route(testMessage("trace-a", 2))

	assert.Len(t, router.History("trace-a"), 2)
	assert.Len(t, router.History("trace-b"), 1)
	assert.Empty(t, router.History("trace-missing"))
	assert.Equal(t, 3, router.MessageCount())
}

func TestRouterRecentReturnsTail(t *testing.T) {
	router := NewRouter()
	for i := 0; i < 10; i++ {
		router.Route(testMessage("trace-a", i))
	}

	recent := router.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "query 7", recent[0].Payload.(*QueryRequestPayload).Query)
	assert.Equal(t, "query 9", recent[2].Payload.(*QueryRequestPayload).Query)

	all := router.Recent(0)
	assert.Len(t, all, 10)

	more := router.Recent(100)
	assert.Len(t, more, 10)
}

func TestRouterClear(t *testing.T) {
	router := NewRouter()
	router.Route(testMessage("trace-a", 0))
	router.Clear()

	assert.Equal(t, 0, router.MessageCount())
	assert.Empty(t, router.History("trace-a"))
}
