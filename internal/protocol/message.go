// Package protocol defines the message envelope agents exchange and the
// router that records every exchange for tracing.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType is the closed set of message types the agents understand.
type MessageType string

const (
	// Document processing
	DocumentUpload    MessageType = "DOCUMENT_UPLOAD"
	DocumentParsed    MessageType = "DOCUMENT_PARSED"
	IngestionComplete MessageType = "INGESTION_COMPLETE"

	// Query processing
	QueryRequest     MessageType = "QUERY_REQUEST"
	RetrievalRequest MessageType = "RETRIEVAL_REQUEST"
	RetrievalResult  MessageType = "RETRIEVAL_RESULT"
	LLMResponse      MessageType = "LLM_RESPONSE"

	// System
	Error   MessageType = "ERROR"
	Success MessageType = "SUCCESS"
)

// Message is the envelope for all agent communication. It is immutable once
// constructed; the timestamp is filled in automatically when omitted.
type Message struct {
	Sender    string      `json:"sender"`
	Receiver  string      `json:"receiver"`
	Type      MessageType `json:"type"`
	TraceID   string      `json:"trace_id"`
	Payload   Payload     `json:"payload"`
	Timestamp string      `json:"timestamp"`
}

// New constructs a message and stamps it with the current time.
func New(sender, receiver string, msgType MessageType, traceID string, payload Payload) Message {
	return Message{
		Sender:    sender,
		Receiver:  receiver,
		Type:      msgType,
		TraceID:   traceID,
		Payload:   payload,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}
}

// NewResponse builds a reply addressed to the sender of the original message,
// carrying the same trace id.
func NewResponse(original Message, sender string, msgType MessageType, payload Payload) Message {
	return New(sender, original.Sender, msgType, original.TraceID, payload)
}

// NewError builds an ERROR reply recording the type of the message that
// failed.
func NewError(original Message, sender, errText string) Message {
	return NewResponse(original, sender, Error, &ErrorPayload{
		Error:        errText,
		OriginalType: original.Type,
	})
}

// ToJSON serializes the message. The payload is encoded according to its
// concrete type.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON parses a message, decoding the payload into the typed struct that
// corresponds to the message type.
func FromJSON(data []byte) (Message, error) {
	var raw struct {
		Sender    string          `json:"sender"`
		Receiver  string          `json:"receiver"`
		Type      MessageType     `json:"type"`
		TraceID   string          `json:"trace_id"`
		Payload   json.RawMessage `json:"payload"`
		Timestamp string          `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}

	payload, err := decodePayload(raw.Type, raw.Payload)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		Sender:    raw.Sender,
		Receiver:  raw.Receiver,
		Type:      raw.Type,
		TraceID:   raw.TraceID,
		Payload:   payload,
		Timestamp: raw.Timestamp,
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	return msg, nil
}
