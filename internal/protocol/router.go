package protocol

import "sync"

// Router records every message in arrival order, globally and per trace id.
// It never validates, drops, or reorders; routing cannot fail.
type Router struct {
	mu       sync.Mutex
	history  []Message
	sessions map[string][]Message
}

func NewRouter() *Router {
	return &Router{
		sessions: make(map[string][]Message),
	}
}

// Route appends the message to the global log and its trace session.
func (r *Router) Route(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, msg)
	r.sessions[msg.TraceID] = append(r.sessions[msg.TraceID], msg)
}

// History returns the messages of one trace in arrival order.
func (r *Router) History(traceID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := r.sessions[traceID]
	out := make([]Message, len(session))
	copy(out, session)
	return out
}

// Recent returns up to limit messages from the tail of the global log.
func (r *Router) Recent(limit int) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.history) {
		limit = len(r.history)
	}
	out := make([]Message, limit)
	copy(out, r.history[len(r.history)-limit:])
	return out
}

// MessageCount reports the size of the global log.
func (r *Router) MessageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// Clear resets both the global log and all trace sessions.
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = nil
	r.sessions = make(map[string][]Message)
}
