package session

import (
	"sync"

	"github.com/orderdesk/orderdesk/internal/llm"
)

// FlowState tracks progress through the order-cancellation flow.
type FlowState int

const (
	FlowNone FlowState = iota
	FlowAwaitingOrderNumber
	FlowAwaitingReason
)

// Session holds one end-user's conversation state: the bounded message
// history and the cancellation flow. A session is processed by one request
// at a time; callers must hold the session lock around any sequence of
// reads and mutations so different sessions proceed in parallel while a
// single session is never mutated concurrently.
type Session struct {
	mu sync.Mutex

	id         string
	email      string
	maxHistory int

	history        []llm.Message
	flow           FlowState
	pendingOrderID int64
}

func newSession(id string, maxHistory int) *Session {
	return &Session{
		id:         id,
		maxHistory: maxHistory,
	}
}

// Lock acquires the per-session lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Email returns the customer email bound to this session, if any.
func (s *Session) Email() string { return s.email }

// SetEmail binds a customer email to the session.
func (s *Session) SetEmail(email string) { s.email = email }

// Append adds a turn to the history and trims to the bound: at most
// maxHistory*2 turns, oldest evicted first. A tool-result turn whose
// tool-call turn was evicted is dropped too; the history never starts
// with an unanswerable tool message.
func (s *Session) Append(msg llm.Message) {
	s.history = append(s.history, msg)
	if limit := s.maxHistory * 2; len(s.history) > limit {
		s.history = s.history[len(s.history)-limit:]
	}
	for len(s.history) > 0 && s.history[0].Role == llm.RoleTool {
		s.history = s.history[1:]
	}
}

// History returns a copy of the conversation turns, oldest first.
func (s *Session) History() []llm.Message {
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Flow returns the cancellation flow state.
func (s *Session) Flow() FlowState { return s.flow }

// PendingOrderID returns the order collected by the cancellation flow.
func (s *Session) PendingOrderID() int64 { return s.pendingOrderID }

// StartCancellation moves the flow to awaiting an order number.
func (s *Session) StartCancellation() {
	s.flow = FlowAwaitingOrderNumber
	s.pendingOrderID = 0
}

// AwaitReason records the order to cancel and moves the flow to awaiting
// the cancellation reason.
func (s *Session) AwaitReason(orderID int64) {
	s.flow = FlowAwaitingReason
	s.pendingOrderID = orderID
}

// ResetFlow returns the cancellation flow to idle.
func (s *Session) ResetFlow() {
	s.flow = FlowNone
	s.pendingOrderID = 0
}
