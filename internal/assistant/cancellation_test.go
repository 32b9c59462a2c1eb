package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/orderdesk/orderdesk/internal/session"
	"github.com/orderdesk/orderdesk/internal/store"
)

func TestTriggersCancellation(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"I want to cancel my order", true},
		{"Cancel it please", true},
		{"cancellation policy?", true},
		{"where is my order", false},
		{"I cancelled my gym membership", false},
	}
	for _, tc := range tests {
		if got := triggersCancellation(tc.message); got != tc.want {
			t.Errorf("%q: got %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestCancellationHappyPath(t *testing.T) {
	orders := newFakeOrders()
	orders.orders[42] = &store.OrderSnapshot{OrderID: 42, Status: store.StatusPreparingOrder, CreatedAt: time.Now()}
	tickets := &fakeTickets{}
	// The flow never reaches the completion service.
	provider := &fakeProvider{err: errors.New("must not be called")}
	e := newTestEngine(t, provider, orders, tickets)
	sess := newTestSession("john@example.com")
	ctx := context.Background()

	got := e.Respond(ctx, sess, "I want to cancel my order")
	if got != askOrderNumberMessage {
		t.Fatalf("turn 1: got %q", got)
	}

	got = e.Respond(ctx, sess, "it is order #42")
	if got != askReasonMessage {
		t.Fatalf("turn 2: got %q", got)
	}

	got = e.Respond(ctx, sess, "I changed my mind")
	if !strings.Contains(got, "cancellation request for order #42 has been submitted") {
		t.Fatalf("turn 3: got %q", got)
	}

	if provider.calls != 0 {
		t.Errorf("completion service called %d times during the flow", provider.calls)
	}

	// Exactly one ticket, tied to the order, with the reason captured.
	if len(tickets.created) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets.created))
	}
	ticket := tickets.created[0]
	if ticket.Type != store.TicketCancellation {
		t.Errorf("ticket type: got %q", ticket.Type)
	}
	if ticket.OrderID == nil || *ticket.OrderID != 42 {
		t.Errorf("ticket order id: got %v", ticket.OrderID)
	}
	if !strings.Contains(ticket.Issue, "I changed my mind") {
		t.Errorf("ticket issue should carry the reason, got %q", ticket.Issue)
	}

	if orders.statusUpdates[42] != store.StatusCancellationRequested {
		t.Errorf("order status update: got %q", orders.statusUpdates[42])
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Flow() != session.FlowNone {
		t.Errorf("flow should reset after completion, got %v", sess.Flow())
	}
}

func TestCancellationUnknownOrderResetsFlow(t *testing.T) {
	e := newTestEngine(t, &fakeProvider{err: errors.New("must not be called")}, newFakeOrders(), &fakeTickets{})
	sess := newTestSession("john@example.com")
	ctx := context.Background()

	if got := e.Respond(ctx, sess, "cancel my order"); got != askOrderNumberMessage {
		t.Fatalf("turn 1: got %q", got)
	}

	got := e.Respond(ctx, sess, "order #9999")
	if !strings.Contains(got, "couldn't find order #9999") {
		t.Fatalf("turn 2: got %q", got)
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Flow() != session.FlowNone {
		t.Errorf("flow should reset on unknown order, got %v", sess.Flow())
	}
}

func TestCancellationAlreadyCancelled(t *testing.T) {
	orders := newFakeOrders()
	orders.orders[42] = &store.OrderSnapshot{OrderID: 42, Status: store.StatusCancelled}
	e := newTestEngine(t, &fakeProvider{err: errors.New("must not be called")}, orders, &fakeTickets{})
	sess := newTestSession("john@example.com")
	ctx := context.Background()

	e.Respond(ctx, sess, "cancel my order")
	got := e.Respond(ctx, sess, "42")
	if got != "Order #42 is already cancelled." {
		t.Fatalf("got %q", got)
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Flow() != session.FlowNone {
		t.Errorf("flow should reset, got %v", sess.Flow())
	}
}

func TestCancellationRepromptsWithoutNumber(t *testing.T) {
	orders := newFakeOrders()
	orders.orders[42] = &store.OrderSnapshot{OrderID: 42, Status: store.StatusPreparingOrder}
	e := newTestEngine(t, &fakeProvider{err: errors.New("must not be called")}, orders, &fakeTickets{})
	sess := newTestSession("john@example.com")
	ctx := context.Background()

	e.Respond(ctx, sess, "I want to cancel")
	// No digits in the reply: stay in the flow and ask again.
	if got := e.Respond(ctx, sess, "hmm let me check"); got != askOrderNumberMessage {
		t.Fatalf("got %q", got)
	}

	sess.Lock()
	flow := sess.Flow()
	sess.Unlock()
	if flow != session.FlowAwaitingOrderNumber {
		t.Fatalf("flow should stay at awaiting order number, got %v", flow)
	}

	// The flow still completes once a number arrives.
	if got := e.Respond(ctx, sess, "sorry, it's 42"); got != askReasonMessage {
		t.Fatalf("got %q", got)
	}
}

func TestCancellationTicketFailure(t *testing.T) {
	orders := newFakeOrders()
	orders.orders[42] = &store.OrderSnapshot{OrderID: 42, Status: store.StatusPreparingOrder}
	tickets := &fakeTickets{err: errors.New("db down")}
	e := newTestEngine(t, &fakeProvider{err: errors.New("must not be called")}, orders, tickets)
	sess := newTestSession("john@example.com")
	ctx := context.Background()

	e.Respond(ctx, sess, "cancel my order")
	e.Respond(ctx, sess, "42")
	got := e.Respond(ctx, sess, "wrong address")
	if got != apologyMessage {
		t.Fatalf("expected apology on ticket failure, got %q", got)
	}
	if orders.statusUpdates[42] != "" {
		t.Errorf("order status must not change when the ticket fails, got %q", orders.statusUpdates[42])
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Flow() != session.FlowNone {
		t.Errorf("flow should reset, got %v", sess.Flow())
	}
}

func TestCancellationFlowPriority(t *testing.T) {
	// While the flow is active, even an order-status question is treated
	// as flow input, not as a retrieval query.
	orders := newFakeOrders()
	orders.orders[7] = &store.OrderSnapshot{OrderID: 7, Status: store.StatusOrderReceived}
	provider := &fakeProvider{err: errors.New("must not be called")}
	e := newTestEngine(t, provider, orders, &fakeTickets{})
	sess := newTestSession("john@example.com")
	ctx := context.Background()

	e.Respond(ctx, sess, "cancel my order")
	got := e.Respond(ctx, sess, "what is the status of order 7?")
	if got != askReasonMessage {
		t.Fatalf("flow should consume the order number, got %q", got)
	}
	if provider.calls != 0 {
		t.Errorf("completion service called %d times during the flow", provider.calls)
	}
}
