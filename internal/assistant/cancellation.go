package assistant

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/orderdesk/orderdesk/internal/session"
	"github.com/orderdesk/orderdesk/internal/store"
)

// Fixed cancellation-flow replies.
const (
	askOrderNumberMessage = "Could you please provide the order number you want to cancel?"
	askReasonMessage      = "Could you please tell me the reason for cancellation so I can create a support ticket for you?"
)

var (
	cancelIntentRe = regexp.MustCompile(`(?i)\bcancel(?:lation)?\b`)
	orderNumberRe  = regexp.MustCompile(`\d+`)
)

// triggersCancellation reports whether the message should start the
// cancellation flow.
func triggersCancellation(message string) bool {
	return cancelIntentRe.MatchString(message)
}

// handleCancellation advances the cancellation state machine by one message
// and returns the reply. While the flow is active it takes priority over
// retrieval and tool calling; no completion-service round-trip happens here.
// Callers hold the session lock.
func (e *Engine) handleCancellation(ctx context.Context, sess *session.Session, message string) string {
	switch sess.Flow() {
	case session.FlowNone:
		sess.StartCancellation()
		return askOrderNumberMessage

	case session.FlowAwaitingOrderNumber:
		return e.collectOrderNumber(ctx, sess, message)

	case session.FlowAwaitingReason:
		return e.completeCancellation(ctx, sess, message)

	default:
		sess.ResetFlow()
		return apologyMessage
	}
}

func (e *Engine) collectOrderNumber(ctx context.Context, sess *session.Session, message string) string {
	match := orderNumberRe.FindString(message)
	if match == "" {
		// Stay in the flow until a number shows up.
		return askOrderNumberMessage
	}
	orderID, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return askOrderNumberMessage
	}

	snapshot, err := e.orders.LookupOrder(ctx, orderID)
	if err != nil {
		log.Printf("assistant: cancellation order lookup: %v", err)
		sess.ResetFlow()
		return apologyMessage
	}
	if snapshot == nil {
		sess.ResetFlow()
		return fmt.Sprintf("I'm sorry, I couldn't find order #%d. Please check the order number and try again.", orderID)
	}
	if snapshot.IsCancelled() {
		sess.ResetFlow()
		return fmt.Sprintf("Order #%d is already cancelled.", orderID)
	}

	sess.AwaitReason(orderID)
	return askReasonMessage
}

func (e *Engine) completeCancellation(ctx context.Context, sess *session.Session, reason string) string {
	orderID := sess.PendingOrderID()

	_, err := e.tickets.CreateTicket(ctx, store.TicketRequest{
		CustomerEmail: sess.Email(),
		Issue:         "Order cancellation request: " + reason,
		Type:          store.TicketCancellation,
		OrderID:       &orderID,
	})
	if err != nil {
		log.Printf("assistant: creating cancellation ticket: %v", err)
		sess.ResetFlow()
		return apologyMessage
	}

	if err := e.orders.UpdateOrderStatus(ctx, orderID, store.StatusCancellationRequested); err != nil {
		// The ticket exists; support will reconcile the status by hand.
		log.Printf("assistant: marking order %d cancellation-requested: %v", orderID, err)
	}

	sess.ResetFlow()
	return fmt.Sprintf("Your cancellation request for order #%d has been submitted. Our support team will review it and get back to you shortly.", orderID)
}
