package assistant

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/orderdesk/orderdesk/internal/session"
	"github.com/orderdesk/orderdesk/internal/store"
)

// toolHandler executes one tool call. Handlers never fail upward: internal
// errors degrade to an error-shaped result that the completion service sees
// on the next round.
type toolHandler func(ctx context.Context, sess *session.Session, args map[string]any) map[string]any

// buildHandlers wires the fixed tool registry to the collaborators.
func (e *Engine) buildHandlers() map[string]toolHandler {
	return map[string]toolHandler{
		toolGetAvailableAllowance: e.handleGetAllowance,
		toolGetAvailableCredits:   e.handleGetCredits,
		toolGetLastOrderStatus:    e.handleGetLastOrderStatus,
		toolGetOrderStatus:        e.handleGetOrderStatus,
		toolEscalateToSupport:     e.handleEscalate,
	}
}

// validateHandlers checks the handler registry against the declared tool
// descriptors, in both directions.
func validateHandlers(handlers map[string]toolHandler) error {
	declared := make(map[string]bool, len(toolDescriptors))
	for _, t := range toolDescriptors {
		declared[t.Name] = true
		if handlers[t.Name] == nil {
			return fmt.Errorf("tool %q has no registered handler", t.Name)
		}
	}
	for name := range handlers {
		if !declared[name] {
			return fmt.Errorf("handler %q has no tool descriptor", name)
		}
	}
	return nil
}

func (e *Engine) handleGetAllowance(ctx context.Context, sess *session.Session, _ map[string]any) map[string]any {
	allowance, err := e.orders.Allowance(ctx, sess.Email())
	if err != nil {
		log.Printf("assistant: allowance lookup: %v", err)
		return map[string]any{"error": "could not look up the meal allowance"}
	}
	return map[string]any{
		"allowance": allowance,
		"message":   fmt.Sprintf("Your current meal allowance is $%.2f", allowance),
	}
}

func (e *Engine) handleGetCredits(ctx context.Context, sess *session.Session, _ map[string]any) map[string]any {
	credits, err := e.orders.CreditBalance(ctx, sess.Email())
	if err != nil {
		log.Printf("assistant: credit balance lookup: %v", err)
		return map[string]any{"error": "could not look up the credit balance"}
	}
	return map[string]any{
		"credits": credits,
		"message": fmt.Sprintf("Your current credit balance is $%.2f", credits),
	}
}

func (e *Engine) handleGetLastOrderStatus(ctx context.Context, sess *session.Session, _ map[string]any) map[string]any {
	if sess.Email() == "" {
		return map[string]any{"message": "No recent orders found"}
	}
	snapshot, err := e.orders.LookupLatestOrder(ctx, sess.Email())
	if err != nil {
		log.Printf("assistant: latest order lookup: %v", err)
		return map[string]any{"error": "could not look up the most recent order"}
	}
	if snapshot == nil {
		return map[string]any{"message": "No recent orders found"}
	}
	return orderResult(snapshot, fmt.Sprintf("Your last order (#%d) is %s", snapshot.OrderID, snapshot.Status))
}

func (e *Engine) handleGetOrderStatus(ctx context.Context, _ *session.Session, args map[string]any) map[string]any {
	orderID, ok := argOrderID(args)
	if !ok {
		return map[string]any{"error": "invalid or missing order_id"}
	}
	snapshot, err := e.orders.LookupOrder(ctx, orderID)
	if err != nil {
		log.Printf("assistant: order %d lookup: %v", orderID, err)
		return map[string]any{"error": "could not look up the order"}
	}
	if snapshot == nil {
		return map[string]any{"message": fmt.Sprintf("Order #%d not found", orderID)}
	}
	return orderResult(snapshot, fmt.Sprintf("Order #%d is %s", snapshot.OrderID, snapshot.Status))
}

func (e *Engine) handleEscalate(ctx context.Context, sess *session.Session, args map[string]any) map[string]any {
	issue, _ := args["issue"].(string)
	if issue == "" {
		return map[string]any{"error": "invalid or missing issue"}
	}
	ticketType, _ := args["ticket_type"].(string)

	ticketID, err := e.tickets.CreateTicket(ctx, store.TicketRequest{
		CustomerEmail: sess.Email(),
		Issue:         issue,
		Type:          ticketType,
	})
	if err != nil {
		log.Printf("assistant: creating support ticket: %v", err)
		return map[string]any{"message": "Failed to create support ticket. Please try again later."}
	}
	return map[string]any{
		"ticket_id": ticketID,
		"message":   "Your issue has been escalated to our customer support team. A representative will contact you shortly.",
	}
}

func orderResult(snapshot *store.OrderSnapshot, message string) map[string]any {
	return map[string]any{
		"order_id":   snapshot.OrderID,
		"status":     snapshot.Status,
		"created_at": snapshot.CreatedAt.Format(time.RFC3339),
		"message":    message,
	}
}

// argOrderID accepts the order id as a JSON string or number.
func argOrderID(args map[string]any) (int64, bool) {
	switch v := args["order_id"].(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
