package store

import (
	"context"
	"fmt"
)

// Ticket types recognized by the support team.
const (
	TicketGeneral      = "general"
	TicketCancellation = "cancellation"
	TicketRefund       = "refund"
)

// TicketRequest describes a support ticket to create. OrderID is optional.
type TicketRequest struct {
	CustomerEmail string
	Issue         string
	Type          string
	OrderID       *int64
}

// Tickets is the ticketing collaborator interface consumed by the assistant.
type Tickets interface {
	CreateTicket(ctx context.Context, req TicketRequest) (int64, error)
}

// TicketStore implements Tickets on SQLite.
type TicketStore struct {
	db *DB
}

// NewTicketStore creates a TicketStore backed by db.
func NewTicketStore(db *DB) *TicketStore {
	return &TicketStore{db: db}
}

func (s *TicketStore) CreateTicket(ctx context.Context, req TicketRequest) (int64, error) {
	if req.Issue == "" {
		return 0, fmt.Errorf("ticket issue is required")
	}
	if req.Type == "" {
		req.Type = TicketGeneral
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO support_tickets (customer_email, issue, ticket_type, order_id) VALUES (?, ?, ?, ?)`,
		req.CustomerEmail, req.Issue, req.Type, req.OrderID)
	if err != nil {
		return 0, fmt.Errorf("inserting support ticket: %w", err)
	}
	return res.LastInsertId()
}
