package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Order statuses mirror the fulfillment pipeline. A cancellation request
// moves an order to StatusCancellationRequested; support resolves it to
// StatusCancelled.
const (
	StatusOrderReceived         = "order_received"
	StatusOrderConfirmed        = "order_confirmed"
	StatusPreparingOrder        = "preparing_order"
	StatusWaitingForDriver      = "waiting_for_driver"
	StatusOrderOnTheWay         = "order_on_the_way"
	StatusOrderDelivered        = "order_delivered"
	StatusCancelled             = "cancelled"
	StatusCancellationRequested = "cancellation_requested"
)

// LineItem is a single product line within an order.
type LineItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderSnapshot is a point-in-time view of an order. Snapshots are fetched
// fresh per request and never cached by the assistant.
type OrderSnapshot struct {
	OrderID     int64      `json:"order_id"`
	Status      string     `json:"status"`
	TotalAmount float64    `json:"total_amount"`
	LineItems   []LineItem `json:"line_items"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsCancelled reports whether the order is cancelled or has a pending
// cancellation request.
func (o *OrderSnapshot) IsCancelled() bool {
	return o.Status == StatusCancelled || o.Status == StatusCancellationRequested
}

// Orders is the order/account collaborator interface consumed by the
// assistant. A lookup miss returns (nil, nil), not an error.
type Orders interface {
	LookupOrder(ctx context.Context, orderID int64) (*OrderSnapshot, error)
	LookupLatestOrder(ctx context.Context, customerEmail string) (*OrderSnapshot, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	Allowance(ctx context.Context, customerEmail string) (float64, error)
	CreditBalance(ctx context.Context, customerEmail string) (float64, error)
}

// OrderStore implements Orders on SQLite.
type OrderStore struct {
	db *DB
}

// NewOrderStore creates an OrderStore backed by db.
func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) LookupOrder(ctx context.Context, orderID int64) (*OrderSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, total_amount, line_items, created_at FROM orders WHERE id = ?`, orderID)
	return scanOrder(row)
}

func (s *OrderStore) LookupLatestOrder(ctx context.Context, customerEmail string) (*OrderSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, total_amount, line_items, created_at FROM orders
		 WHERE customer_email = ? ORDER BY created_at DESC, id DESC LIMIT 1`, customerEmail)
	return scanOrder(row)
}

func (s *OrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("updating order %d status: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// Allowance returns the customer's available meal allowance. The read is
// not transactionally consistent with concurrent order placement; stale
// reads are tolerated (the value is advisory, shown in chat).
func (s *OrderStore) Allowance(ctx context.Context, customerEmail string) (float64, error) {
	return s.customerBalance(ctx, customerEmail, "meal_allowance")
}

// CreditBalance returns the customer's available credit balance, with the
// same consistency caveat as Allowance.
func (s *OrderStore) CreditBalance(ctx context.Context, customerEmail string) (float64, error) {
	return s.customerBalance(ctx, customerEmail, "credit_balance")
}

func (s *OrderStore) customerBalance(ctx context.Context, email, column string) (float64, error) {
	var v float64
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE email = ?`, column)
	err := s.db.QueryRowContext(ctx, query, email).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up %s for %s: %w", column, email, err)
	}
	return v, nil
}

// CreateOrder inserts an order and returns its id.
func (s *OrderStore) CreateOrder(ctx context.Context, customerEmail string, items []LineItem, status string) (int64, error) {
	if status == "" {
		status = StatusOrderReceived
	}
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("marshalling line items: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (customer_email, line_items, total_amount, status) VALUES (?, ?, ?, ?)`,
		customerEmail, string(itemsJSON), total, status)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*OrderSnapshot, error) {
	var (
		o         OrderSnapshot
		itemsJSON string
		createdAt string
	)
	err := row.Scan(&o.OrderID, &o.Status, &o.TotalAmount, &itemsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &o.LineItems); err != nil {
		return nil, fmt.Errorf("parsing line items for order %d: %w", o.OrderID, err)
	}
	o.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAt)
	if err != nil {
		// Fall back to RFC3339, which SQLite emits for bound time values.
		if t, rerr := time.Parse(time.RFC3339, createdAt); rerr == nil {
			o.CreatedAt = t
		}
	}
	return &o, nil
}
