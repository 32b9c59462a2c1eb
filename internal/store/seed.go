package store

import (
	"context"
	"fmt"
)

// Seed populates the database with sample customers and orders for local
// development. Existing rows are cleared first.
func Seed(ctx context.Context, db *DB) error {
	for _, stmt := range []string{
		`DELETE FROM support_tickets`,
		`DELETE FROM orders`,
		`DELETE FROM customers`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
	}

	customers := []struct {
		email     string
		name      string
		allowance float64
		credits   float64
	}{
		{"john@example.com", "John Carter", 50.00, 12.50},
		{"sarah@example.com", "Sarah Lim", 75.00, 0},
		{"test@example.com", "Test User", 100.00, 25.00},
	}
	for _, c := range customers {
		_, err := db.ExecContext(ctx,
			`INSERT INTO customers (email, name, meal_allowance, credit_balance) VALUES (?, ?, ?, ?)`,
			c.email, c.name, c.allowance, c.credits)
		if err != nil {
			return fmt.Errorf("seeding customer %s: %w", c.email, err)
		}
	}

	orders := NewOrderStore(db)
	seedOrders := []struct {
		email  string
		items  []LineItem
		status string
	}{
		{"john@example.com", []LineItem{
			{ProductID: 1, Name: "Margherita Pizza", Quantity: 1, Price: 14.99},
			{ProductID: 4, Name: "Garlic Bread", Quantity: 2, Price: 4.50},
		}, StatusOrderDelivered},
		{"sarah@example.com", []LineItem{
			{ProductID: 2, Name: "Chicken Caesar Salad", Quantity: 1, Price: 11.25},
		}, StatusPreparingOrder},
		{"test@example.com", []LineItem{
			{ProductID: 3, Name: "Sushi Set", Quantity: 1, Price: 22.00},
			{ProductID: 5, Name: "Miso Soup", Quantity: 1, Price: 3.75},
		}, StatusOrderReceived},
	}
	for _, o := range seedOrders {
		if _, err := orders.CreateOrder(ctx, o.email, o.items, o.status); err != nil {
			return fmt.Errorf("seeding order for %s: %w", o.email, err)
		}
	}
	return nil
}
