package retriever

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/orderdesk/orderdesk/internal/artifacts"
	"github.com/orderdesk/orderdesk/internal/llm"
	"github.com/orderdesk/orderdesk/internal/sop"
	"github.com/orderdesk/orderdesk/internal/store"
	"github.com/orderdesk/orderdesk/internal/tfidf"
	"github.com/orderdesk/orderdesk/internal/vecindex"
)

// fakeOrders is a canned-response Orders implementation.
type fakeOrders struct {
	orders    map[int64]*store.OrderSnapshot
	latest    map[string]*store.OrderSnapshot
	lookupErr error
}

func (f *fakeOrders) LookupOrder(ctx context.Context, orderID int64) (*store.OrderSnapshot, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.orders[orderID], nil
}

func (f *fakeOrders) LookupLatestOrder(ctx context.Context, email string) (*store.OrderSnapshot, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.latest[email], nil
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	return nil
}

func (f *fakeOrders) Allowance(ctx context.Context, email string) (float64, error) {
	return 0, nil
}

func (f *fakeOrders) CreditBalance(ctx context.Context, email string) (float64, error) {
	return 0, nil
}

var testChunks = []string{
	"Refunds are issued within five business days to the original payment method.",
	"Orders can be cancelled before they ship by filing a support ticket.",
	"Delivery drivers wait five minutes at the address before leaving.",
}

func buildBundle(t *testing.T) *artifacts.Bundle {
	t.Helper()
	chunks := make([]sop.Chunk, len(testChunks))
	for i, text := range testChunks {
		chunks[i] = sop.Chunk{ID: i + 1, Text: text}
	}

	vec := tfidf.New(0)
	if err := vec.Fit(testChunks); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	index, err := vecindex.New(vec.Dimension())
	if err != nil {
		t.Fatalf("New index: %v", err)
	}
	for _, text := range testChunks {
		if err := index.Add([][]float64{vec.Transform(text)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return &artifacts.Bundle{Vectorizer: vec, Chunks: chunks, Index: index}
}

func TestDetectOrderIntent(t *testing.T) {
	tests := []struct {
		query   string
		match   bool
		orderID int64
	}{
		{"what happened to order #123", true, 123},
		{"order number 55 please", true, 55},
		{"where is my order", true, 0},
		{"my recent order", true, 0},
		{"order status", true, 0},
		{"track my order", true, 0},
		{"I want to cancel order #42", true, 42},
		{"cancel my order", true, 0},
		{"what is the refund policy", false, 0},
		{"how long do drivers wait", false, 0},
	}

	for _, tc := range tests {
		intent, ok := detectOrderIntent(tc.query)
		if ok != tc.match {
			t.Errorf("%q: match=%v, want %v", tc.query, ok, tc.match)
			continue
		}
		if intent.OrderID != tc.orderID {
			t.Errorf("%q: orderID=%d, want %d", tc.query, intent.OrderID, tc.orderID)
		}
	}
}

func TestSearchChunksRanksRelevantFirst(t *testing.T) {
	r := New(buildBundle(t), &fakeOrders{}, 0)

	got := r.SearchChunks("how fast are refunds issued", 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if !strings.Contains(got[0], "Refunds") {
		t.Errorf("expected the refund chunk, got %q", got[0])
	}
}

func TestSearchChunksDeterministic(t *testing.T) {
	r := New(buildBundle(t), &fakeOrders{}, 0)

	a := r.SearchChunks("cancel before shipping", 3)
	b := r.SearchChunks("cancel before shipping", 3)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("retrieval is not deterministic")
	}
}

func TestRetrieveOrderContext(t *testing.T) {
	orders := &fakeOrders{
		orders: map[int64]*store.OrderSnapshot{
			42: {OrderID: 42, Status: store.StatusPreparingOrder, TotalAmount: 14.99, CreatedAt: time.Now()},
		},
	}
	r := New(buildBundle(t), orders, 0)

	got := r.Retrieve(context.Background(), "what is the status of order #42", nil, "")
	if !strings.HasPrefix(got, "Order Details: ") {
		t.Fatalf("expected order details block, got %q", got)
	}
	if !strings.Contains(got, `"order_id":42`) {
		t.Errorf("expected snapshot JSON, got %q", got)
	}
	if !strings.HasSuffix(got, "what is the status of order #42") {
		t.Errorf("expected the query appended, got %q", got)
	}
}

func TestRetrieveOrderNotFound(t *testing.T) {
	r := New(buildBundle(t), &fakeOrders{}, 0)

	got := r.Retrieve(context.Background(), "where is order #9999", nil, "")
	if !strings.HasPrefix(got, "Order not found") {
		t.Fatalf("expected not-found block, got %q", got)
	}
}

func TestRetrieveLatestOrderByEmail(t *testing.T) {
	orders := &fakeOrders{
		latest: map[string]*store.OrderSnapshot{
			"john@example.com": {OrderID: 7, Status: store.StatusOrderOnTheWay},
		},
	}
	r := New(buildBundle(t), orders, 0)

	got := r.Retrieve(context.Background(), "where is my order", nil, "john@example.com")
	if !strings.Contains(got, `"order_id":7`) {
		t.Fatalf("expected the latest order snapshot, got %q", got)
	}
}

func TestRetrieveLookupErrorDegradesToNotFound(t *testing.T) {
	orders := &fakeOrders{lookupErr: errors.New("db down")}
	r := New(buildBundle(t), orders, 0)

	got := r.Retrieve(context.Background(), "track my order #3", nil, "")
	if !strings.HasPrefix(got, "Order not found") {
		t.Fatalf("lookup errors should degrade to not-found, got %q", got)
	}
}

func TestRetrieveUsesRecentHistory(t *testing.T) {
	r := New(buildBundle(t), &fakeOrders{}, 3)

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "do you issue refunds"},
		{Role: llm.RoleAssistant, Content: "Yes, within five business days."},
	}
	got := r.Retrieve(context.Background(), "to which payment method", history, "")
	if got == "" {
		t.Fatal("expected retrieved chunks")
	}
	if !strings.Contains(got, "Refunds") {
		t.Errorf("history should steer retrieval to the refund chunk, got %q", got)
	}
}
