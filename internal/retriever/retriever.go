// Package retriever composes the context block for each assistant prompt:
// either a fresh order snapshot when the query shows order intent, or the
// top-k support-procedure chunks by vector similarity.
package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/orderdesk/orderdesk/internal/artifacts"
	"github.com/orderdesk/orderdesk/internal/llm"
	"github.com/orderdesk/orderdesk/internal/store"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 3

// Retriever performs context retrieval over a built artifact bundle. The
// bundle is read-only after construction, so a single Retriever serves all
// sessions concurrently.
type Retriever struct {
	bundle *artifacts.Bundle
	orders store.Orders
	topK   int
}

// New creates a Retriever. topK <= 0 uses DefaultTopK.
func New(bundle *artifacts.Bundle, orders store.Orders, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{bundle: bundle, orders: orders, topK: topK}
}

// Retrieve builds the context text for a query. It never fails on a missing
// match; the worst case is a generic or empty block.
func (r *Retriever) Retrieve(ctx context.Context, query string, history []llm.Message, customerEmail string) string {
	if intent, ok := detectOrderIntent(query); ok {
		return r.orderContext(ctx, query, intent, customerEmail)
	}

	// Augment the query with the last two turns for continuity.
	contextQuery := query
	if recent := renderRecentTurns(history, 2); recent != "" {
		contextQuery = recent + "\n" + query
	}

	chunks := r.SearchChunks(contextQuery, r.topK)
	return strings.Join(chunks, "\n")
}

// SearchChunks returns the text of the k nearest chunks to the query.
func (r *Retriever) SearchChunks(query string, k int) []string {
	vec := r.bundle.Vectorizer.Transform(query)
	results, err := r.bundle.Index.Search(vec, k)
	if err != nil {
		log.Printf("retriever: index search: %v", err)
		return nil
	}
	texts := make([]string, 0, len(results))
	for _, res := range results {
		// ChunkID is 1-based and aligned with the chunk list.
		texts = append(texts, r.bundle.Chunks[res.ChunkID-1].Text)
	}
	return texts
}

// orderContext fetches a fresh order snapshot and prepends it to the query.
func (r *Retriever) orderContext(ctx context.Context, query string, intent orderIntent, customerEmail string) string {
	var (
		snapshot *store.OrderSnapshot
		err      error
	)
	switch {
	case intent.OrderID != 0:
		snapshot, err = r.orders.LookupOrder(ctx, intent.OrderID)
	case customerEmail != "":
		snapshot, err = r.orders.LookupLatestOrder(ctx, customerEmail)
	}
	if err != nil {
		log.Printf("retriever: order lookup: %v", err)
		snapshot = nil
	}

	if snapshot == nil {
		return "Order not found\n" + query
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("retriever: marshalling order snapshot: %v", err)
		return "Order not found\n" + query
	}
	return fmt.Sprintf("Order Details: %s\n%s", data, query)
}

// renderRecentTurns formats the last n plain-text turns as "role: content"
// lines. Tool-call turns carry no user-visible text and are skipped.
func renderRecentTurns(history []llm.Message, n int) string {
	var lines []string
	for _, msg := range history {
		if msg.Role != llm.RoleUser && msg.Role != llm.RoleAssistant {
			continue
		}
		if msg.Content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
