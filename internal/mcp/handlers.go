package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleSearchProcedures performs semantic search over the SOP chunks.
func (s *Server) handleSearchProcedures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 3)
	if limit <= 0 {
		limit = 3
	}

	chunks := s.retr.SearchChunks(query, limit)
	if len(chunks) == 0 {
		return mcp.NewToolResultText("No matching procedures found."), nil
	}

	var b strings.Builder
	for i, text := range chunks {
		fmt.Fprintf(&b, "## Excerpt %d\n%s\n\n", i+1, text)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetOrderStatus looks up one order. A miss is an in-band message,
// not an error.
func (s *Server) handleGetOrderStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orderID := request.GetInt("order_id", 0)
	if orderID <= 0 {
		return mcp.NewToolResultError("missing required parameter: order_id"), nil
	}

	snapshot, err := s.orders.LookupOrder(ctx, int64(orderID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("order lookup failed: %v", err)), nil
	}
	if snapshot == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Order #%d not found", orderID)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Order #%d is %s (total $%.2f, placed %s)",
		snapshot.OrderID, snapshot.Status, snapshot.TotalAmount,
		snapshot.CreatedAt.Format("2006-01-02 15:04"),
	)), nil
}
