package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchProceduresTool defines the search_procedures MCP tool.
var searchProceduresTool = mcp.NewTool("search_procedures",
	mcp.WithDescription("Search the customer-support procedure document semantically. Returns the most relevant procedure excerpts."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of excerpts to return (default 3)"),
	),
)

// getOrderStatusTool defines the get_order_status MCP tool.
var getOrderStatusTool = mcp.NewTool("get_order_status",
	mcp.WithDescription("Look up the current status of an order by its ID."),
	mcp.WithNumber("order_id",
		mcp.Required(),
		mcp.Description("The numeric ID of the order"),
	),
)
