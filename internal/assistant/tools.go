package assistant

import (
	"encoding/json"

	"github.com/orderdesk/orderdesk/internal/llm"
)

// Tool names. The registry of handlers is validated against toolDescriptors
// at engine construction, so an unregistered name is a startup error.
const (
	toolGetAvailableAllowance = "get_available_allowance"
	toolGetAvailableCredits   = "get_available_credits"
	toolGetLastOrderStatus    = "get_last_order_status"
	toolGetOrderStatus        = "get_order_status"
	toolEscalateToSupport     = "escalate_to_support"
)

// toolDescriptors is the fixed tool registry advertised to the completion
// service. It never changes after startup.
var toolDescriptors = []llm.Tool{
	{
		Name:        toolGetAvailableAllowance,
		Description: "Get the user's current available meal allowance",
		Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
	},
	{
		Name:        toolGetAvailableCredits,
		Description: "Get the user's current available credit balance",
		Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
	},
	{
		Name:        toolGetLastOrderStatus,
		Description: "Get the status of the user's most recent order",
		Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
	},
	{
		Name:        toolGetOrderStatus,
		Description: "Get the status of a specific order by its ID",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"order_id": {"type": "string", "description": "The ID of the order to look up"}
			},
			"required": ["order_id"]
		}`),
	},
	{
		Name:        toolEscalateToSupport,
		Description: "Create a support ticket and escalate the issue to the customer support team",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"issue": {"type": "string", "description": "Description of the issue to escalate"},
				"ticket_type": {"type": "string", "description": "Ticket category, e.g. general, cancellation, refund"}
			},
			"required": ["issue"]
		}`),
	},
}
