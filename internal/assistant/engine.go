// Package assistant drives the conversation loop: it composes retrieval
// context, calls the LLM completion service with the tool registry, and
// dispatches tool calls until a plain-text answer is produced.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/orderdesk/orderdesk/internal/llm"
	"github.com/orderdesk/orderdesk/internal/retriever"
	"github.com/orderdesk/orderdesk/internal/session"
	"github.com/orderdesk/orderdesk/internal/store"
)

const systemPrompt = "You are a helpful customer support agent with access to the conversation history."

// apologyMessage is the fixed reply when a response cannot be produced.
const apologyMessage = "I apologize, but I'm having trouble processing your request. Please try again later."

const (
	// DefaultMaxIterations caps tool-call rounds per response.
	DefaultMaxIterations = 5
	// DefaultBudget bounds the wall-clock time spent per response.
	DefaultBudget = 60 * time.Second
)

// Options tune the engine loop.
type Options struct {
	MaxIterations int
	Budget        time.Duration
}

// Engine is the tool orchestrator. It is safe for concurrent use by many
// sessions; per-session serialization happens via the session lock.
type Engine struct {
	provider llm.Provider
	model    string
	retr     *retriever.Retriever
	orders   store.Orders
	tickets  store.Tickets

	maxIterations int
	budget        time.Duration
	handlers      map[string]toolHandler
}

// NewEngine creates an engine and validates the tool registry. A provider is
// required; without one the engine is not created.
func NewEngine(provider llm.Provider, model string, retr *retriever.Retriever, orders store.Orders, tickets store.Tickets, opts Options) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("completion provider is required")
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}

	e := &Engine{
		provider:      provider,
		model:         model,
		retr:          retr,
		orders:        orders,
		tickets:       tickets,
		maxIterations: opts.MaxIterations,
		budget:        opts.Budget,
	}
	e.handlers = e.buildHandlers()
	if err := validateHandlers(e.handlers); err != nil {
		return nil, err
	}
	return e, nil
}

// Respond processes one inbound user message for the session and returns
// the assistant's reply. Failures degrade to a fixed apology; Respond does
// not fail upward.
func (e *Engine) Respond(ctx context.Context, sess *session.Session, query string) string {
	sess.Lock()
	defer sess.Unlock()

	sess.Append(llm.Message{Role: llm.RoleUser, Content: query})

	// An active cancellation flow takes priority over everything else, and
	// a fresh cancellation intent starts one.
	if sess.Flow() != session.FlowNone || triggersCancellation(query) {
		reply := e.handleCancellation(ctx, sess, query)
		sess.Append(llm.Message{Role: llm.RoleAssistant, Content: reply})
		return reply
	}

	// Retrieval sees the turns before this message; the query itself is
	// passed separately and must not appear in the history window.
	history := sess.History()
	contextBlock := e.retr.Retrieve(ctx, query, history[:len(history)-1], sess.Email())
	return e.runToolLoop(ctx, sess, query, contextBlock)
}

// runToolLoop drives the completion service until it produces plain text,
// the iteration cap is reached, or the wall-clock budget expires.
func (e *Engine) runToolLoop(ctx context.Context, sess *session.Session, query, contextBlock string) string {
	ctx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	// The raw user turn is already in history; on the wire the final user
	// message is the context-enriched prompt instead.
	history := sess.History()
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, history[:len(history)-1]...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: buildPrompt(contextBlock, query)})

	for i := 0; i < e.maxIterations; i++ {
		resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
			Model:    e.model,
			Messages: messages,
			Tools:    toolDescriptors,
		})
		if err != nil {
			log.Printf("assistant: completion: %v", err)
			sess.Append(llm.Message{Role: llm.RoleAssistant, Content: apologyMessage})
			return apologyMessage
		}

		if len(resp.ToolCalls) == 0 {
			sess.Append(llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
			return resp.Content
		}

		// At most one tool call is acted on per round.
		call := resp.ToolCalls[0]
		result := e.dispatch(ctx, sess, call)
		resultJSON, err := json.Marshal(result)
		if err != nil {
			resultJSON = []byte(`{"error":"internal result encoding failure"}`)
		}

		callTurn := llm.Message{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{call}}
		resultTurn := llm.Message{
			Role:       llm.RoleTool,
			Content:    string(resultJSON),
			ToolCallID: call.ID,
			ToolName:   call.Name,
		}
		sess.Append(callTurn)
		sess.Append(resultTurn)
		messages = append(messages, callTurn, resultTurn)
	}

	sess.Append(llm.Message{Role: llm.RoleAssistant, Content: apologyMessage})
	return apologyMessage
}

// dispatch routes a tool call to its registered handler. Malformed argument
// JSON is treated as empty arguments; an unknown tool name yields an
// error-shaped result.
func (e *Engine) dispatch(ctx context.Context, sess *session.Session, call llm.ToolCall) map[string]any {
	handler, ok := e.handlers[call.Name]
	if !ok {
		return map[string]any{"error": "unknown function"}
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			log.Printf("assistant: malformed arguments for %s: %v", call.Name, err)
			args = map[string]any{}
		}
	}
	return handler(ctx, sess, args)
}

func buildPrompt(contextBlock, query string) string {
	return fmt.Sprintf(`As a customer support AI, use the following context from our support SOP and the conversation history to answer the user's question.
If the context doesn't contain relevant information, provide a general helpful response.

Context from SOP:
%s

User Question: %s

Please provide a helpful, professional response that maintains conversation continuity:`, contextBlock, query)
}
