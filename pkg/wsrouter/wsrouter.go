package wsrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

type WSRouter struct {
	routes      map[string]HandlerFunc
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

// Use appends middlewares. They wrap every route, the first one outermost.
func (r *WSRouter) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// Handle registers a handler that receives the payload decoded into T.
// A missing or null payload decodes to the zero value.
func Handle[T any](r *WSRouter, messageType string, handler func(ctx context.Context, payload T) error) {
	r.Handle(messageType, func(ctx context.Context, raw json.RawMessage) error {
		var payload T
		if len(raw) != 0 && !bytes.Equal(raw, []byte("null")) {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
			}
		}

		return handler(ctx, payload)
	})
}

func (r *WSRouter) Routes() []string {
	types := make([]string, 0, len(r.routes))
	for messageType := range r.routes {
		types = append(types, messageType)
	}

	return types
}

// Dispatch decodes one frame and runs the matching handler.
func (r *WSRouter) Dispatch(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	handler, ok := r.routes[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	return handler(WithMessageType(ctx, msg.Type), msg.Payload)
}
