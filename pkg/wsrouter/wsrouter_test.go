package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type videoEvent struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
}

func TestDispatchDecodesPayload(t *testing.T) {
	r := New()

	var got videoEvent
	var gotType string
	Handle(r, "video-event", func(ctx context.Context, payload videoEvent) error {
		got = payload
		gotType = GetMessageTypeFromCtx(ctx)
		return nil
	})

	err := r.Dispatch(context.Background(), []byte(`{"type":"video-event","payload":{"type":"seek","currentTime":12.5}}`))
	require.NoError(t, err)
	assert.Equal(t, videoEvent{Type: "seek", CurrentTime: 12.5}, got)
	assert.Equal(t, "video-event", gotType)
}

func TestDispatchEmptyPayload(t *testing.T) {
	r := New()
	calls := 0
	Handle(r, "user-typing", func(ctx context.Context, payload struct{}) error {
		calls++
		return nil
	})

	require.NoError(t, r.Dispatch(context.Background(), []byte(`{"type":"user-typing"}`)))
	require.NoError(t, r.Dispatch(context.Background(), []byte(`{"type":"user-typing","payload":null}`)))
	assert.Equal(t, 2, calls)
}

func TestDispatchErrors(t *testing.T) {
	r := New()
	Handle(r, "join-room", func(ctx context.Context, payload string) error {
		return nil
	})

	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `nope`, ErrMalformedMessage},
		{"unknown type", `{"type":"launch-missiles"}`, ErrUnknownMessageType},
		{"wrong payload type", `{"type":"join-room","payload":{"name":"x"}}`, ErrMalformedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.Dispatch(context.Background(), []byte(tt.data)), tt.want)
		})
	}
}

func TestMiddlewareOrder(t *testing.T) {
	r := New()
	var trace []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, payload json.RawMessage) error {
				trace = append(trace, name)
				return next(ctx, payload)
			}
		}
	}
	r.Use(mw("outer"), mw("inner"))

	handlerErr := errors.New("boom")
	r.Handle("reaction", func(ctx context.Context, payload json.RawMessage) error {
		trace = append(trace, "handler")
		return handlerErr
	})

	err := r.Dispatch(context.Background(), []byte(`{"type":"reaction","payload":"x"}`))
	assert.ErrorIs(t, err, handlerErr)
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}
