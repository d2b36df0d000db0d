package fanout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sharetube/syncroom/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	id       string
	received []Output
	closed   bool
	sendErr  error
	mu       sync.Mutex
}

func (m *mockClient) ID() string { return m.id }

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}

	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	m.received = append(m.received, out)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.received))
	for _, out := range m.received {
		types = append(types, out.Type)
	}
	return types
}

func newBroadcaster(t *testing.T) (*Broadcaster, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return New(slog.Default(), m), m
}

func TestBroadcasterDeliverAudiences(t *testing.T) {
	tests := []struct {
		name string
		out  Outbound
		want map[string]int
	}{
		{
			name: "single connection",
			out:  ToConn("a", "leader-status", map[string]bool{"isLeader": true}),
			want: map[string]int{"a": 1, "b": 0, "c": 0},
		},
		{
			name: "explicit targets",
			out:  ToConns([]string{"b", "c"}, "sync-video", nil),
			want: map[string]int{"a": 0, "b": 1, "c": 1},
		},
		{
			name: "everyone",
			out:  ToAll("room-created", map[string]any{"name": "x", "userCount": 0}),
			want: map[string]int{"a": 1, "b": 1, "c": 1},
		},
		{
			name: "detached target is skipped",
			out:  ToConns([]string{"gone", "a"}, "chat-message", nil),
			want: map[string]int{"a": 1, "b": 0, "c": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBroadcaster(t)
			clients := map[string]*mockClient{}
			for _, id := range []string{"a", "b", "c"} {
				clients[id] = &mockClient{id: id}
				b.Attach(clients[id])
			}

			b.Deliver(tt.out)

			for id, n := range tt.want {
				assert.Len(t, clients[id].types(), n, "client %s", id)
			}
		})
	}
}

func TestBroadcasterKeepsOrderPerClient(t *testing.T) {
	b, _ := newBroadcaster(t)
	a := &mockClient{id: "a"}
	b.Attach(a)

	b.Deliver(
		ToConn("a", "leader-status", nil),
		ToConn("a", "sync-video", nil),
		ToAll("room-user-counts", nil),
	)

	assert.Equal(t, []string{"leader-status", "sync-video", "room-user-counts"}, a.types())
}

func TestBroadcasterClosesFailingClient(t *testing.T) {
	b, m := newBroadcaster(t)
	slow := &mockClient{id: "slow", sendErr: errors.New("send buffer full")}
	ok := &mockClient{id: "ok"}
	b.Attach(slow)
	b.Attach(ok)

	b.Deliver(ToAll("user-count", map[string]int{"total": 2}))

	assert.True(t, slow.closed)
	assert.False(t, ok.closed)
	assert.Len(t, ok.types(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("user-count", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("user-count", "ok")))
}

func TestBroadcasterAttachDetach(t *testing.T) {
	b, m := newBroadcaster(t)
	a := &mockClient{id: "a"}

	b.Attach(a)
	require.Equal(t, 1, b.Length())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections))

	b.Detach("a")
	b.Detach("a")
	assert.Equal(t, 0, b.Length())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connections))

	b.Deliver(ToAll("room-deleted", "x"))
	assert.Empty(t, a.types())
}
