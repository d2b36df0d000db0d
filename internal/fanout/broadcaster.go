package fanout

import (
	"encoding/json"
	"log/slog"
	"sync"

	"golang.org/x/exp/maps"
)

type Client interface {
	ID() string
	Send(data []byte) error
	Close() error
}

type iMetrics interface {
	ClientAttached()
	ClientDetached()
	Delivered(messageType string, ok bool)
}

type Broadcaster struct {
	clients map[string]Client
	mu      sync.RWMutex
	logger  *slog.Logger
	metrics iMetrics
}

func New(logger *slog.Logger, metrics iMetrics) *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]Client),
		logger:  logger,
		metrics: metrics,
	}
}

func (b *Broadcaster) Attach(client Client) {
	b.mu.Lock()
	b.clients[client.ID()] = client
	count := len(b.clients)
	b.mu.Unlock()

	b.metrics.ClientAttached()
	b.logger.Debug("client attached", "conn_id", client.ID(), "clients", count)
}

func (b *Broadcaster) Detach(connID string) {
	b.mu.Lock()
	_, ok := b.clients[connID]
	delete(b.clients, connID)
	count := len(b.clients)
	b.mu.Unlock()

	if ok {
		b.metrics.ClientDetached()
		b.logger.Debug("client detached", "conn_id", connID, "clients", count)
	}
}

func (b *Broadcaster) Length() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.clients)
}

// Deliver sends every outbound in order. A client that cannot accept a
// message is closed; its transport then reports the disconnect.
func (b *Broadcaster) Deliver(outs ...Outbound) {
	var failed []Client

	b.mu.RLock()
	for _, out := range outs {
		data, err := json.Marshal(out.Output)
		if err != nil {
			b.logger.Warn("failed to marshal output", "type", out.Output.Type, "error", err)
			continue
		}

		targets := out.Targets
		if out.Global {
			targets = maps.Keys(b.clients)
		}

		for _, connID := range targets {
			client, ok := b.clients[connID]
			if !ok {
				b.logger.Debug("skipping detached target", "type", out.Output.Type, "conn_id", connID)
				continue
			}

			if err := client.Send(data); err != nil {
				b.logger.Info("failed to send to client", "type", out.Output.Type, "conn_id", connID, "error", err)
				b.metrics.Delivered(out.Output.Type, false)
				failed = append(failed, client)
				continue
			}

			b.metrics.Delivered(out.Output.Type, true)
		}
	}
	b.mu.RUnlock()

	for _, client := range failed {
		if err := client.Close(); err != nil {
			b.logger.Debug("failed to close client", "conn_id", client.ID(), "error", err)
		}
	}
}
