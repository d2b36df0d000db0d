package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/syncroom/internal/repository/connection"
)

// repo binds live connection ids to the display name given at registration.
type repo struct {
	names  map[string]string
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		names:  make(map[string]string),
		logger: logger,
	}
}

// Register keeps the first name bound to connID; later calls are no-ops.
func (r *repo) Register(connID, username string) {
	funcName := "connection.inmemory.Register"
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.names[connID]; ok {
		r.logger.Debug(funcName, "conn_id", connID, "kept_username", existing)
		return
	}

	r.names[connID] = username
	r.logger.Debug(funcName, "conn_id", connID, "username", username)
}

func (r *repo) Lookup(connID string) (string, error) {
	funcName := "connection.inmemory.Lookup"
	r.mu.RLock()
	defer r.mu.RUnlock()

	username, ok := r.names[connID]
	if !ok {
		r.logger.Debug(funcName, "conn_id", connID, "error", connection.ErrNotFound)
		return "", connection.ErrNotFound
	}

	return username, nil
}

func (r *repo) Remove(connID string) error {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[connID]; !ok {
		r.logger.Debug(funcName, "conn_id", connID, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.names, connID)
	r.logger.Debug(funcName, "conn_id", connID, "result", "OK")
	return nil
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.names)
}
