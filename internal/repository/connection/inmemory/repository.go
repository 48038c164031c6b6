package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/watchparty/internal/repository/connection"
)

type entry struct {
	conn   connection.Conn
	roomId string
}

type repo struct {
	conns  map[string]*entry
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		conns:  make(map[string]*entry),
		logger: logger,
	}
}

func (r *repo) Add(sessionId string, conn connection.Conn) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "sessionId", sessionId)
	if _, ok := r.conns[sessionId]; ok {
		r.logger.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.conns[sessionId] = &entry{conn: conn}
	return nil
}

// Remove forgets the session and returns the room it had joined. The
// connection itself is left open.
func (r *repo) Remove(sessionId string) (string, error) {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "sessionId", sessionId)
	e, ok := r.conns[sessionId]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.conns, sessionId)
	return e.roomId, nil
}

func (r *repo) Get(sessionId string) (connection.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[sessionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return e.conn, nil
}

// SetRoomId records the room the session has joined.
func (r *repo) SetRoomId(sessionId, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[sessionId]
	if !ok {
		return connection.ErrNotFound
	}

	e.roomId = roomId
	return nil
}

// GetRoomId returns the joined room id, or "" if the session has not joined.
func (r *repo) GetRoomId(sessionId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[sessionId]
	if !ok {
		return "", connection.ErrNotFound
	}

	return e.roomId, nil
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
