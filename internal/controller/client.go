package controller

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// client is one viewer connection. All writes go through the send queue and
// a single WritePump goroutine.
type client struct {
	conn      *websocket.Conn
	sessionId string
	send      chan []byte
	limiter   *rate.Limiter

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, sessionId string, queueCapacity int, limiter *rate.Limiter) *client {
	return &client{
		conn:      conn,
		sessionId: sessionId,
		send:      make(chan []byte, queueCapacity),
		limiter:   limiter,
	}
}

// Send queues data without blocking. It reports false when the queue is full
// or the client is closed.
func (cl *client) Send(data []byte) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return false
	}

	select {
	case cl.send <- data:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which then closes the socket.
func (cl *client) Close() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if !cl.closed {
		cl.closed = true
		close(cl.send)
	}
}

func (cl *client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case message, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump feeds every inbound message to handle until the socket fails.
func (cl *client) ReadPump(ctx context.Context, handle func(ctx context.Context, data []byte)) error {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				return err
			}
			return nil
		}

		handle(ctx, message)
	}
}
