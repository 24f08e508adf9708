package chat

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prior-it/hermes/core"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// client is a single websocket connection of a user.
type client struct {
	conn        *websocket.Conn
	send        chan []byte
	hub         *hub
	room        *Room
	user        core.User
	addr        string
	closed      bool
	destination string
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// newRateLimiter allows bursts of burst messages, which are refilled evenly over interval.
func newRateLimiter(burst int, interval time.Duration) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return rate.NewLimiter(rate.Every(interval/time.Duration(burst)), burst)
}

func newClient(conn *websocket.Conn, room *Room, user core.User, addr string, t *Transport) *client {
	conn.SetReadLimit(t.cfg.MaxMessageSize)
	return &client{
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		hub:         room.hub,
		room:        room,
		user:        user,
		addr:        addr,
		destination: t.sendDestination(),
		limiter: newRateLimiter(
			t.cfg.RateLimitBurst,
			time.Duration(t.cfg.RateLimitInterval)*time.Millisecond,
		),
		logger: t.logger.With("addr", addr, "user", user.Name),
	}
}

func isExpectedCloseError(err error) bool {
	return err == nil ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, websocket.ErrCloseSent) ||
		strings.Contains(err.Error(), "broken pipe")
}

func (c *client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Debug("Could not set read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func (c *client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn("Chat message exceeded the maximum size")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived),
		errors.Is(err, io.EOF),
		isExpectedCloseError(err):
		c.logger.Debug("Chat client disconnected", "reason", err)
	default:
		c.logger.Warn("Chat connection failed", "error", err)
	}
}

// processFrame decodes a frame sent by the client and publishes it in the room.
func (c *client) processFrame(raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.logger.Warn("Invalid chat frame", "error", err)
		return
	}
	if frame.Destination != c.destination {
		c.logger.Warn("Chat frame sent to unknown destination", "destination", frame.Destination)
		return
	}
	content := strings.TrimSpace(frame.Content)
	if len(content) == 0 {
		return
	}
	_, err := c.room.Publish(Message{
		Type:      TypeChat,
		Direction: DirectionInbound,
		Sender:    c.user.Name,
		To:        frame.To,
		Content:   content,
	})
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.logger.Warn("Chat message addressed to an unknown user", "to", frame.To)
	case err != nil:
		c.logger.Error("Could not publish chat message", "error", err)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.closeConnection()
	}()

	c.setupReadConnection()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if !c.limiter.Allow() {
			c.logger.Warn("Chat rate limit exceeded, discarding message")
			continue
		}
		c.processFrame(raw)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.write(message, ok) {
				return
			}
		case <-ticker.C:
			if !c.ping() {
				return
			}
		}
	}
}

// write sends a single message, or a close message if the send channel was closed.
func (c *client) write(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false
	}
	if !ok {
		err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if !isExpectedCloseError(err) {
			c.logger.Debug("Could not write close message", "error", err)
		}
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		if !isExpectedCloseError(err) {
			c.logger.Warn("Could not write chat message", "error", err)
		}
		return false
	}
	return true
}

func (c *client) ping() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug("Could not write ping", "error", err)
		return false
	}
	return true
}

func (c *client) closeConnection() {
	if err := c.conn.Close(); !isExpectedCloseError(err) {
		c.logger.Debug("Could not close chat connection", "error", err)
	}
}
