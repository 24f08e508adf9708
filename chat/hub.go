package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prior-it/hermes/core"
)

const deliveryQueueSize = 256

type delivery struct {
	payload []byte
	// Names of the users whose clients receive the payload, nil delivers to every client.
	recipients map[string]struct{}
}

// hub keeps track of the connected clients of a room and fans out deliveries to them.
// All client bookkeeping happens on the goroutine that runs the hub.
type hub struct {
	clients    map[*client]bool
	deliveries chan delivery
	register   chan *client
	unregister chan *client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	running    atomic.Bool
	logger     *slog.Logger
	notify     func(msgType MessageType, c *client)
}

func newHub(logger *slog.Logger, notify func(MessageType, *client)) *hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &hub{
		clients:    make(map[*client]bool),
		deliveries: make(chan delivery, deliveryQueueSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		logger:     logger,
		notify:     notify,
	}
}

// publish queues d without blocking. Deliveries are dropped if the hub is not running or its queue is full.
func (h *hub) publish(d delivery) bool {
	if !h.running.Load() {
		return false
	}
	select {
	case h.deliveries <- d:
		return true
	default:
		h.logger.Warn("Chat delivery queue is full, dropping message")
		return false
	}
}

// add hands a new client to the hub. It returns false if the hub stopped or ctx was cancelled first.
func (h *hub) add(ctx context.Context, c *client) bool {
	if !h.running.Load() {
		return false
	}
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

// remove is called by a client when its connection ends.
func (h *hub) remove(c *client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

func (h *hub) count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// run serves clients until ctx is cancelled or the hub is shut down. A hub only runs once.
func (h *hub) run(ctx context.Context) error {
	if h.ctx.Err() != nil {
		return fmt.Errorf("%w: chat room has been stopped", core.ErrConflict)
	}
	if !h.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: chat room is already running", core.ErrConflict)
	}
	defer close(h.done)
	defer h.cancel()
	// Stop accepting deliveries and clients before anything else
	defer h.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			h.shutdownClients()
			return nil

		case <-h.ctx.Done():
			h.shutdownClients()
			return nil

		case c := <-h.register:
			h.mutex.Lock()
			c.closed = false
			h.clients[c] = true
			clientCount := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("Chat client registered", "addr", c.addr, "user", c.user.Name, "clients", clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				c.writePump()
			}()
			go func() {
				defer h.wg.Done()
				c.readPump()
			}()
			h.notify(TypeJoin, c)

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.closed = true
				clientCount := len(h.clients)
				h.mutex.Unlock()
				close(c.send)
				h.logger.Debug("Chat client unregistered", "addr", c.addr, "user", c.user.Name, "clients", clientCount)
				h.notify(TypeDisconnect, c)
			} else {
				h.mutex.Unlock()
			}

		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

// safeSend queues message for the client without blocking and reports whether that succeeded.
func (h *hub) safeSend(c *client, message []byte) bool {
	// Channels are only closed while holding the write lock
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, exists := h.clients[c]; !exists || c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (h *hub) snapshot() []*client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

func (h *hub) deliver(d delivery) {
	var failed []*client
	for _, c := range h.snapshot() {
		if d.recipients != nil {
			if _, ok := d.recipients[c.user.Name]; !ok {
				continue
			}
		}
		if !h.safeSend(c, d.payload) {
			failed = append(failed, c)
		}
	}
	h.removeFailed(failed)
}

// removeFailed drops clients that could not keep up with their deliveries.
func (h *hub) removeFailed(failed []*client) {
	if len(failed) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, c := range failed {
		if _, exists := h.clients[c]; exists {
			delete(h.clients, c)
			c.closed = true
			channelsToClose = append(channelsToClose, c.send)
			h.logger.Warn("Chat client removed due to full send buffer", "addr", c.addr, "user", c.user.Name)
		}
	}
	h.mutex.Unlock()

	for _, ch := range channelsToClose {
		close(ch)
	}
}

// shutdownClients closes every connection, which ends the pumps of all clients.
func (h *hub) shutdownClients() {
	h.mutex.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
		c.closed = true
		close(c.send)
	}
	h.mutex.Unlock()

	for _, c := range clients {
		c.closeConnection()
	}
	if len(clients) > 0 {
		h.logger.Info("Closed chat connections", "count", len(clients))
	}
}

// shutdown stops the hub and waits up to timeout for all client goroutines to finish.
func (h *hub) shutdown(timeout time.Duration) error {
	h.cancel()
	if !h.running.Load() {
		return nil
	}
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		h.logger.Warn("Chat shutdown timeout reached, some connections may still be open")
		return context.DeadlineExceeded
	}
}
