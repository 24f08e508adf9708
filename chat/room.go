package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prior-it/hermes/core"
)

// Options control how the chat page displays a room.
type Options struct {
	Timestamp    bool   `json:"timestamp"`
	Title        string `json:"title"`
	DeleteButton string `json:"deleteButton"`
}

// Room is a chat room with a fixed delivery method.
// Messages are recorded by the room's [Strategy] and delivered to the connected websocket clients of their
// recipients by a hub, which runs in its own goroutine (see [Room.Run]).
type Room struct {
	mu           sync.RWMutex
	strategy     Strategy
	options      Options
	brokerPrefix string
	hub          *hub
	logger       *slog.Logger
}

type RoomOption func(room *Room) error

func WithMethod(method Method) RoomOption {
	return func(room *Room) error {
		return room.SetMethod(method)
	}
}

// WithTimestamp shows the time at which every message was sent.
func WithTimestamp(enabled bool) RoomOption {
	return func(room *Room) error {
		room.options.Timestamp = enabled
		return nil
	}
}

func WithTitle(title string) RoomOption {
	return func(room *Room) error {
		room.options.Title = title
		return nil
	}
}

// WithDeleteButton sets the label of the button that clears the local message list.
// An empty label hides the button.
func WithDeleteButton(label string) RoomOption {
	return func(room *Room) error {
		room.options.DeleteButton = label
		return nil
	}
}

func WithRoomLogger(logger *slog.Logger) RoomOption {
	return func(room *Room) error {
		room.logger = logger
		return nil
	}
}

// NewRoom creates a chat room. Rooms without a method can be created, but they have to get one through
// [Room.SetMethod] before they can be used.
func NewRoom(opts ...RoomOption) (*Room, error) {
	room := &Room{
		options: Options{
			Title:        "Chat",
			DeleteButton: "Delete",
		},
		brokerPrefix: "/subject",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(room); err != nil {
			return nil, fmt.Errorf("cannot create chat room: %w", err)
		}
	}
	room.hub = newHub(room.logger, room.notify)
	return room, nil
}

// SetMethod selects the delivery method. The method of a room cannot change once it has been set.
func (r *Room) SetMethod(method Method) error {
	strategy, err := NewStrategy(method)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.strategy != nil {
		if r.strategy.Method() == method {
			return nil
		}
		return fmt.Errorf("%w: chat method is already %s", core.ErrConflict, r.strategy.Method())
	}
	r.strategy = strategy
	return nil
}

func (r *Room) HasMethod() bool {
	return r.Method() != MethodUnset
}

func (r *Room) Method() Method {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.strategy == nil {
		return MethodUnset
	}
	return r.strategy.Method()
}

func (r *Room) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.options
}

func (r *Room) setBrokerPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokerPrefix = prefix
}

func (r *Room) currentStrategy(op string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.strategy == nil {
		return nil, core.Fatal(op, core.ErrChatMethodMissing)
	}
	return r.strategy, nil
}

// SendMessage records a message from sender and delivers it to its recipients.
func (r *Room) SendMessage(sender core.User, text string) (Message, error) {
	strategy, err := r.currentStrategy("sendMessage")
	if err != nil {
		return Message{}, err
	}
	msg := strategy.SendMessage(sender, text)
	r.deliver(strategy, msg)
	return msg, nil
}

// ReceiveMessage records a message that was received from sender and delivers it to its recipients.
func (r *Room) ReceiveMessage(sender core.User, text string) (Message, error) {
	strategy, err := r.currentStrategy("receiveMessage")
	if err != nil {
		return Message{}, err
	}
	msg := strategy.ReceiveMessage(sender, text)
	r.deliver(strategy, msg)
	return msg, nil
}

// Publish records msg and delivers it. Use this to address a message in a private room.
// Private messages to a user that is not in the room are not recorded and return [core.ErrNotFound].
func (r *Room) Publish(msg Message) (Message, error) {
	strategy, err := r.currentStrategy("publish")
	if err != nil {
		return Message{}, err
	}
	if strategy.Method() == MethodPrivate && len(msg.To) > 0 && len(strategy.Recipients(msg)) == 0 {
		return Message{}, fmt.Errorf("%w: chat user %q", core.ErrNotFound, msg.To)
	}
	msg = strategy.Record(msg)
	r.deliver(strategy, msg)
	return msg, nil
}

// ChatHistory returns every message in the room in arrival order.
// A room without a method has no history.
func (r *Room) ChatHistory() []Message {
	strategy, err := r.currentStrategy("chatHistory")
	if err != nil {
		return nil
	}
	return strategy.ChatHistory()
}

func (r *Room) AddUser(user core.User) error {
	strategy, err := r.currentStrategy("addUser")
	if err != nil {
		return err
	}
	strategy.AddUser(user)
	return nil
}

func (r *Room) Users() []core.User {
	strategy, err := r.currentStrategy("users")
	if err != nil {
		return nil
	}
	return strategy.Users()
}

// join registers the user with the specified name, or returns the registered user with that name.
func (r *Room) join(name string) (core.User, error) {
	strategy, err := r.currentStrategy("join")
	if err != nil {
		return core.User{}, err
	}
	for _, user := range strategy.Users() {
		if user.Name == name {
			return user, nil
		}
	}
	user, err := core.NewUser(name)
	if err != nil {
		return core.User{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	strategy.AddUser(*user)
	return *user, nil
}

// announce delivers a notification to every client without recording it.
func (r *Room) announce(msgType MessageType, sender string) {
	r.publishFrame(Message{
		ID:        uuid.New(),
		Type:      msgType,
		Direction: DirectionOutbound,
		Sender:    sender,
		Timestamp: time.Now(),
	}, nil)
}

// notify announces that a client connected or disconnected.
func (r *Room) notify(msgType MessageType, c *client) {
	r.announce(msgType, c.user.Name)
}

func (r *Room) deliver(strategy Strategy, msg Message) {
	recipients := make(map[string]struct{})
	for _, user := range strategy.Recipients(msg) {
		recipients[user.Name] = struct{}{}
	}
	if strategy.Method() == MethodPrivate {
		// Senders see their own private messages
		recipients[msg.Sender] = struct{}{}
	}
	r.publishFrame(msg, recipients)
}

// publishFrame queues msg for delivery to the clients of the specified users, or to all clients if recipients is nil.
func (r *Room) publishFrame(msg Message, recipients map[string]struct{}) {
	r.mu.RLock()
	destination := r.brokerPrefix + "/public"
	if msg.Type == TypeChat && r.strategy != nil && r.strategy.Method() == MethodPrivate {
		destination = r.brokerPrefix + "/private"
	}
	r.mu.RUnlock()

	payload, err := json.Marshal(Frame{Destination: destination, Message: &msg})
	if err != nil {
		r.logger.Error("Could not encode chat message", "error", err, "message_id", msg.ID)
		return
	}
	r.hub.publish(delivery{payload: payload, recipients: recipients})
}

// Run delivers messages to connected clients until ctx is cancelled or the room is shut down.
// Messages that are sent while the room is not running are recorded but not delivered.
// A room that stopped cannot run again.
func (r *Room) Run(ctx context.Context) error {
	if !r.HasMethod() {
		return core.Fatal("run", core.ErrChatMethodMissing)
	}
	return r.hub.run(ctx)
}

// Shutdown closes every client connection and waits up to timeout for them to finish.
func (r *Room) Shutdown(timeout time.Duration) error {
	return r.hub.shutdown(timeout)
}

// Clients returns the number of connected websocket clients.
func (r *Room) Clients() int {
	return r.hub.count()
}
