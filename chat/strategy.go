package chat

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prior-it/hermes/core"
)

// Strategy holds the users and history of a room and decides who receives a message.
// Implementations are safe for concurrent use.
type Strategy interface {
	Method() Method
	// SendMessage records a message that the application sends on behalf of sender.
	SendMessage(sender core.User, text string) Message
	// ReceiveMessage records a message that was received from sender.
	ReceiveMessage(sender core.User, text string) Message
	// Record appends msg to the history, filling in its id and timestamp if they are missing.
	Record(msg Message) Message
	// ChatHistory returns every recorded message in arrival order.
	ChatHistory() []Message
	// AddUser registers a user, users with a name that is already registered are ignored.
	AddUser(user core.User)
	Users() []core.User
	// Recipients returns the users that msg should be delivered to.
	Recipients(msg Message) []core.User
}

// NewStrategy creates the strategy for the specified method.
func NewStrategy(method Method) (Strategy, error) {
	switch method {
	case MethodPrivate:
		return &privateChat{}, nil
	case MethodGroup:
		return &groupChat{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown chat method %q", core.ErrInvalidArgument, method)
	}
}

type participants struct {
	mu      sync.RWMutex
	users   []core.User
	history []Message
}

func (p *participants) Record(msg Message) Message {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if len(msg.Type) == 0 {
		msg.Type = TypeChat
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, msg)
	return msg
}

func (p *participants) SendMessage(sender core.User, text string) Message {
	return p.Record(Message{Direction: DirectionOutbound, Sender: sender.Name, Content: text})
}

func (p *participants) ReceiveMessage(sender core.User, text string) Message {
	return p.Record(Message{Direction: DirectionInbound, Sender: sender.Name, Content: text})
}

func (p *participants) ChatHistory() []Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.history)
}

func (p *participants) AddUser(user core.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.ContainsFunc(p.users, func(u core.User) bool { return u.Name == user.Name }) {
		return
	}
	p.users = append(p.users, user)
}

func (p *participants) Users() []core.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.users)
}

type privateChat struct {
	participants
}

func (*privateChat) Method() Method {
	return MethodPrivate
}

// Recipients returns the addressed user, or nobody if that user is not registered.
// Messages without an addressee go to the first registered user that is not the sender.
func (c *privateChat) Recipients(msg Message) []core.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(msg.To) > 0 {
		if i := slices.IndexFunc(c.users, func(u core.User) bool { return u.Name == msg.To }); i >= 0 {
			return []core.User{c.users[i]}
		}
		return nil
	}
	if i := slices.IndexFunc(c.users, func(u core.User) bool { return u.Name != msg.Sender }); i >= 0 {
		return []core.User{c.users[i]}
	}
	return nil
}

type groupChat struct {
	participants
}

func (*groupChat) Method() Method {
	return MethodGroup
}

func (c *groupChat) Recipients(_ Message) []core.User {
	return c.Users()
}
