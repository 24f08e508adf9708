package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/server"
)

// ConfigEndpoint serves the chat settings that browser clients need to connect.
const ConfigEndpoint = "/api/chat-config"

const sessionKeyLength = 32

// Settings describe how clients talk to a room.
type Settings struct {
	WSEndpoint           string `json:"wsEndpoint"`
	BrokerPrefix         string `json:"brokerPrefix"`
	AppDestinationPrefix string `json:"appDestinationPrefix"`
	Method               Method `json:"method"`
	Options
}

// Transport exposes a room over HTTP: a chat page with a join form, the websocket endpoint, the client settings
// and the message history.
type Transport struct {
	room     *Room
	cfg      config.ChatConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewTransport creates the HTTP transport for room. The room needs a method.
func NewTransport(room *Room, cfg config.ChatConfig) (*Transport, error) {
	if room == nil {
		return nil, fmt.Errorf("%w: chat room cannot be nil", core.ErrInvalidArgument)
	}
	if !room.HasMethod() {
		return nil, core.ErrChatMethodMissing
	}
	if len(cfg.Path) == 0 || len(cfg.WSEndpoint) == 0 {
		return nil, fmt.Errorf("%w: chat path and websocket endpoint are required", core.ErrInvalidArgument)
	}
	room.setBrokerPrefix(cfg.BrokerPrefix)

	logger := room.logger
	origins := newOriginPolicy(cfg.AllowedOrigins, logger)
	return &Transport{
		room: room,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024, //nolint:mnd
			WriteBufferSize: 1024, //nolint:mnd
			CheckOrigin:     origins.check,
		},
		logger: logger,
	}, nil
}

// Register adds every chat route to the server.
// Visitors are identified by their session, so a server without a session store gets one with random keys.
// Those sessions do not survive a restart.
func Register[state server.State](srv *server.Server[state], t *Transport) {
	if srv.SessionStore() == nil {
		t.logger.Warn("No session keys configured, chat sessions are lost when the server restarts")
		srv.WithSessionStore(sessions.NewCookieStore(
			securecookie.GenerateRandomKey(sessionKeyLength),
			securecookie.GenerateRandomKey(sessionKeyLength),
		))
	}
	srv.Get(t.cfg.Path, server.Stateless[state](t.ChatPage)).
		Post(t.cfg.Path+"/join", server.Stateless[state](t.Join)).
		Post(t.cfg.Path+"/leave", server.Stateless[state](t.Leave)).
		Get(t.cfg.Path+"/history", server.Stateless[state](t.History)).
		Get(ConfigEndpoint, server.Stateless[state](t.Settings))
	srv.With(server.RequireUserName[state]).
		Get(t.cfg.WSEndpoint, server.Stateless[state](t.Connect))
}

func (t *Transport) Room() *Room {
	return t.room
}

func (t *Transport) sendDestination() string {
	return t.cfg.AppDestinationPrefix + "/chat.send"
}

func (t *Transport) settings() Settings {
	return Settings{
		WSEndpoint:           t.cfg.WSEndpoint,
		BrokerPrefix:         t.cfg.BrokerPrefix,
		AppDestinationPrefix: t.cfg.AppDestinationPrefix,
		Method:               t.room.Method(),
		Options:              t.room.Options(),
	}
}

// ChatPage renders the room for visitors that joined, and the join form for everyone else.
func (t *Transport) ChatPage(apollo *server.Apollo) error {
	name, joined := apollo.UserName()
	if !joined {
		return apollo.RenderComponent(JoinPage(t.room.Options().Title, t.cfg.Path+"/join", ""))
	}
	return apollo.RenderComponent(ChatPage(name, t.settings(), t.sendDestination(), t.room.ChatHistory()))
}

type joinForm struct {
	Username string `schema:"username"`
}

// Join validates the chosen user name, stores it in the session and then registers the user in the room.
func (t *Transport) Join(apollo *server.Apollo) error {
	var form joinForm
	if err := apollo.ParseForm(&form); err != nil {
		return err
	}
	if err := core.ValidateUsername(form.Username); err != nil {
		apollo.StatusCode(http.StatusUnprocessableEntity)
		return apollo.RenderComponent(JoinPage(t.room.Options().Title, t.cfg.Path+"/join", err.Error()))
	}
	if err := apollo.SetUserName(form.Username); err != nil {
		return fmt.Errorf("cannot store user name: %w", err)
	}
	if _, err := t.room.join(form.Username); err != nil {
		return err
	}
	apollo.LogString("chat_user", form.Username)
	apollo.Redirect(t.cfg.Path)
	return nil
}

func (t *Transport) Leave(apollo *server.Apollo) error {
	if err := apollo.ClearSession(); err != nil && !errors.Is(err, server.ErrNoSessionStore) {
		return err
	}
	apollo.Redirect(t.cfg.Path)
	return nil
}

func (t *Transport) History(apollo *server.Apollo) error {
	history := t.room.ChatHistory()
	if history == nil {
		history = []Message{}
	}
	return apollo.RenderJSON(history)
}

func (t *Transport) Settings(apollo *server.Apollo) error {
	return apollo.RenderJSON(t.settings())
}

// Connect upgrades the request to a websocket and hands the connection to the room.
func (t *Transport) Connect(apollo *server.Apollo) error {
	name, ok := apollo.UserName()
	if !ok {
		return core.ErrUnauthenticated
	}
	user, err := t.room.join(name)
	if err != nil {
		return err
	}
	conn, err := t.upgrader.Upgrade(apollo.Writer, apollo.Request, nil)
	if err != nil {
		// The upgrader already responded to the client
		t.logger.Warn("Websocket upgrade failed", "error", err)
		return nil
	}
	c := newClient(conn, t.room, user, apollo.Request.RemoteAddr, t)
	if !t.room.hub.add(apollo.Context(), c) {
		t.logger.Warn("Chat room is not running, closing connection", "user", name)
		c.closeConnection()
	}
	return nil
}
