package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func head(w io.Writer, title string) error {
	return write(w,
		`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`,
		`<meta name="viewport" content="width=device-width, initial-scale=1.0">`,
		"<title>", templ.EscapeString(title), "</title>",
		`<link href="/hermes/hermes.css" rel="stylesheet"></head><body>`,
	)
}

// JoinPage renders the form that asks a visitor for their user name.
func JoinPage(title string, action string, problem string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := head(w, title); err != nil {
			return err
		}
		if err := write(w, `<main class="centered"><h1>`, templ.EscapeString(title), "</h1>"); err != nil {
			return err
		}
		if len(problem) > 0 {
			if err := write(w, `<p class="error">`, templ.EscapeString(problem), "</p>"); err != nil {
				return err
			}
		}
		return write(w,
			`<form method="POST" action="`, templ.EscapeString(action), `">`,
			`<label for="username">Username</label>`,
			`<input type="text" id="username" name="username" minlength="5" maxlength="20" required>`,
			`<input type="submit" value="Join"></form></main></body></html>`,
		)
	})
}

func messageLine(msg Message, timestamp bool) string {
	line := msg.String()
	if timestamp {
		line = fmt.Sprintf("[%s] %s", msg.Timestamp.Format("15:04"), line)
	}
	return `<li class="chat-message">` + templ.EscapeString(line) + "</li>"
}

// ChatPage renders the room for the specified user, including the history and the script that connects to the
// websocket.
func ChatPage(user string, settings Settings, destination string, history []Message) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := head(w, settings.Title); err != nil {
			return err
		}
		err := write(w,
			`<main class="chat"><h1>`, templ.EscapeString(settings.Title), "</h1>",
			`<p>Logged in as <strong>`, templ.EscapeString(user), "</strong></p>",
			`<ul id="messages">`,
		)
		if err != nil {
			return err
		}
		for _, msg := range history {
			if err := write(w, messageLine(msg, settings.Timestamp)); err != nil {
				return err
			}
		}
		if err := write(w, `</ul><form id="send">`); err != nil {
			return err
		}
		if settings.Method == MethodPrivate {
			err := write(w, `<input type="text" id="to" name="to" placeholder="Recipient">`)
			if err != nil {
				return err
			}
		}
		err = write(w,
			`<input type="text" id="content" name="content" autocomplete="off" required>`,
			`<input type="submit" value="Send"></form>`,
		)
		if err != nil {
			return err
		}
		if len(settings.DeleteButton) > 0 {
			err := write(w, `<button id="clear" type="button">`, templ.EscapeString(settings.DeleteButton), "</button>")
			if err != nil {
				return err
			}
		}
		return chatScript(w, settings, destination)
	})
}

func chatScript(w io.Writer, settings Settings, destination string) error {
	cfg, err := json.Marshal(struct {
		Settings
		Destination string `json:"destination"`
	}{settings, destination})
	if err != nil {
		return fmt.Errorf("cannot encode chat settings: %w", err)
	}
	// json.Marshal escapes <, > and & so the settings cannot end the script element
	return write(w, "<script>const chat = ", string(cfg), ";", chatJS, "</script></main></body></html>")
}

const chatJS = `
const list = document.getElementById("messages");
const scheme = location.protocol === "https:" ? "wss://" : "ws://";
const socket = new WebSocket(scheme + location.host + chat.wsEndpoint);
function show(msg) {
  const item = document.createElement("li");
  item.className = "chat-message";
  let text = msg.type === "CHAT" ? msg.sender + ": " + msg.content : msg.sender + (msg.type === "JOIN" ? " joined" : " left");
  if (chat.timestamp) {
    const time = new Date(msg.timestamp);
    text = "[" + time.toTimeString().slice(0, 5) + "] " + text;
  }
  item.textContent = text;
  list.appendChild(item);
}
socket.onmessage = (event) => {
  const frame = JSON.parse(event.data);
  if (frame.message) show(frame.message);
};
document.getElementById("send").onsubmit = (event) => {
  event.preventDefault();
  const content = document.getElementById("content");
  const to = document.getElementById("to");
  socket.send(JSON.stringify({destination: chat.destination, content: content.value, to: to ? to.value : ""}));
  content.value = "";
};
const clear = document.getElementById("clear");
if (clear) clear.onclick = () => { list.innerHTML = ""; };
`
