package chat_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prior-it/hermes/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages(t *testing.T) {
	t.Run("ok: join page escapes the problem", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, chat.JoinPage("Chat", "/chat/join", "<b>bad</b>").Render(context.Background(), &buf))
		assert.Contains(t, buf.String(), "&lt;b&gt;bad&lt;/b&gt;")
		assert.Contains(t, buf.String(), "<title>Chat</title>")
	})

	t.Run("ok: chat page renders history and options", func(t *testing.T) {
		settings := chat.Settings{
			WSEndpoint: "/ws",
			Method:     chat.MethodPrivate,
			Options:    chat.Options{Timestamp: true, Title: "Room", DeleteButton: "Clear"},
		}
		history := []chat.Message{{
			Sender:    "alice",
			Content:   "<script>",
			Timestamp: time.Date(2024, 1, 2, 13, 4, 0, 0, time.UTC),
		}}
		var buf bytes.Buffer
		require.NoError(t, chat.ChatPage("alice", settings, "/app/chat.send", history).Render(context.Background(), &buf))
		html := buf.String()
		assert.Contains(t, html, "[13:04] alice: &lt;script&gt;")
		assert.Contains(t, html, `id="to"`)
		assert.Contains(t, html, ">Clear</button>")
		assert.Contains(t, html, `"destination":"/app/chat.send"`)
		assert.Contains(t, html, `"method":"PRIVATE"`)
	})

	t.Run("ok: group page has no recipient or delete button", func(t *testing.T) {
		settings := chat.Settings{Method: chat.MethodGroup, Options: chat.Options{Title: "Room"}}
		var buf bytes.Buffer
		require.NoError(t, chat.ChatPage("bob", settings, "/app/chat.send", nil).Render(context.Background(), &buf))
		assert.NotContains(t, buf.String(), `id="to"`)
		assert.NotContains(t, buf.String(), `id="clear"`)
	})
}
