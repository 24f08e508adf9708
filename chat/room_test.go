package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/prior-it/hermes/chat"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom(t *testing.T) {
	t.Run("ok: defaults", func(t *testing.T) {
		room, err := chat.NewRoom()
		require.NoError(t, err)
		assert.False(t, room.HasMethod())
		assert.Equal(t, chat.MethodUnset, room.Method())
		assert.Equal(t, chat.Options{Title: "Chat", DeleteButton: "Delete"}, room.Options())
	})

	t.Run("ok: options", func(t *testing.T) {
		title := tests.Faker.Word()
		room, err := chat.NewRoom(
			chat.WithMethod(chat.MethodPrivate),
			chat.WithTimestamp(true),
			chat.WithTitle(title),
			chat.WithDeleteButton(""),
		)
		require.NoError(t, err)
		assert.Equal(t, chat.MethodPrivate, room.Method())
		assert.Equal(t, chat.Options{Timestamp: true, Title: title}, room.Options())
	})

	t.Run("err: invalid method option", func(t *testing.T) {
		_, err := chat.NewRoom(chat.WithMethod(chat.MethodUnset))
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("err: method cannot change", func(t *testing.T) {
		room, err := chat.NewRoom(chat.WithMethod(chat.MethodGroup))
		require.NoError(t, err)
		require.NoError(t, room.SetMethod(chat.MethodGroup))
		err = room.SetMethod(chat.MethodPrivate)
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Equal(t, chat.MethodGroup, room.Method())
	})

	t.Run("err: operations need a method", func(t *testing.T) {
		room, err := chat.NewRoom()
		require.NoError(t, err)
		user := *tests.User()

		_, err = room.SendMessage(user, "hello")
		assert.ErrorIs(t, err, core.ErrChatMethodMissing)
		assert.True(t, core.IsFatal(err))

		_, err = room.ReceiveMessage(user, "hello")
		assert.ErrorIs(t, err, core.ErrChatMethodMissing)

		assert.ErrorIs(t, room.AddUser(user), core.ErrChatMethodMissing)
		assert.Nil(t, room.ChatHistory())
		assert.Nil(t, room.Users())

		err = room.Run(context.Background())
		assert.ErrorIs(t, err, core.ErrChatMethodMissing)
		assert.True(t, core.IsFatal(err))
	})

	t.Run("ok: messages are recorded", func(t *testing.T) {
		room, err := chat.NewRoom(chat.WithMethod(chat.MethodGroup))
		require.NoError(t, err)
		user := *tests.User()
		require.NoError(t, room.AddUser(user))

		sent, err := room.SendMessage(user, "first")
		require.NoError(t, err)
		received, err := room.ReceiveMessage(user, "second")
		require.NoError(t, err)
		published, err := room.Publish(chat.Message{Sender: user.Name, Content: "third"})
		require.NoError(t, err)

		assert.Equal(t, []chat.Message{sent, received, published}, room.ChatHistory())
		assert.Equal(t, []core.User{user}, room.Users())
	})

	t.Run("err: private message to an unknown user", func(t *testing.T) {
		room, err := chat.NewRoom(chat.WithMethod(chat.MethodPrivate))
		require.NoError(t, err)
		require.NoError(t, room.AddUser(core.User{Name: "alice"}))
		require.NoError(t, room.AddUser(core.User{Name: "carol"}))

		_, err = room.Publish(chat.Message{Sender: "alice", To: "bobby", Content: "psst"})
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Empty(t, room.ChatHistory())

		_, err = room.Publish(chat.Message{Sender: "alice", To: "carol", Content: "psst"})
		assert.NoError(t, err)
		assert.Len(t, room.ChatHistory(), 1)
	})

	t.Run("ok: run stops with its context", func(t *testing.T) {
		room, err := chat.NewRoom(chat.WithMethod(chat.MethodGroup))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- room.Run(ctx)
		}()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("room did not stop")
		}
		assert.NoError(t, room.Shutdown(time.Second))
		assert.Zero(t, room.Clients())
		assert.ErrorIs(t, room.Run(context.Background()), core.ErrConflict)
	})

	t.Run("ok: shutdown without run", func(t *testing.T) {
		room, err := chat.NewRoom(chat.WithMethod(chat.MethodGroup))
		require.NoError(t, err)
		assert.NoError(t, room.Shutdown(time.Second))
	})
}
