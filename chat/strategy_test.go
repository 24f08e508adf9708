package chat_test

import (
	"sync"
	"testing"

	"github.com/prior-it/hermes/chat"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	t.Run("ok: parse is case-insensitive", func(t *testing.T) {
		for input, expected := range map[string]chat.Method{
			"private": chat.MethodPrivate,
			"PRIVATE": chat.MethodPrivate,
			" Group ": chat.MethodGroup,
			"group":   chat.MethodGroup,
		} {
			method, err := chat.ParseMethod(input)
			require.NoError(t, err)
			assert.Equal(t, expected, method)
		}
	})

	t.Run("err: unknown method", func(t *testing.T) {
		_, err := chat.ParseMethod("broadcast")
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("ok: text round trip", func(t *testing.T) {
		text, err := chat.MethodGroup.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "GROUP", string(text))

		var method chat.Method
		require.NoError(t, method.UnmarshalText([]byte("private")))
		assert.Equal(t, chat.MethodPrivate, method)
	})
}

func TestStrategy(t *testing.T) {
	t.Run("err: unset method has no strategy", func(t *testing.T) {
		_, err := chat.NewStrategy(chat.MethodUnset)
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})

	t.Run("ok: interleaved messages are kept in order", func(t *testing.T) {
		for _, method := range []chat.Method{chat.MethodPrivate, chat.MethodGroup} {
			strategy, err := chat.NewStrategy(method)
			require.NoError(t, err)
			user := *tests.User()
			count := tests.Faker.IntRange(2, 20)
			for i := range count {
				if i%2 == 0 {
					strategy.SendMessage(user, tests.Faker.Word())
				} else {
					strategy.ReceiveMessage(user, tests.Faker.Word())
				}
			}
			history := strategy.ChatHistory()
			require.Len(t, history, count)
			for i, msg := range history {
				if i%2 == 0 {
					assert.Equal(t, chat.DirectionOutbound, msg.Direction)
				} else {
					assert.Equal(t, chat.DirectionInbound, msg.Direction)
				}
				assert.Equal(t, chat.TypeChat, msg.Type)
				assert.Equal(t, user.Name, msg.Sender)
				assert.False(t, msg.Timestamp.IsZero())
			}
		}
	})

	t.Run("ok: history is a copy", func(t *testing.T) {
		strategy, err := chat.NewStrategy(chat.MethodGroup)
		require.NoError(t, err)
		strategy.SendMessage(*tests.User(), "hello")
		history := strategy.ChatHistory()
		history[0].Content = "changed"
		assert.Equal(t, "hello", strategy.ChatHistory()[0].Content)
	})

	t.Run("ok: users are unique by name", func(t *testing.T) {
		strategy, err := chat.NewStrategy(chat.MethodGroup)
		require.NoError(t, err)
		user := *tests.User()
		strategy.AddUser(user)
		strategy.AddUser(user)
		assert.Len(t, strategy.Users(), 1)
	})

	t.Run("ok: group delivers to everyone", func(t *testing.T) {
		strategy, err := chat.NewStrategy(chat.MethodGroup)
		require.NoError(t, err)
		alice, bob := *tests.User(), *tests.User()
		strategy.AddUser(alice)
		strategy.AddUser(bob)
		msg := strategy.SendMessage(alice, "hi")
		assert.Len(t, strategy.Recipients(msg), 2)
	})

	t.Run("ok: private delivers to a single user", func(t *testing.T) {
		strategy, err := chat.NewStrategy(chat.MethodPrivate)
		require.NoError(t, err)
		alice, bob := core.User{Name: "alice"}, core.User{Name: "bobby"}
		carol := core.User{Name: "carol"}
		strategy.AddUser(alice)
		strategy.AddUser(bob)
		strategy.AddUser(carol)

		msg := strategy.Record(chat.Message{Sender: alice.Name, To: carol.Name, Content: "hi"})
		assert.Equal(t, []core.User{carol}, strategy.Recipients(msg))

		msg = strategy.SendMessage(alice, "hi")
		assert.Equal(t, []core.User{bob}, strategy.Recipients(msg))

		msg = strategy.Record(chat.Message{Sender: bob.Name, Content: "hi"})
		assert.Equal(t, []core.User{alice}, strategy.Recipients(msg))
	})

	t.Run("err: private message to an unknown user", func(t *testing.T) {
		strategy, err := chat.NewStrategy(chat.MethodPrivate)
		require.NoError(t, err)
		alice, carol := core.User{Name: "alice"}, core.User{Name: "carol"}
		strategy.AddUser(alice)
		strategy.AddUser(carol)

		msg := chat.Message{Sender: alice.Name, To: "bobby", Content: "hi"}
		assert.Empty(t, strategy.Recipients(msg))
	})

	t.Run("ok: private without other users has no recipients", func(t *testing.T) {
		strategy, err := chat.NewStrategy(chat.MethodPrivate)
		require.NoError(t, err)
		alice := *tests.User()
		strategy.AddUser(alice)
		assert.Empty(t, strategy.Recipients(strategy.SendMessage(alice, "anyone?")))
	})

	t.Run("ok: concurrent use", func(t *testing.T) {
		strategy, err := chat.NewStrategy(chat.MethodGroup)
		require.NoError(t, err)
		var wg sync.WaitGroup
		for range 10 {
			user := *tests.User()
			wg.Add(1)
			go func() {
				defer wg.Done()
				strategy.AddUser(user)
				for range 10 {
					strategy.ReceiveMessage(user, "hello")
					_ = strategy.ChatHistory()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, strategy.ChatHistory(), 100)
	})
}
