package chat

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginPolicy(t *testing.T) {
	check := func(policy originPolicy, host string, origin string) bool {
		req := httptest.NewRequest(http.MethodGet, "http://"+host+"/chat-websocket", nil)
		if len(origin) > 0 {
			req.Header.Set("Origin", origin)
		}
		return policy.check(req)
	}

	t.Run("ok: requests without origin", func(t *testing.T) {
		policy := newOriginPolicy([]string{"https://example.com"}, slog.Default())
		assert.True(t, check(policy, "chat.test", ""))
	})

	t.Run("ok: same host without configured origins", func(t *testing.T) {
		policy := newOriginPolicy(nil, slog.Default())
		assert.True(t, check(policy, "chat.test", "http://chat.test"))
		assert.False(t, check(policy, "chat.test", "http://evil.test"))
	})

	t.Run("ok: configured origins are normalized", func(t *testing.T) {
		policy := newOriginPolicy([]string{" HTTPS://Example.com ", "", "not an origin"}, slog.Default())
		assert.Len(t, policy.allowed, 1)
		assert.True(t, check(policy, "chat.test", "https://example.com"))
		assert.False(t, check(policy, "chat.test", "http://example.com"))
		assert.False(t, check(policy, "chat.test", "http://chat.test"))
	})

	t.Run("ok: wildcard", func(t *testing.T) {
		policy := newOriginPolicy([]string{"*"}, slog.Default())
		assert.True(t, check(policy, "chat.test", "https://anywhere.test"))
	})

	t.Run("err: malformed origin", func(t *testing.T) {
		policy := newOriginPolicy(nil, slog.Default())
		assert.False(t, check(policy, "chat.test", "chat.test"))
	})
}
