package server_test

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	hello := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "hello")
	})

	t.Run("ok: controller and static resources below the endpoint", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>welcome</p>"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("p{}"), 0o600))

		srv, err := server.Configure().
			Port(8081).
			Endpoint("/app").
			Controller(hello, "hello").
			StaticResources("index.html", dir).
			Build()
		require.NoError(t, err)
		assert.Equal(t, uint32(8081), srv.Port())

		res := serve(srv.Handler(), http.MethodGet, "/app/hello", "")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "hello", res.Body.String())

		res = serve(srv.Handler(), http.MethodGet, "/app/", "")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "welcome")

		res = serve(srv.Handler(), http.MethodGet, "/app/style.css", "")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "p{}", res.Body.String())

		res = serve(srv.Handler(), http.MethodGet, "/hello", "")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("ok: root endpoint", func(t *testing.T) {
		srv, err := server.Configure().Port(8080).Endpoint("/").Controller(hello, "/hi").Build()
		require.NoError(t, err)
		res := serve(srv.Handler(), http.MethodGet, "/hi", "")
		assert.Equal(t, "hello", res.Body.String())
	})

	t.Run("err: missing port and endpoint are both reported", func(t *testing.T) {
		srv, err := server.Configure().Build()
		assert.Nil(t, srv)
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
		assert.True(t, core.IsFatal(err))
		assert.Contains(t, err.Error(), "no port configured")
		assert.Contains(t, err.Error(), "no endpoint configured")
	})

	t.Run("err: invalid steps", func(t *testing.T) {
		_, err := server.Configure().
			Port(0).
			Endpoint("app").
			Controller(nil, "/x").
			Controller(hello, "").
			StaticResources("index.html", filepath.Join(t.TempDir(), "missing")).
			Build()
		require.Error(t, err)
		for _, msg := range []string{
			"invalid port 0",
			"must start with a slash",
			"controller cannot be nil",
			"controller needs an endpoint",
			"cannot use static directory",
		} {
			assert.Contains(t, err.Error(), msg)
		}
	})

	t.Run("err: welcome file must exist", func(t *testing.T) {
		_, err := server.Configure().Port(80).Endpoint("/").StaticResources("index.html", t.TempDir()).Build()
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})
}
