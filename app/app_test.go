package app_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prior-it/hermes/app"
	"github.com/prior-it/hermes/chat"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/page"
	"github.com/prior-it/hermes/server"
	"github.com/prior-it/hermes/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct {
	app.BaseController
}

func (greeter) HandleGet(apollo *server.Apollo) error {
	return apollo.RenderText("hello " + apollo.GetQuery("name"))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestRoutes(t *testing.T) {
	t.Run("err: endpoint and method are required", func(t *testing.T) {
		a := app.New(nil)
		assert.ErrorIs(t, a.AddRoute("", core.MethodGet), core.ErrInvalidArgument)
		assert.ErrorIs(t, a.AddRoute("login", ""), core.ErrInvalidArgument)
		assert.Empty(t, a.Routes())
	})

	t.Run("err: unsupported method", func(t *testing.T) {
		err := app.New(nil).AddRoute("login", core.HTTPMethod("DELETE"))
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
		assert.ErrorIs(t, err, core.ErrHTTPMethod)
	})

	t.Run("ok: last write wins", func(t *testing.T) {
		a := app.New(nil)
		require.NoError(t, a.AddRoute("login", core.MethodGet))
		require.NoError(t, a.AddRoute("about", core.MethodGet))
		require.NoError(t, a.AddRoute("login", core.MethodPost))
		assert.Equal(t, []app.Route{
			{Endpoint: "login", Method: core.MethodPost},
			{Endpoint: "about", Method: core.MethodGet},
		}, a.Routes())
		route, ok := a.Route("login")
		assert.True(t, ok)
		assert.Equal(t, "/login", route.Path())
	})
}

func TestRouteEndpoints(t *testing.T) {
	a := app.New(nil)
	require.NoError(t, a.AddRoute("login", core.MethodGet))
	require.NoError(t, a.AddRoute("/login", core.MethodPost))
	require.NoError(t, a.AddRoute("about", core.MethodGet))
	require.NoError(t, a.AddHTMLPage(page.LoginPage(), "Login"))
	require.NoError(t, a.AddResponseToPage("about us"))

	t.Run("ok: leading slash does not make a new route", func(t *testing.T) {
		require.Len(t, a.Routes(), 2)
		route, ok := a.Route("login")
		require.True(t, ok)
		assert.Equal(t, core.MethodPost, route.Method)
		assert.Equal(t, "/login", route.Path())
		_, ok = a.Route("/about")
		assert.True(t, ok)
	})

	t.Run("ok: every route gets its own page", func(t *testing.T) {
		h, err := a.Handler()
		require.NoError(t, err)
		res := get(t, h, "/about")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "about us", res.Body.String())
	})
}

func TestPages(t *testing.T) {
	t.Run("ok: html pages are keyed by their title", func(t *testing.T) {
		a := app.New(nil)
		require.NoError(t, a.AddHTMLPage(page.LoginPage(), "Sign in"))
		p, ok := a.Page("Login")
		require.True(t, ok)
		rendered, ok := p.(app.RenderedPage)
		require.True(t, ok)
		assert.Equal(t, "Sign in", rendered.DisplayTitle)
		assert.Contains(t, string(rendered.Body), "<title>Login</title>")
	})

	t.Run("ok: documents without title use the specified title", func(t *testing.T) {
		a := app.New(nil)
		require.NoError(t, a.AddHTMLPage(strings.NewReader("<p>hi</p>"), "Greeting"))
		_, ok := a.Page("Greeting")
		assert.True(t, ok)
	})

	t.Run("err: page without any title", func(t *testing.T) {
		a := app.New(nil)
		err := a.AddHTMLPage(strings.NewReader("<p>hi</p>"), "")
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
		assert.Empty(t, a.Pages())
	})

	t.Run("ok: custom pages", func(t *testing.T) {
		a := app.New(nil)
		html := a.NewBuilder().AddHeader(tests.Faker.Word()).Build()
		require.NoError(t, a.AddCustomHTMLPage(html))
		assert.Equal(t, html, a.CustomPage())
		assert.Equal(t, []app.Page{app.CustomPage{Title: "Hermes", HTML: html}}, a.Pages())
	})

	t.Run("ok: built pages with their own title are kept apart", func(t *testing.T) {
		a := app.New(nil)
		require.NoError(t, a.AddCustomHTMLPage(a.NewBuilder(page.WithTitle("First")).AddHeader("one").Build()))
		require.NoError(t, a.AddCustomHTMLPage(a.NewBuilder(page.WithTitle("Second")).AddHeader("two").Build()))
		assert.Len(t, a.Pages(), 2)
		_, ok := a.Page("First")
		assert.True(t, ok)
		_, ok = a.Page("Second")
		assert.True(t, ok)
	})

	t.Run("ok: replacing a page is logged", func(t *testing.T) {
		defer slog.SetDefault(slog.Default())
		var buf bytes.Buffer
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

		a := app.New(nil)
		require.NoError(t, a.AddCustomHTMLPage(a.NewBuilder().AddHeader("one").Build()))
		require.NoError(t, a.AddCustomHTMLPage(a.NewBuilder().AddHeader("two").Build()))
		assert.Len(t, a.Pages(), 1)
		assert.Contains(t, buf.String(), "Page replaces an earlier page")
		assert.Contains(t, buf.String(), "page=Hermes")
	})

	t.Run("err: custom page without title", func(t *testing.T) {
		a := app.New(nil)
		err := a.AddCustomHTMLPage("<p>hi</p>")
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
		assert.ErrorIs(t, err, core.ErrNoTitle)
		assert.Empty(t, a.CustomPage())
	})

	t.Run("ok: responses are keyed by their text", func(t *testing.T) {
		a := app.New(nil)
		text := tests.Faker.Sentence(5)
		require.NoError(t, a.AddResponseToPage(text))
		assert.Equal(t, text, a.Response())
		p, ok := a.Page(text)
		assert.True(t, ok)
		assert.Equal(t, app.PlainResponse{Text: text}, p)
	})

	t.Run("err: empty response", func(t *testing.T) {
		assert.ErrorIs(t, app.New(nil).AddResponseToPage(""), core.ErrInvalidArgument)
	})
}

func TestAddController(t *testing.T) {
	a := app.New(nil)
	assert.ErrorIs(t, a.AddController(nil), core.ErrInvalidArgument)
	assert.ErrorIs(t, a.AddController(greeter{}), core.ErrInvalidArgument)
	require.NoError(t, a.AddController(greeter{app.NewBaseController("greet")}))
	assert.Equal(t, "greet", a.Controller().Endpoint())
}

func TestAddChatRoom(t *testing.T) {
	t.Run("err: room without method", func(t *testing.T) {
		a := app.New(nil)
		room, err := chat.NewRoom()
		require.NoError(t, err)
		assert.ErrorIs(t, a.AddChatRoom(room), core.ErrChatMethodMissing)
		assert.Nil(t, a.ChatRoom())
	})

	t.Run("err: nil room", func(t *testing.T) {
		assert.ErrorIs(t, app.New(nil).AddChatRoom(nil), core.ErrInvalidArgument)
	})

	t.Run("ok: room is served", func(t *testing.T) {
		a := app.New(nil)
		room, err := chat.NewRoom(chat.WithMethod(chat.MethodGroup), chat.WithTitle("Lobby"))
		require.NoError(t, err)
		require.NoError(t, a.AddChatRoom(room))
		assert.Same(t, room, a.ChatRoom())

		h, err := a.Handler()
		require.NoError(t, err)
		res := get(t, h, chat.ConfigEndpoint)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), `"title":"Lobby"`)
		assert.Contains(t, res.Body.String(), `"method":"GROUP"`)
	})
}

func TestChatWithDefaultConfig(t *testing.T) {
	a := app.New(config.Default())
	room, err := chat.NewRoom(chat.WithMethod(chat.MethodGroup))
	require.NoError(t, err)
	require.NoError(t, a.AddChatRoom(room))
	h, err := a.Handler()
	require.NoError(t, err)

	name := tests.Username()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/join", strings.NewReader(url.Values{"username": {name}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(recorder, req)

	t.Run("ok: visitors can join without session keys", func(t *testing.T) {
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		require.NotEmpty(t, recorder.Result().Cookies())
		require.Len(t, room.Users(), 1)
		assert.Equal(t, name, room.Users()[0].Name)
	})

	t.Run("ok: session identifies the visitor", func(t *testing.T) {
		res := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		for _, cookie := range recorder.Result().Cookies() {
			req.AddCookie(cookie)
		}
		h.ServeHTTP(res, req)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "Logged in as <strong>"+name+"</strong>")
	})
}

func TestHandler(t *testing.T) {
	a := app.New(nil)
	a.SetApplicationTitle("Demo")
	require.NoError(t, a.AddController(greeter{app.NewBaseController("/greet")}))
	require.NoError(t, a.AddRoute("login", core.MethodGet))
	require.NoError(t, a.AddRoute("greet", core.MethodGet))
	require.NoError(t, a.AddRoute("status", core.MethodGet))
	require.NoError(t, a.AddHTMLPage(page.LoginPage(), "Login"))
	require.NoError(t, a.AddResponseToPage("all good"))

	h, err := a.Handler()
	require.NoError(t, err)

	t.Run("ok: routes serve pages in order", func(t *testing.T) {
		res := get(t, h, "/login")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "<title>Login</title>")

		res = get(t, h, "/status")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "all good", res.Body.String())
	})

	t.Run("ok: controller", func(t *testing.T) {
		res := get(t, h, "/greet?name=world")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "hello world", res.Body.String())
	})

	t.Run("err: controller method that is not implemented", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		h.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/greet", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	})

	t.Run("ok: index lists the routes", func(t *testing.T) {
		res := get(t, h, "/")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "<h1>Demo</h1>")
		assert.Contains(t, res.Body.String(), `<a href="#">/status</a>`)
	})

	t.Run("ok: served pages are counted", func(t *testing.T) {
		before := a.PageCounter()
		get(t, h, "/login")
		get(t, h, "/status")
		assert.Equal(t, before+2, a.PageCounter())
	})

	t.Run("ok: static files", func(t *testing.T) {
		res := get(t, h, "/hermes/hermes.css")
		assert.Equal(t, http.StatusOK, res.Code)
	})
}

func TestHandlerWithoutContent(t *testing.T) {
	a := app.New(nil)
	require.NoError(t, a.AddRoute("login", core.MethodGet))
	require.NoError(t, a.AddRoute("about", core.MethodGet))
	require.NoError(t, a.AddHTMLPage(page.LoginPage(), "Login"))

	_, err := a.Handler()
	assert.ErrorIs(t, err, core.ErrNoContent)
	assert.True(t, core.IsFatal(err))
}

func freePort(t *testing.T) uint32 {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return uint32(port)
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.App.Host = "127.0.0.1"
	cfg.App.Port = freePort(t)
	cfg.App.ShutdownTimeout = 1

	a := app.New(cfg)
	require.NoError(t, a.AddRoute("hello", core.MethodGet))
	require.NoError(t, a.AddResponseToPage("hi there"))
	room, err := chat.NewRoom(chat.WithMethod(chat.MethodPrivate))
	require.NoError(t, err)
	require.NoError(t, a.AddChatRoom(room))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	target := fmt.Sprintf("http://127.0.0.1:%d/hello", cfg.App.Port)
	var body string
	require.Eventually(t, func() bool {
		res, err := http.Get(target) //nolint:noctx
		if err != nil {
			return false
		}
		defer res.Body.Close()
		content, _ := io.ReadAll(res.Body)
		body = string(content)
		return res.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "hi there", body)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
}
