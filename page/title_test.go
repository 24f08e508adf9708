package page_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	t.Run("ok: title of prebuilt pages", func(t *testing.T) {
		title, err := page.Title(page.LoginPage())
		require.NoError(t, err)
		assert.Equal(t, "Login", title)

		title, err = page.Title(page.ContactPage())
		require.NoError(t, err)
		assert.Equal(t, "Contact", title)
	})

	t.Run("ok: whitespace and entities are normalised", func(t *testing.T) {
		title, err := page.TitleString("<html><head><title>\n  Fish &amp;\n Chips </title></head></html>")
		require.NoError(t, err)
		assert.Equal(t, "Fish & Chips", title)
	})

	t.Run("ok: first title wins", func(t *testing.T) {
		title, err := page.TitleString("<title>One</title><title>Two</title>")
		require.NoError(t, err)
		assert.Equal(t, "One", title)
	})

	t.Run("ok: built pages have the template title", func(t *testing.T) {
		title, err := page.TitleString(page.NewBuilder().AddHeader("x").Build())
		require.NoError(t, err)
		assert.Equal(t, "Hermes", title)
	})

	t.Run("err: no title", func(t *testing.T) {
		for _, doc := range []string{"", "<html></html>", "<title>   </title>", "plain text"} {
			_, err := page.TitleString(doc)
			assert.ErrorIs(t, err, core.ErrNoTitle, "%q", doc)
		}
	})
}

func TestStore(t *testing.T) {
	t.Run("ok: embedded default", func(t *testing.T) {
		store := page.NewStore("")
		assert.Same(t, page.DefaultTemplate(), store.Template())
		assert.NoError(t, store.Reload())
	})

	t.Run("ok: template file and reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "template.html")
		require.NoError(t, os.WriteFile(path, []byte("<b>"+page.SlotHeader.Marker()+"</b>"), 0o600))

		store := page.NewStore(path)
		html := page.NewBuilder(page.WithStore(store)).AddHeader("one").Build()
		assert.Equal(t, "<b><h1>one</h1></b>", html)

		require.NoError(t, os.WriteFile(path, []byte("<i>"+page.SlotHeader.Marker()+"</i>"), 0o600))
		require.NoError(t, store.Reload())
		html = page.NewBuilder(page.WithStore(store)).AddHeader("two").Build()
		assert.Equal(t, "<i><h1>two</h1></i>", html)
	})

	t.Run("err: missing file degrades to an empty template", func(t *testing.T) {
		store := page.NewStore(filepath.Join(t.TempDir(), "missing.html"))
		b := page.NewBuilder(page.WithStore(store)).AddHeader("header")
		assert.Equal(t, "", b.Build())
		assert.ErrorIs(t, b.Err(), core.ErrUnknownSlot)
		assert.Error(t, store.Reload())
	})
}
