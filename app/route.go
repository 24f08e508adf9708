package app

import (
	"strings"

	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/server"
)

// Route is an endpoint that the application serves with a single HTTP method.
type Route struct {
	Endpoint string
	Method   core.HTTPMethod
}

// Path returns the endpoint as an absolute url path, "login" becomes "/login".
func (r Route) Path() string {
	return absolutePath(r.Endpoint)
}

func absolutePath(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") {
		return endpoint
	}
	return "/" + endpoint
}

// Page is the content that is served on a route.
// A page is one of [RenderedPage], [CustomPage] or [PlainResponse].
type Page interface {
	// Key identifies the page in the application, later pages with the same key replace earlier ones.
	Key() string
	render(apollo *server.Apollo) error
}

// RenderedPage is a complete document that was registered with [App.AddHTMLPage].
type RenderedPage struct {
	// Title of the document, which is used as the key.
	Title string
	// DisplayTitle is the title that the page was registered with.
	DisplayTitle string
	Body         []byte
}

func (p RenderedPage) Key() string {
	return p.Title
}

func (p RenderedPage) render(apollo *server.Apollo) error {
	return apollo.RenderHTML(string(p.Body))
}

// CustomPage is a page that was built in the application, usually with a [page.Builder].
type CustomPage struct {
	Title string
	HTML  string
}

func (p CustomPage) Key() string {
	return p.Title
}

func (p CustomPage) render(apollo *server.Apollo) error {
	return apollo.RenderHTML(p.HTML)
}

// PlainResponse is served as text, without any markup.
type PlainResponse struct {
	Text string
}

func (p PlainResponse) Key() string {
	return p.Text
}

func (p PlainResponse) render(apollo *server.Apollo) error {
	return apollo.RenderText(p.Text)
}
