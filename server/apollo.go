package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/gorilla/schema"
	"github.com/gorilla/sessions"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
)

// Apollo wraps a single request and its response writer.
type Apollo struct {
	Writer  http.ResponseWriter
	Request *http.Request
	Cfg     *config.Config
	logger  *slog.Logger
	store   sessions.Store
}

var formDecoder = func() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}()

func (apollo *Apollo) StatusCode(code int) {
	apollo.Writer.WriteHeader(code)
}

// Log the specified error message. args is a list of structured fields to add to the error message.
// The arguments should alternate between a field's name (string) and its value (any).
// This behaves the same as [log/slog.Error]
//
// # Example
//
//	apollo.Error("Something went wrong", "error", err, "user", user)
func (apollo *Apollo) Error(msg string, args ...any) {
	apollo.logger.Error(msg, args...)
}

// Log the specified debug message. args is a list of structured fields to add to the message.
// This behaves the same as [log/slog.Debug]
func (apollo *Apollo) Debug(msg string, args ...any) {
	apollo.logger.Debug(msg, args...)
}

func (apollo *Apollo) Logger() *slog.Logger {
	return apollo.logger
}

// LogString will add the specified field and its value to the current request's log entry
func (apollo *Apollo) LogString(field string, value string) {
	apollo.LogField(field, slog.StringValue(value))
}

// LogField will add the specified field and its value to the current request's log entry.
// This is a no-op if request logging is turned off.
//
// # Example
//
//	apollo.LogField("page_count", slog.Int64Value(count))
func (apollo *Apollo) LogField(field string, value slog.Value) {
	httplog.LogEntrySetField(apollo.Context(), field, value)
}

// Context returns the request's context.
//
// The context is canceled when the client's connection closes, the request is canceled (with HTTP/2),
// or when the ServeHTTP method returns.
func (apollo *Apollo) Context() context.Context {
	return apollo.Request.Context()
}

// Host returns the host on which the URL is sought, this is either the value of the "Host" header or the host
// name given in the URL itself. It may be of the form "host:port".
func (apollo *Apollo) Host() string {
	return apollo.Request.Host
}

// Path returns the full path of the request.
func (apollo *Apollo) Path() string {
	return apollo.Request.URL.Path
}

// Method returns the http method of the request.
func (apollo *Apollo) Method() string {
	return apollo.Request.Method
}

// GetPath returns the value for the named path wildcard in the router pattern that matched the request.
// It returns the empty string if there is no such wildcard in the pattern.
//
// E.g.: A route defined as `/users/{id}` can call `GetPath("id")` to return the value for "id" in the current path.
func (apollo *Apollo) GetPath(key string) string {
	return chi.URLParam(apollo.Request, key)
}

// ParseForm parses the submitted form into the struct v, using the `schema` struct tags to map form fields.
// Fields that are not present in v are ignored.
func (apollo *Apollo) ParseForm(v interface{}) error {
	if err := apollo.Request.ParseForm(); err != nil {
		return fmt.Errorf("%w: cannot parse form: %w", core.ErrInvalidArgument, err)
	}
	if err := formDecoder.Decode(v, apollo.Request.PostForm); err != nil {
		return fmt.Errorf("%w: cannot decode form: %w", core.ErrInvalidArgument, err)
	}
	return nil
}

// GetQuery returns the first value associated with the given query parameter in the request url.
// If there are no values set for the query param, this returns the empty string.
func (apollo *Apollo) GetQuery(param string) string {
	return apollo.Request.URL.Query().Get(param)
}

// GetHeader returns the first value associated with the given header in the request.
// If there are no values set for the header, this returns the empty string.
func (apollo *Apollo) GetHeader(header string) string {
	return apollo.Request.Header.Get(header)
}

// AddHeader adds the header, value pair to the response header. It appends to any existing values associated with key.
func (apollo *Apollo) AddHeader(header string, value string) {
	apollo.Writer.Header().Add(header, value)
}

// Redirect will return a response that redirects the user to the specified url.
// If HTMX is available, this will redirect using HTMX.
func (apollo *Apollo) Redirect(url string) {
	if apollo.GetHeader("HX-Request") == "true" {
		apollo.AddHeader("HX-Redirect", url)
		apollo.StatusCode(http.StatusOK)
	} else {
		apollo.AddHeader("Location", url)
		apollo.StatusCode(http.StatusSeeOther)
	}
}

// RenderComponent renders the specified component in the response body.
// You can render multiple components and they will all be returned by the response.
func (apollo *Apollo) RenderComponent(component templ.Component) error {
	apollo.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(apollo.Context(), apollo.Writer)
}

// RenderHTML writes a complete html document to the response body.
func (apollo *Apollo) RenderHTML(html string) error {
	return apollo.RenderComponent(templ.Raw(html))
}

// RenderText writes plain text to the response body.
func (apollo *Apollo) RenderText(text string) error {
	render.PlainText(apollo.Writer, apollo.Request, text)
	return nil
}

// RenderJSON marshals v as JSON into the response body.
func (apollo *Apollo) RenderJSON(v any) error {
	render.JSON(apollo.Writer, apollo.Request, v)
	return nil
}
