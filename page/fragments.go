package page

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/prior-it/hermes/core"
)

// InputTypeFunc decides the type attribute of a generated form input based on its field name.
type InputTypeFunc func(field string) string

// SemanticInputType maps well-known field names to their input type and falls back to "text".
func SemanticInputType(field string) string {
	name := strings.ToLower(field)
	switch {
	case strings.Contains(name, "password"):
		return "password"
	case strings.Contains(name, "email"):
		return "email"
	case strings.Contains(name, "phone"):
		return "tel"
	default:
		return "text"
	}
}

// FieldNameInputType uses the field name itself as the input type.
func FieldNameInputType(field string) string {
	return field
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func Header(text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w, "<h1>", templ.EscapeString(text), "</h1>")
	})
}

// Nav renders a navigation list with one item per element. The links are placeholders.
func Nav(elements ...string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := write(w, "<nav><ul>"); err != nil {
			return err
		}
		for _, element := range elements {
			err := write(w, `<li><a href="#">`, templ.EscapeString(element), "</a></li>")
			if err != nil {
				return err
			}
		}
		return write(w, "</ul></nav>")
	})
}

func MainSection(header string, paragraph string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(
			w,
			"<h1>", templ.EscapeString(header), "</h1>",
			"<p>", templ.EscapeString(paragraph), "</p>",
		)
	})
}

// Form renders exactly one form element using the specified method, callers validate the method beforehand.
func Form(method core.HTTPMethod, inputType InputTypeFunc, fields ...string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := write(w, `<form method="`, templ.EscapeString(method.String()), `">`); err != nil {
			return err
		}
		for _, field := range fields {
			name := templ.EscapeString(field)
			err := write(w,
				`<label for="`, name, `">`, name, "</label>",
				`<input type="`, templ.EscapeString(inputType(field)),
				`" id="`, name, `" name="`, name, `" required><br>`,
			)
			if err != nil {
				return err
			}
		}
		return write(w, `<input type="submit" value="submit"></form>`)
	})
}

func Image(url string, altText string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(
			w,
			`<img src="`, templ.EscapeString(string(templ.URL(url))),
			`" alt="`, templ.EscapeString(altText), `">`,
		)
	})
}

func Footer(address string, phoneNumber string, email string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(
			w,
			"<footer>",
			"<p>Address: ", templ.EscapeString(address), "</p>",
			"<p>Phone: ", templ.EscapeString(phoneNumber), "</p>",
			"<p>Email: ", templ.EscapeString(email), "</p>",
			"</footer>",
		)
	})
}

// Render renders a component to a string.
func Render(ctx context.Context, component templ.Component) (string, error) {
	var sb strings.Builder
	if err := component.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
