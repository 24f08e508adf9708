package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"github.com/prior-it/hermes/core"
)

// Builder fills the slots of a template with generated markup.
// Every Add method fills a single slot and returns the builder so calls can be chained.
// Failures never abort the page: they are logged, recorded (see [Builder.Err]) and the slot is left as-is.
//
// A Builder is not safe for concurrent use, create one per page.
//
// # Example
//
//	html := page.NewBuilder().
//		AddHeader("Welcome").
//		AddNavElements("Home", "About").
//		AddForm(core.MethodPost, "username", "password").
//		Build()
type Builder struct {
	ctx       context.Context
	template  *Template
	title     string
	content   map[Slot]string
	methods   []core.HTTPMethod
	inputType InputTypeFunc
	logger    *slog.Logger
	errs      []error
}

type Option func(b *Builder)

// WithTemplate builds on the specified template instead of the embedded default.
func WithTemplate(t *Template) Option {
	return func(b *Builder) {
		b.template = t
	}
}

// WithStore builds on the current template of the specified store.
func WithStore(s *Store) Option {
	return func(b *Builder) {
		b.template = s.Template()
	}
}

// WithLegacyInputTypes uses the field name as the type of every generated form input, e.g. a field named
// "username" becomes <input type="username">.
func WithLegacyInputTypes() Option {
	return func(b *Builder) {
		b.inputType = FieldNameInputType
	}
}

// WithTitle replaces the text of the <title> element of the template.
// Applications identify built pages by their title, so every page they serve needs its own.
func WithTitle(title string) Option {
	return func(b *Builder) {
		b.title = title
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithContext sets the context that is passed to the fragment components while rendering.
func WithContext(ctx context.Context) Option {
	return func(b *Builder) {
		b.ctx = ctx
	}
}

// NewBuilder creates a builder for the embedded default template.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		ctx:       context.Background(),
		template:  DefaultTemplate(),
		content:   make(map[Slot]string, len(Slots)),
		methods:   []core.HTTPMethod{core.MethodGet, core.MethodPost, core.MethodPut},
		inputType: SemanticInputType,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) fail(op string, err error) {
	err = core.Recoverable(op, err)
	b.logger.Warn("Could not add content to page", "error", err)
	b.errs = append(b.errs, err)
}

func (b *Builder) fill(op string, slot Slot, component templ.Component) *Builder {
	if !b.template.Has(slot) {
		b.fail(op, fmt.Errorf("%w: %s", core.ErrUnknownSlot, slot))
		return b
	}
	if _, ok := b.content[slot]; ok {
		b.fail(op, fmt.Errorf("%w: %s", core.ErrSlotFilled, slot))
		return b
	}
	html, err := Render(b.ctx, component)
	if err != nil {
		b.fail(op, fmt.Errorf("cannot render %s: %w", slot, err))
		return b
	}
	b.content[slot] = html
	return b
}

// AddHeader adds a header to the top of the page.
func (b *Builder) AddHeader(header string) *Builder {
	return b.fill("addHeader", SlotHeader, Header(header))
}

// AddNavElements adds a navigation menubar that contains the specified elements, in order.
func (b *Builder) AddNavElements(elements ...string) *Builder {
	return b.fill("addNavElements", SlotNav, Nav(elements...))
}

// AddMainSection adds a main section that contains a header and a paragraph.
func (b *Builder) AddMainSection(header string, paragraph string) *Builder {
	return b.fill("addMainSection", SlotMain, MainSection(header, paragraph))
}

// AddForm adds a form with one required input per field and a submit button.
// The method has to be GET, POST or PUT; otherwise core.ErrHTTPMethod is recorded and the form is left out.
func (b *Builder) AddForm(method core.HTTPMethod, fields ...string) *Builder {
	if !slices.Contains(b.methods, method) {
		b.fail("addForm", fmt.Errorf("%w, not %q", core.ErrHTTPMethod, method))
		return b
	}
	return b.fill("addForm", SlotForm, Form(method, b.inputType, fields...))
}

// AddImage adds an image to the image section of the page.
func (b *Builder) AddImage(imageURL string, altText string) *Builder {
	return b.fill("addImage", SlotImage, Image(imageURL, altText))
}

// AddLink is not implemented yet and records core.ErrNotImplemented.
func (b *Builder) AddLink(_ string, _ string) *Builder {
	b.fail("addLink", core.ErrNotImplemented)
	return b
}

// AddTable is not implemented yet and records core.ErrNotImplemented.
func (b *Builder) AddTable(_ [][]string) *Builder {
	b.fail("addTable", core.ErrNotImplemented)
	return b
}

// AddFooterSection adds a footer at the bottom of the page that contains contact information.
func (b *Builder) AddFooterSection(address string, phoneNumber string, email string) *Builder {
	return b.fill("addFooterSection", SlotFooter, Footer(address, phoneNumber, email))
}

// Build returns the page in its current state. Slots that were not filled keep their placeholder marker.
// Build can be called multiple times.
func (b *Builder) Build() string {
	html := b.template.Render(b.content)
	if len(b.title) == 0 {
		return html
	}
	return replaceTitle(html, b.title)
}

// replaceTitle sets the text of the first <title> element, documents without one are returned unchanged.
func replaceTitle(document string, title string) string {
	start := strings.Index(document, "<title>")
	if start < 0 {
		return document
	}
	start += len("<title>")
	end := strings.Index(document[start:], "</title>")
	if end < 0 {
		return document
	}
	return document[:start] + templ.EscapeString(title) + document[start+end:]
}

// Err returns every error recorded while building the page, or nil if there were none.
// All of these are recoverable, the result of Build is still a complete document.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// Filled reports whether the specified slot has been filled.
func (b *Builder) Filled(slot Slot) bool {
	_, ok := b.content[slot]
	return ok
}
