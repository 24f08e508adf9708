package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/prior-it/hermes/app"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/page"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	prebuilt    string
	header      string
	nav         []string
	mainHeader  string
	paragraph   string
	formMethod  string
	fields      []string
	image       string
	imageAlt    string
	address     string
	phone       string
	email       string
	legacyTypes bool
}

func newRenderCmd(load func() (*config.Config, error)) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:     "render",
		Aliases: []string{"r"},
		Short:   "Print a prebuilt or generated page",
		Long: `Print a page to stdout.

Every flag fills a single section of the page template, sections without a flag keep their
placeholder. Problems are reported on stderr and do not stop the page from being printed.

Examples:
  hermes render --prebuilt login
  hermes render --header Welcome --nav Home --nav About
  hermes render --form-method POST --field username --field password`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.prebuilt) > 0 {
				return renderPrebuilt(cmd.OutOrStdout(), opts.prebuilt)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if opts.legacyTypes {
				cfg.Page.LegacyInputTypes = true
			}
			builder := renderPage(app.New(cfg).NewBuilder(), opts)
			if err := builder.Err(); err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), builder.Build())
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.prebuilt, "prebuilt", "", "print a prebuilt page (login, contact)")
	flags.StringVar(&opts.header, "header", "", "page header")
	flags.StringSliceVar(&opts.nav, "nav", nil, "navigation element, can be repeated")
	flags.StringVar(&opts.mainHeader, "main-header", "", "header of the main section")
	flags.StringVar(&opts.paragraph, "main", "", "paragraph of the main section")
	flags.StringVar(&opts.formMethod, "form-method", "", "method of the form (GET, POST, PUT)")
	flags.StringSliceVar(&opts.fields, "field", nil, "form field, can be repeated")
	flags.StringVar(&opts.image, "image", "", "url of the image")
	flags.StringVar(&opts.imageAlt, "image-alt", "", "alternative text of the image")
	flags.StringVar(&opts.address, "address", "", "footer address")
	flags.StringVar(&opts.phone, "phone", "", "footer phone number")
	flags.StringVar(&opts.email, "email", "", "footer e-mail address")
	flags.BoolVar(&opts.legacyTypes, "legacy-inputs", false, "use the field names as input types")
	return cmd
}

func renderPrebuilt(w io.Writer, name string) error {
	var document io.Reader
	switch name {
	case "login":
		document = page.LoginPage()
	case "contact":
		document = page.ContactPage()
	default:
		return fmt.Errorf("%w: unknown prebuilt page %q", core.ErrInvalidArgument, name)
	}
	_, err := io.Copy(w, document)
	return err
}

func renderPage(builder *page.Builder, opts renderOptions) *page.Builder {
	if len(opts.header) > 0 {
		builder.AddHeader(opts.header)
	}
	if len(opts.nav) > 0 {
		builder.AddNavElements(opts.nav...)
	}
	if len(opts.mainHeader) > 0 || len(opts.paragraph) > 0 {
		builder.AddMainSection(opts.mainHeader, opts.paragraph)
	}
	if len(opts.formMethod) > 0 {
		// Unknown methods are reported by the builder
		builder.AddForm(core.HTTPMethod(strings.ToUpper(opts.formMethod)), opts.fields...)
	}
	if len(opts.image) > 0 {
		builder.AddImage(opts.image, opts.imageAlt)
	}
	if len(opts.address) > 0 || len(opts.phone) > 0 || len(opts.email) > 0 {
		builder.AddFooterSection(opts.address, opts.phone, opts.email)
	}
	return builder
}
