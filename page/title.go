package page

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prior-it/hermes/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Title returns the text of the first <title> element in the document.
// If the document does not contain a non-empty title, this returns core.ErrNoTitle.
func Title(r io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(r)
	inTitle := false
	var title strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return "", core.ErrNoTitle
			}
			return "", fmt.Errorf("cannot parse html document: %w", err)

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if atom.Lookup(name) == atom.Title {
				inTitle = true
			}

		case html.TextToken:
			if inTitle {
				title.Write(tokenizer.Text())
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if inTitle && atom.Lookup(name) == atom.Title {
				value := strings.Join(strings.Fields(title.String()), " ")
				if len(value) == 0 {
					return "", core.ErrNoTitle
				}
				return value, nil
			}

		default:
		}
	}
}

// TitleString returns the text of the first <title> element in the html string.
func TitleString(document string) (string, error) {
	return Title(strings.NewReader(document))
}
