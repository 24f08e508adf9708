package page

import (
	"bytes"
	_ "embed"
	"io"
)

var (
	//go:embed static/login.html
	loginPage []byte
	//go:embed static/contact.html
	contactPage []byte
)

// LoginPage returns a prebuilt login page with a username and password form.
func LoginPage() io.Reader {
	return bytes.NewReader(loginPage)
}

// ContactPage returns a prebuilt contact page with a name, e-mail and message form.
func ContactPage() io.Reader {
	return bytes.NewReader(contactPage)
}
