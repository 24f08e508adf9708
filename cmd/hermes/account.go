package main

import (
	"errors"
	"net/http"

	"github.com/prior-it/hermes/app"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/page"
	"github.com/prior-it/hermes/server"
)

// accountController shows a login form and checks the submitted credentials for valid input.
// It does not authenticate anyone.
type accountController struct {
	app.BaseController
	app *app.App
}

type loginForm struct {
	Username string `schema:"username"`
	Password string `schema:"password"`
}

func newAccountController(application *app.App) *accountController {
	return &accountController{
		BaseController: app.NewBaseController("account"),
		app:            application,
	}
}

func (c *accountController) HandleGet(apollo *server.Apollo) error {
	html := c.app.NewBuilder(page.WithTitle("Account")).
		AddHeader("Account").
		AddForm(core.MethodPost, "username", "password").
		Build()
	return apollo.RenderHTML(html)
}

func (c *accountController) HandlePost(apollo *server.Apollo) error {
	var form loginForm
	if err := apollo.ParseForm(&form); err != nil {
		return err
	}
	if err := errors.Join(core.ValidateUsername(form.Username), core.ValidatePassword(form.Password)); err != nil {
		apollo.StatusCode(http.StatusUnprocessableEntity)
		return apollo.RenderHTML(c.app.NewBuilder(page.WithTitle("Account")).
			AddHeader("Account").
			AddMainSection("Invalid input", err.Error()).
			AddForm(core.MethodPost, "username", "password").
			Build())
	}
	apollo.LogString("account", form.Username)
	return apollo.RenderHTML(c.app.NewBuilder(page.WithTitle("Account")).
		AddHeader("Account").
		AddMainSection("Welcome", "Your input is valid, "+form.Username+".").
		Build())
}
