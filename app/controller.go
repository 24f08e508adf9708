package app

import (
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/server"
)

// Controller serves dynamic content on a single endpoint.
// Embed [BaseController] to only implement the methods you need.
type Controller interface {
	Endpoint() string
	HandleGet(apollo *server.Apollo) error
	HandlePost(apollo *server.Apollo) error
	HandlePut(apollo *server.Apollo) error
}

// BaseController answers every method with core.ErrMethodNotAllowed.
type BaseController struct {
	Path string
}

func NewBaseController(endpoint string) BaseController {
	return BaseController{Path: endpoint}
}

func (c BaseController) Endpoint() string {
	return c.Path
}

func (BaseController) HandleGet(_ *server.Apollo) error {
	return core.ErrMethodNotAllowed
}

func (BaseController) HandlePost(_ *server.Apollo) error {
	return core.ErrMethodNotAllowed
}

func (BaseController) HandlePut(_ *server.Apollo) error {
	return core.ErrMethodNotAllowed
}
