package core

import (
	"fmt"
	"strings"
)

type HTTPMethod string

const (
	MethodGet  HTTPMethod = "GET"
	MethodPost HTTPMethod = "POST"
	MethodPut  HTTPMethod = "PUT"
)

// SupportedMethods lists the methods routes and forms accept, in declaration order.
var SupportedMethods = []HTTPMethod{MethodGet, MethodPost, MethodPut}

func (m HTTPMethod) String() string {
	return string(m)
}

// Supported returns whether this method is one of GET, POST or PUT.
func (m HTTPMethod) Supported() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut:
		return true
	}
	return false
}

// ParseHTTPMethod parses a case-insensitive method name.
func ParseHTTPMethod(method string) (HTTPMethod, error) {
	m := HTTPMethod(strings.ToUpper(strings.TrimSpace(method)))
	if !m.Supported() {
		return "", fmt.Errorf("cannot parse http method %q: %w", method, ErrHTTPMethod)
	}
	return m, nil
}
