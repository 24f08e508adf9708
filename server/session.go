package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/prior-it/hermes/config"
)

const cookieSession = "hermes-session"

const (
	sessionUserName = "hermes-user-name"
)

var ErrNoSessionStore = errors.New("no session store configured")

// Session returns the session of the current visitor.
// If the session cookie cannot be decoded, the error is logged and a fresh session is returned.
func (apollo *Apollo) Session() (*sessions.Session, error) {
	if apollo.store == nil {
		return nil, ErrNoSessionStore
	}
	session, err := apollo.store.Get(apollo.Request, cookieSession)
	if err != nil {
		apollo.logger.Warn("Could not decode session cookie, starting a new session", "error", err)
	}
	return configureCookie(apollo.Cfg, session), nil
}

func configureCookie(cfg *config.Config, session *sessions.Session) *sessions.Session {
	switch {
	case cfg == nil || cfg.IsTest():
		session.Options.Secure = false
		session.Options.HttpOnly = false
		session.Options.SameSite = http.SameSiteLaxMode
	case cfg.App.Debug:
		session.Options.Secure = cfg.App.SSL
		session.Options.HttpOnly = true
		session.Options.SameSite = http.SameSiteLaxMode
	default: // production
		session.Options.Secure = cfg.App.SSL
		session.Options.HttpOnly = true
		session.Options.SameSite = http.SameSiteStrictMode
	}
	return session
}

// SetUserName stores the display name of the current visitor in their session.
func (apollo *Apollo) SetUserName(name string) error {
	session, err := apollo.Session()
	if err != nil {
		return err
	}
	session.Values[sessionUserName] = name
	return session.Save(apollo.Request, apollo.Writer)
}

// UserName returns the display name stored in the current session, if any.
func (apollo *Apollo) UserName() (string, bool) {
	if name, ok := UserName(apollo.Context()); ok {
		return name, true
	}
	session, err := apollo.Session()
	if err != nil {
		return "", false
	}
	name, ok := session.Values[sessionUserName].(string)
	return name, ok && len(name) > 0
}

// ClearSession removes every value from the current session.
func (apollo *Apollo) ClearSession() error {
	session, err := apollo.Session()
	if err != nil {
		return err
	}
	for key := range session.Values {
		delete(session.Values, key)
	}
	session.Options.MaxAge = -1
	return session.Save(apollo.Request, apollo.Writer)
}
