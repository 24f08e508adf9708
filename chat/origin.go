package chat

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// originPolicy decides which browser origins may open a websocket.
// Without configured origins only same-host requests are accepted.
type originPolicy struct {
	allowed  map[string]struct{}
	allowAll bool
	logger   *slog.Logger
}

func newOriginPolicy(origins []string, logger *slog.Logger) originPolicy {
	policy := originPolicy{allowed: make(map[string]struct{}, len(origins)), logger: logger}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch {
		case len(trimmed) == 0:
			continue
		case trimmed == "*":
			policy.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			logger.Warn("Ignoring invalid origin in configuration", "origin", origin)
			continue
		}
		policy.allowed[normalized] = struct{}{}
	}
	return policy
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || len(parsed.Scheme) == 0 || len(parsed.Host) == 0 {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

func (p originPolicy) check(r *http.Request) bool {
	header := r.Header.Get("Origin")
	// Non-browser clients do not send an origin
	if len(header) == 0 {
		return true
	}
	if p.allowAll {
		return true
	}
	origin, ok := normalizeOrigin(header)
	if !ok {
		p.logger.Warn("Blocked websocket connection with malformed origin", "origin", header)
		return false
	}
	if len(p.allowed) == 0 {
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
	} else if _, exists := p.allowed[origin]; exists {
		return true
	}
	p.logger.Warn("Blocked websocket connection from disallowed origin", "origin", header)
	return false
}
