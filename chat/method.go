package chat

import (
	"fmt"
	"strings"

	"github.com/prior-it/hermes/core"
)

// Method selects how messages in a room are delivered.
type Method uint8

const (
	MethodUnset Method = iota
	// MethodPrivate delivers every message to a single recipient.
	MethodPrivate
	// MethodGroup delivers every message to all users in the room.
	MethodGroup
)

func (m Method) String() string {
	switch m {
	case MethodUnset:
		return ""
	case MethodPrivate:
		return "PRIVATE"
	case MethodGroup:
		return "GROUP"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// ParseMethod parses "private" or "group", case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRIVATE":
		return MethodPrivate, nil
	case "GROUP":
		return MethodGroup, nil
	default:
		return MethodUnset, fmt.Errorf("%w: unknown chat method %q", core.ErrInvalidArgument, s)
	}
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	method, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = method
	return nil
}
