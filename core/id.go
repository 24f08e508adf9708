package core

import (
	"fmt"

	"github.com/google/uuid"
)

type UserID struct {
	uuid.UUID
}

// NewUserID generates a new random user id.
func NewUserID() UserID {
	return UserID{uuid.New()}
}

// ParseUserID parses a string into a user id.
func ParseUserID(id string) (UserID, error) {
	value, err := uuid.Parse(id)
	if err != nil {
		return UserID{}, fmt.Errorf("cannot parse user id: %w", err)
	}
	return UserID{value}, nil
}

func (id *UserID) UnmarshalText(text []byte) error {
	val, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = val
	return nil
}
