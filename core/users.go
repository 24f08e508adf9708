package core

import (
	"fmt"
	"time"
)

// User is a chat participant. Users are identified by name within a chat room.
type User struct {
	ID     UserID
	Name   string
	Joined time.Time
}

// NewUser creates a user with a fresh id, the name has to be a valid username.
func NewUser(name string) (*User, error) {
	if err := ValidateUsername(name); err != nil {
		return nil, fmt.Errorf("cannot create user: %w", err)
	}
	return &User{
		ID:     NewUserID(),
		Name:   name,
		Joined: time.Now(),
	}, nil
}

func (u User) String() string {
	return u.Name
}
