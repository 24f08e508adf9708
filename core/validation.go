package core

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	minCredentialLength = 5
	maxCredentialLength = 20
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
)

// ValidateUsername checks that a username is between 5 and 20 characters long.
func ValidateUsername(username string) error {
	length := utf8.RuneCountInString(username)
	if length < minCredentialLength || length > maxCredentialLength {
		return fmt.Errorf(
			"%w: must contain between %d and %d characters",
			ErrInvalidUsername,
			minCredentialLength,
			maxCredentialLength,
		)
	}
	return nil
}

// ValidatePassword checks that a password is between 5 and 20 characters long, only contains ASCII letters and
// digits and has at least one of both.
func ValidatePassword(password string) error {
	if len(password) < minCredentialLength || len(password) > maxCredentialLength {
		return fmt.Errorf(
			"%w: must contain between %d and %d characters",
			ErrInvalidPassword,
			minCredentialLength,
			maxCredentialLength,
		)
	}
	var letters, digits bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return fmt.Errorf("%w: only letters and digits are allowed", ErrInvalidPassword)
		case unicode.IsLetter(r):
			letters = true
		case unicode.IsDigit(r):
			digits = true
		default:
			return fmt.Errorf("%w: only letters and digits are allowed", ErrInvalidPassword)
		}
	}
	if !letters || !digits {
		return fmt.Errorf("%w: must contain at least one letter and one digit", ErrInvalidPassword)
	}
	return nil
}
