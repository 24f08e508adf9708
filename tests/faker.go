// Package tests contains helpers shared by the test suites of the other packages.
package tests

import (
	"log"
	"math/rand/v2"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prior-it/hermes/core"
)

var Faker = gofakeit.New(rand.Uint64())

// Username returns a random username that passes core.ValidateUsername.
func Username() string {
	name := strings.ToLower(Faker.Username())
	for len(name) < 5 {
		name += Faker.Letter()
	}
	if len(name) > 20 {
		name = name[:20]
	}
	return name
}

// User creates a new user with a random valid username.
func User() *core.User {
	user, err := core.NewUser(Username())
	Check(err)
	return user
}

func Check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
