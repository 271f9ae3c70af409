// Package auth is the identity collaborator consumed at join time. The
// engine never issues sessions itself; it verifies a credential through
// a Verifier and works with the resulting Identity.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrAuthenticationFailed = errors.New("authentication failed")

// Identity is a verified participant: exactly one of UserID or GuestID
// is set.
type Identity struct {
	UserID  string
	GuestID string
	Name    string
}

func (id Identity) Key() string {
	if id.UserID != "" {
		return "u:" + id.UserID
	}
	return "g:" + id.GuestID
}

// Verifier resolves a credential to a verified identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// GuestVerifier accepts any credential and mints a guest identity. An
// empty credential still authenticates; the name travels separately in
// the join message.
type GuestVerifier struct{}

func (GuestVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	return NewGuest(""), nil
}

func NewGuest(name string) Identity {
	return Identity{GuestID: uuid.NewString(), Name: name}
}

// HashKey hashes a private-room access key for storage.
func HashKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckKey compares a presented key against the stored hash.
func CheckKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
