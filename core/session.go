package core

import (
	"context"
	"errors"
)

// TokenKey is the storage key the bearer token is persisted under.
const TokenKey = "auth_token"

var ErrTokenNotFound = errors.New("token not found")

type (
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// TokenStore is the durable key-value entry holding the bearer token.
	TokenStore interface {
		// Load returns the persisted token, or ErrTokenNotFound when none is stored.
		Load(ctx context.Context) (string, error)

		// Save replaces the persisted token.
		Save(ctx context.Context, token string) error

		// Clear removes the persisted token. Clearing an empty store is not an error.
		Clear(ctx context.Context) error
	}
)
