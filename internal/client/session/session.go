// Package session is the durable-storage adapter of the todo client.
//
// It persists the bearer token, the signed-in user and the UI language under
// the keys authToken, user and language. Callers go through Store instead of
// touching the key-value repository directly.
package session

import (
	"context"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
	KeyLanguage  = "language"
)

// Session is the persisted credential pair.
type Session struct {
	Token string
	User  *models.User
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Store loads, saves and clears the persisted session.
//
// Clear and Revoke remove the credentials only; the language survives a
// logout. Revoke clears only when the stored token still equals token and
// reports whether it did, so that concurrent rejections of the same token
// are acted upon once.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
	Revoke(ctx context.Context, token string) (bool, error)
	Token(ctx context.Context) (string, error)
	Language(ctx context.Context) (string, error)
	SetLanguage(ctx context.Context, lang string) error
}
