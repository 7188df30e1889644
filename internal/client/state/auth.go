package state

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// AuthAPI is the part of the REST client used by AuthStore.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
}

// AuthState is a read-only copy of the auth store.
type AuthState struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	Login           Result[models.User]
}

// Loading reports whether a login is in flight.
func (s AuthState) Loading() bool {
	return s.Login.Pending()
}

// Error is the current error message, empty if none.
func (s AuthState) Error() string {
	msg, _ := s.Login.Err()
	return msg
}

// AuthStore holds the signed-in user and token and mirrors them to the
// session store.
type AuthStore struct {
	api  AuthAPI
	sess session.Store
	log  logging.Logger

	mu    sync.RWMutex
	user  *models.User
	token string
	login Result[models.User]
}

// NewAuthStore builds the store and restores the persisted session. No
// request is made: a stale token is only detected by the first call that
// the server rejects.
func NewAuthStore(ctx context.Context, api AuthAPI, sess session.Store, log logging.Logger) *AuthStore {
	a := &AuthStore{api: api, sess: sess, log: log}

	saved, err := sess.Load(ctx)
	if err != nil {
		log.Warn(ctx, "cannot restore session, starting signed out", "error", err)
		if err := sess.Clear(ctx); err != nil {
			log.Error(ctx, "cannot clear unreadable session", "error", err)
		}
		return a
	}
	if saved.Authenticated() {
		a.token = saved.Token
		a.user = saved.User
	}
	return a
}

// Login authenticates against the server. On success the credentials are
// persisted before they become visible in memory.
func (a *AuthStore) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := invalid("Email and password are required")
		a.setLogin(failed[models.User](err.Error()))
		return err
	}

	a.setLogin(pending[models.User]())

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		msg := loginMessages.message(err)
		a.log.Warn(ctx, "login failed", "email", email, "error", err)
		a.setLogin(failed[models.User](msg))
		return err
	}
	if resp.Token == "" {
		a.setLogin(failed[models.User](loginMessages.rejected))
		return fmt.Errorf("login: server returned no token")
	}

	user := resp.User
	if err := a.sess.Save(ctx, session.Session{Token: resp.Token, User: &user}); err != nil {
		a.log.Error(ctx, "cannot persist session", "error", err)
		a.setLogin(failed[models.User](loginMessages.failed))
		return fmt.Errorf("save session: %w", err)
	}

	a.mu.Lock()
	a.token = resp.Token
	a.user = &user
	a.login = succeeded(user)
	a.mu.Unlock()

	a.log.Info(ctx, "signed in", "user", user.ID)
	return nil
}

// Logout forgets the session locally. It never fails from the caller's
// point of view; a storage error is only logged.
func (a *AuthStore) Logout(ctx context.Context) {
	a.reset()
	if err := a.sess.Clear(ctx); err != nil {
		a.log.Error(ctx, "cannot clear stored session", "error", err)
	}
}

// Invalidate forgets the in-memory session after the server rejected it.
// The stored credentials have already been removed by the HTTP client.
func (a *AuthStore) Invalidate() {
	a.reset()
}

// ClearError drops the current error without touching the session.
func (a *AuthStore) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.login.Status() == StatusFailed {
		a.login = idle[models.User]()
	}
}

func (a *AuthStore) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token != ""
}

// Snapshot returns a copy of the current state.
func (a *AuthStore) Snapshot() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := AuthState{
		Token:           a.token,
		IsAuthenticated: a.token != "",
		Login:           a.login,
	}
	if a.user != nil {
		u := *a.user
		s.User = &u
	}
	return s
}

func (a *AuthStore) setLogin(r Result[models.User]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.login = r
}

func (a *AuthStore) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = nil
	a.token = ""
	a.login = idle[models.User]()
}
