package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/todoclient/internal/client/apitest"
	"github.com/dmitrijs2005/todoclient/internal/client/client"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/client/repositories/kv"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
	"github.com/dmitrijs2005/todoclient/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHTTPClient(t *testing.T, srv *apitest.Server, sess session.Store, opts ...client.Option) *client.HTTPClient {
	t.Helper()
	c, err := client.New(srv.BaseURL(), sess, opts...)
	require.NoError(t, err)
	return c
}

func TestAuthStore_LoginScenario(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t, apitest.WithStaticTokens())

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sess := session.NewSQLiteStore(db)

	auth := NewAuthStore(ctx, newHTTPClient(t, srv, sess), sess, logging.Nop())
	require.False(t, auth.IsAuthenticated())

	require.NoError(t, auth.Login(ctx, apitest.AdminEmail, apitest.AdminPassword))

	st := auth.Snapshot()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "Admin", st.User.Name)
	assert.Equal(t, "u1", st.User.ID)
	assert.Equal(t, "t1", st.Token)
	assert.Equal(t, StatusSucceeded, st.Login.Status())
	assert.Empty(t, st.Error())

	raw, err := kv.NewSQLiteRepository(db).Get(ctx, session.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "t1", string(raw))
}

func TestAuthStore_FailedLoginNeverAuthenticates(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t, apitest.WithStaticTokens())
	sess := session.NewMemoryStore()
	auth := NewAuthStore(ctx, newHTTPClient(t, srv, sess), sess, logging.Nop())

	attempts := []struct{ email, password string }{
		{apitest.AdminEmail, "wrong"},
		{"nobody@example.com", apitest.AdminPassword},
		{"", apitest.AdminPassword},
		{apitest.AdminEmail, ""},
	}
	for _, a := range attempts {
		err := auth.Login(ctx, a.email, a.password)
		require.Error(t, err)

		st := auth.Snapshot()
		assert.False(t, st.IsAuthenticated)
		assert.Nil(t, st.User)
		assert.Equal(t, StatusFailed, st.Login.Status())
		assert.NotEmpty(t, st.Error())

		tok, err := sess.Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, tok)
	}
	assert.Equal(t, 2, srv.CountRequests("POST", "/auth/login"))
}

func TestAuthStore_LoginErrorMessages(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t)
	sess := session.NewMemoryStore()
	auth := NewAuthStore(ctx, newHTTPClient(t, srv, sess), sess, logging.Nop())

	require.Error(t, auth.Login(ctx, apitest.AdminEmail, "wrong"))
	assert.Equal(t, "Invalid email or password", auth.Snapshot().Error())

	srv.DropNext(1)
	require.ErrorIs(t, auth.Login(ctx, apitest.AdminEmail, apitest.AdminPassword), client.ErrUnavailable)
	assert.Equal(t, "An error occurred during login", auth.Snapshot().Error())

	srv.Fail("POST /auth/login", 200, "", "")
	require.Error(t, auth.Login(ctx, apitest.AdminEmail, apitest.AdminPassword))
	assert.Equal(t, "Login failed", auth.Snapshot().Error())

	err := auth.Login(ctx, " ", "x")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Email and password are required", auth.Snapshot().Error())
}

func TestAuthStore_ValidationSkipsNetwork(t *testing.T) {
	api := &mockAPI{}
	auth := NewAuthStore(context.Background(), api, session.NewMemoryStore(), logging.Nop())

	require.ErrorIs(t, auth.Login(context.Background(), "", ""), ErrValidation)
	api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthStore_PendingWhileInFlight(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{}
	release := make(chan struct{})
	entered := make(chan struct{})

	var auth *AuthStore
	api.On("Login", mock.Anything, "a@b.c", "pw").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&models.LoginResponse{Token: "tok", User: models.User{ID: "u9"}}, nil)
	auth = NewAuthStore(ctx, api, session.NewMemoryStore(), logging.Nop())

	done := make(chan error)
	go func() { done <- auth.Login(ctx, "a@b.c", "pw") }()

	<-entered
	st := auth.Snapshot()
	assert.True(t, st.Loading())
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Error())

	close(release)
	require.NoError(t, <-done)
	assert.False(t, auth.Snapshot().Loading())
	assert.True(t, auth.IsAuthenticated())
}

func TestAuthStore_LogoutAlwaysClears(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t, apitest.WithStaticTokens())
	sess := session.NewMemoryStore()
	require.NoError(t, sess.SetLanguage(ctx, "vi"))
	auth := NewAuthStore(ctx, newHTTPClient(t, srv, sess), sess, logging.Nop())

	// signed out already
	auth.Logout(ctx)
	assertSignedOut(t, auth, sess)

	require.NoError(t, auth.Login(ctx, apitest.AdminEmail, apitest.AdminPassword))
	auth.Logout(ctx)
	assertSignedOut(t, auth, sess)

	// after a failed attempt
	require.Error(t, auth.Login(ctx, apitest.AdminEmail, "nope"))
	auth.Logout(ctx)
	assertSignedOut(t, auth, sess)
	assert.Empty(t, auth.Snapshot().Error())

	lang, err := sess.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, "vi", lang)
}

func TestAuthStore_LogoutIgnoresStorageError(t *testing.T) {
	ctx := context.Background()
	sess := &failingStore{MemoryStore: session.NewMemoryStore(), clearErr: errors.New("disk full")}
	require.NoError(t, sess.Save(ctx, session.Session{Token: "t", User: &models.User{ID: "u"}}))

	auth := NewAuthStore(ctx, &mockAPI{}, sess, logging.Nop())
	require.True(t, auth.IsAuthenticated())

	auth.Logout(ctx)
	assert.False(t, auth.IsAuthenticated())
	assert.Nil(t, auth.Snapshot().User)
}

func assertSignedOut(t *testing.T, auth *AuthStore, sess session.Store) {
	t.Helper()
	st := auth.Snapshot()
	assert.Empty(t, st.Token)
	assert.Nil(t, st.User)
	assert.False(t, st.IsAuthenticated)

	saved, err := sess.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, saved.Authenticated())
	assert.Nil(t, saved.User)
}

func TestAuthStore_RehydratesFromStorage(t *testing.T) {
	ctx := context.Background()
	sess := session.NewMemoryStore()
	require.NoError(t, sess.Save(ctx, session.Session{Token: "t1", User: &models.User{ID: "u1", Name: "Admin"}}))

	api := &mockAPI{}
	auth := NewAuthStore(ctx, api, sess, logging.Nop())

	st := auth.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "Admin", st.User.Name)
	assert.Equal(t, StatusIdle, st.Login.Status())
	api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthStore_UnreadableSessionStartsSignedOut(t *testing.T) {
	ctx := context.Background()
	sess := &failingStore{MemoryStore: session.NewMemoryStore(), loadErr: errors.New("decode stored user")}
	require.NoError(t, sess.Save(ctx, session.Session{Token: "t1"}))

	auth := NewAuthStore(ctx, &mockAPI{}, sess, logging.Nop())
	assert.False(t, auth.IsAuthenticated())

	tok, err := sess.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestAuthStore_SaveFailureKeepsSignedOut(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{}
	api.On("Login", mock.Anything, "a@b.c", "pw").
		Return(&models.LoginResponse{Token: "tok", User: models.User{ID: "u9"}}, nil)
	sess := &failingStore{MemoryStore: session.NewMemoryStore(), saveErr: errors.New("read-only")}

	auth := NewAuthStore(ctx, api, sess, logging.Nop())
	require.Error(t, auth.Login(ctx, "a@b.c", "pw"))
	assert.False(t, auth.IsAuthenticated())
	assert.Equal(t, "An error occurred during login", auth.Snapshot().Error())
}

func TestAuthStore_ClearErrorAndInvalidate(t *testing.T) {
	ctx := context.Background()
	sess := session.NewMemoryStore()
	require.NoError(t, sess.Save(ctx, session.Session{Token: "t1", User: &models.User{ID: "u1"}}))
	auth := NewAuthStore(ctx, &mockAPI{}, sess, logging.Nop())

	require.Error(t, auth.Login(ctx, "", ""))
	assert.NotEmpty(t, auth.Snapshot().Error())
	assert.True(t, auth.IsAuthenticated())

	auth.ClearError()
	st := auth.Snapshot()
	assert.Empty(t, st.Error())
	assert.Equal(t, StatusIdle, st.Login.Status())
	assert.True(t, st.IsAuthenticated)

	auth.Invalidate()
	assert.False(t, auth.IsAuthenticated())
	assert.Nil(t, auth.Snapshot().User)
}

func TestAuthStore_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	sess := session.NewMemoryStore()
	require.NoError(t, sess.Save(ctx, session.Session{Token: "t1", User: &models.User{ID: "u1", Name: "Admin"}}))
	auth := NewAuthStore(ctx, &mockAPI{}, sess, logging.Nop())

	st := auth.Snapshot()
	st.User.Name = "changed"
	assert.Equal(t, "Admin", auth.Snapshot().User.Name)
}

type failingStore struct {
	*session.MemoryStore
	loadErr  error
	saveErr  error
	clearErr error
}

func (f *failingStore) Load(ctx context.Context) (session.Session, error) {
	if f.loadErr != nil {
		return session.Session{}, f.loadErr
	}
	return f.MemoryStore.Load(ctx)
}

func (f *failingStore) Save(ctx context.Context, s session.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.Save(ctx, s)
}

func (f *failingStore) Clear(ctx context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.MemoryStore.Clear(ctx)
}
