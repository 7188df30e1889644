package session

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/client/repositories/kv"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStore(db)
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": newSQLiteStore(t),
		"memory": NewMemoryStore(),
	}
}

func admin() *models.User {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.User{ID: "u1", Email: "admin@example.com", Name: "Admin", CreatedAt: ts, UpdatedAt: ts}
}

func TestStore_EmptyLoad(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.False(t, sess.Authenticated())
			assert.Nil(t, sess.User)
		})
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, Session{Token: "t1", User: admin()}))

			sess, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(Session{Token: "t1", User: admin()}, sess))

			token, err := s.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "t1", token)
		})
	}
}

func TestStore_ClearKeepsLanguage(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SetLanguage(ctx, "vi"))
			require.NoError(t, s.Save(ctx, Session{Token: "t1", User: admin()}))

			require.NoError(t, s.Clear(ctx))

			sess, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, Session{}, sess)

			lang, err := s.Language(ctx)
			require.NoError(t, err)
			assert.Equal(t, "vi", lang)
		})
	}
}

func TestStore_RevokeOnlyMatchingToken(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, Session{Token: "new", User: admin()}))

			revoked, err := s.Revoke(ctx, "old")
			require.NoError(t, err)
			assert.False(t, revoked)

			token, _ := s.Token(ctx)
			assert.Equal(t, "new", token)

			revoked, err = s.Revoke(ctx, "new")
			require.NoError(t, err)
			assert.True(t, revoked)

			revoked, err = s.Revoke(ctx, "new")
			require.NoError(t, err)
			assert.False(t, revoked, "second revoke of the same token is a no-op")
		})
	}
}

func TestStore_ConcurrentRevokeHappensOnce(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, Session{Token: "t1", User: admin()}))

			var (
				wg   sync.WaitGroup
				hits atomic.Int32
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := s.Revoke(ctx, "t1")
					assert.NoError(t, err)
					if ok {
						hits.Add(1)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestSQLiteStore_CorruptUserIsReported(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, kv.NewSQLiteRepository(s.db).Set(ctx, KeyUser, []byte("{not json")))

	_, err := s.Load(ctx)
	require.ErrorContains(t, err, "decode stored user")
}

func TestSQLiteStore_PersistsUnderDocumentedKeys(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, Session{Token: "t1", User: admin()}))
	require.NoError(t, s.SetLanguage(ctx, "en"))

	m, err := kv.NewSQLiteRepository(s.db).List(ctx)
	require.NoError(t, err)

	assert.Equal(t, "t1", string(m[KeyAuthToken]))
	assert.Equal(t, "en", string(m[KeyLanguage]))
	assert.Contains(t, string(m[KeyUser]), `"name":"Admin"`)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := admin()
	require.NoError(t, s.Save(ctx, Session{Token: "t1", User: u}))
	u.Name = "mutated"

	sess, _ := s.Load(ctx)
	assert.Equal(t, "Admin", sess.User.Name)
}
