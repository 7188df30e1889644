package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/client/repositories/kv"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
)

// SQLiteStore implements Store on top of the kv repository.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) repo() kv.Repository {
	return kv.NewSQLiteRepository(s.db)
}

func (s *SQLiteStore) Load(ctx context.Context) (Session, error) {
	var sess Session
	err := storage.WithTx(ctx, s.db, func(ctx context.Context, tx storage.DBTX) error {
		var err error
		sess, err = load(ctx, kv.NewSQLiteRepository(tx))
		return err
	})
	return sess, err
}

func load(ctx context.Context, r kv.Repository) (Session, error) {
	token, err := r.Get(ctx, KeyAuthToken)
	if err != nil {
		return Session{}, err
	}
	sess := Session{Token: string(token)}

	raw, err := r.Get(ctx, KeyUser)
	if err != nil {
		return Session{}, err
	}
	if len(raw) > 0 && string(raw) != "null" {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return Session{}, fmt.Errorf("decode stored user: %w", err)
		}
		sess.User = &u
	}
	return sess, nil
}

// Save writes token and user atomically.
func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return storage.WithTx(ctx, s.db, func(ctx context.Context, tx storage.DBTX) error {
		r := kv.NewSQLiteRepository(tx)
		if err := r.Set(ctx, KeyAuthToken, []byte(sess.Token)); err != nil {
			return err
		}
		return r.Set(ctx, KeyUser, user)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.repo().Delete(ctx, KeyAuthToken, KeyUser)
}

func (s *SQLiteStore) Revoke(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := storage.WithTx(ctx, s.db, func(ctx context.Context, tx storage.DBTX) error {
		r := kv.NewSQLiteRepository(tx)
		current, err := r.Get(ctx, KeyAuthToken)
		if err != nil {
			return err
		}
		if len(current) == 0 || string(current) != token {
			return nil
		}
		if err := r.Delete(ctx, KeyAuthToken, KeyUser); err != nil {
			return err
		}
		revoked = true
		return nil
	})
	return revoked, err
}

func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	v, err := s.repo().Get(ctx, KeyAuthToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *SQLiteStore) Language(ctx context.Context) (string, error) {
	v, err := s.repo().Get(ctx, KeyLanguage)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *SQLiteStore) SetLanguage(ctx context.Context, lang string) error {
	return s.repo().Set(ctx, KeyLanguage, []byte(lang))
}
