package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

var tokenKey = []byte("auth/token")

type TokenRepo struct {
	db *badger.DB
}

func NewTokenRepo(db *badger.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) Token(ctx context.Context) (string, error) {
	var token string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) || (err == nil && token == "") {
		return "", repository.ErrNoCredential
	}
	return token, err
}

func (r *TokenRepo) SaveToken(ctx context.Context, token string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey, []byte(token))
	})
}

func (r *TokenRepo) ClearToken(ctx context.Context) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(tokenKey)
	})
}
