package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

type TokenRepo struct {
	pool    *pgxpool.Pool
	profile string
}

// NewTokenRepo stores one credential per profile, so several operators can
// share a database.
func NewTokenRepo(pool *pgxpool.Pool, profile string) *TokenRepo {
	return &TokenRepo{pool: pool, profile: profile}
}

func (r *TokenRepo) Token(ctx context.Context) (string, error) {
	var token string
	err := r.pool.QueryRow(ctx,
		"SELECT token FROM chat_credentials WHERE profile = $1", r.profile,
	).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && token == "") {
		return "", repository.ErrNoCredential
	}
	return token, err
}

func (r *TokenRepo) SaveToken(ctx context.Context, token string) error {
	query := `
		INSERT INTO chat_credentials (profile, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (profile) DO UPDATE SET token = EXCLUDED.token, updated_at = now()`
	_, err := r.pool.Exec(ctx, query, r.profile, token)
	return err
}

func (r *TokenRepo) ClearToken(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_credentials WHERE profile = $1", r.profile)
	return err
}
