package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/skillmap/internal/model"
)

// PostgresIdentityRepo はidentitiesを起点にユーザーを引くリポジトリ。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

// FindUserByIdentity はIdPのアカウントに紐づくユーザーを返す。未登録ならnil。
func (r *PostgresIdentityRepo) FindUserByIdentity(ctx context.Context, provider, providerUserID string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.name, u.image, u.created_at, u.updated_at
		 FROM identities i
		 JOIN users u ON u.id = i.user_id
		 WHERE i.provider = $1 AND i.provider_user_id = $2`,
		provider, providerUserID,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by identity %s/%s: %w", provider, providerUserID, err)
	}
	return &u, nil
}

var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
