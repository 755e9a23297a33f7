package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hitoshi/skillmap/internal/model"
)

const skillMapColumns = `id, user_id, title, config, skill_labels, is_public, created_at, updated_at`

// PostgresSkillMapRepo はPostgreSQLを使用したスキルマップリポジトリ。
type PostgresSkillMapRepo struct {
	db *sql.DB
}

// NewPostgresSkillMapRepo はPostgresSkillMapRepoを生成する。
func NewPostgresSkillMapRepo(db *sql.DB) *PostgresSkillMapRepo {
	return &PostgresSkillMapRepo{db: db}
}

// Create はスキルマップを作成する。
// created_at/updated_atはmの値を使い、ゼロ値の場合はアプリケーションの現在時刻とする。
// Updateと同じくアプリケーション側の時計で揃える。
func (r *PostgresSkillMapRepo) Create(ctx context.Context, m *model.SkillMap) error {
	configJSON, labelsJSON, err := encodeSkillMapJSON(m.Config, m.SkillLabels)
	if err != nil {
		return err
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := m.UpdatedAt
	if updatedAt.Before(createdAt) {
		updatedAt = createdAt
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO skill_maps (user_id, title, config, skill_labels, is_public, created_at, updated_at)
		 VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		m.UserID, m.Title, string(configJSON), string(labelsJSON), m.IsPublic, createdAt, updatedAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create skill map: %w", err)
	}
	return nil
}

// Update はupdの非nilフィールドだけを更新する。
// 未指定のカラムはCOALESCEで現在値を維持する。updated_atは現在値より前には戻さない。
func (r *PostgresSkillMapRepo) Update(ctx context.Context, id string, upd model.SkillMapUpdate, now time.Time) (*model.SkillMap, error) {
	var configJSON, labelsJSON []byte
	var err error
	if upd.Config != nil {
		if configJSON, err = json.Marshal(upd.Config); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
	}
	if upd.SkillLabels != nil {
		if labelsJSON, err = json.Marshal(upd.SkillLabels); err != nil {
			return nil, fmt.Errorf("failed to marshal skill labels: %w", err)
		}
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE skill_maps SET
			title = COALESCE($2, title),
			config = COALESCE($3::jsonb, config),
			skill_labels = COALESCE($4::jsonb, skill_labels),
			is_public = COALESCE($5, is_public),
			updated_at = GREATEST(updated_at, $6)
		 WHERE id = $1
		 RETURNING `+skillMapColumns,
		id, nullString(upd.Title), nullBytes(configJSON), nullBytes(labelsJSON), nullBool(upd.IsPublic), now,
	)

	m, err := scanSkillMap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update skill map: %w", err)
	}
	return m, nil
}

// ListByUserID はユーザーのスキルマップをupdated_at降順で返す。
func (r *PostgresSkillMapRepo) ListByUserID(ctx context.Context, userID string) ([]*model.SkillMap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+skillMapColumns+`
		 FROM skill_maps
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill maps: %w", err)
	}
	defer rows.Close()

	maps := make([]*model.SkillMap, 0)
	for rows.Next() {
		m, err := scanSkillMap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill map: %w", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skill maps: %w", err)
	}
	return maps, nil
}

// FindByID は指定IDのスキルマップを取得する。見つからない場合はnilを返す。
func (r *PostgresSkillMapRepo) FindByID(ctx context.Context, id string) (*model.SkillMap, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+skillMapColumns+` FROM skill_maps WHERE id = $1`,
		id,
	)
	m, err := scanSkillMap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find skill map: %w", err)
	}
	return m, nil
}

// DeleteByID は指定IDのスキルマップを削除する。
func (r *PostgresSkillMapRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM skill_maps WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete skill map: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("skill map %s: %w", id, ErrNotFound)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSkillMap(s rowScanner) (*model.SkillMap, error) {
	m := &model.SkillMap{}
	var configJSON, labelsJSON []byte
	if err := s.Scan(
		&m.ID, &m.UserID, &m.Title, &configJSON, &labelsJSON, &m.IsPublic, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeSkillMapJSON(configJSON, labelsJSON, m); err != nil {
		return nil, err
	}
	return m, nil
}

// encodeSkillMapJSON はJSONBカラムに保存するバイト列を作る。ラベル列は空でも[]になる。
func encodeSkillMapJSON(cfg model.MapConfig, labels []model.SkillLabel) ([]byte, []byte, error) {
	cfg.Normalize()
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if labels == nil {
		labels = []model.SkillLabel{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal skill labels: %w", err)
	}
	return configJSON, labelsJSON, nil
}

// decodeSkillMapJSON はJSONBカラムを読み込み、象限の要素数を正規化する。
func decodeSkillMapJSON(configJSON, labelsJSON []byte, m *model.SkillMap) error {
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &m.Config); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	m.Config.Normalize()

	m.SkillLabels = []model.SkillLabel{}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &m.SkillLabels); err != nil {
			return fmt.Errorf("failed to unmarshal skill labels: %w", err)
		}
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// nullBytes はnilをSQLのNULLとして渡す。
func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

// compile-time interface check
var _ SkillMapRepository = (*PostgresSkillMapRepo)(nil)
