// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/skillmap/internal/model"
)

// ErrNotFound は削除・更新対象の行が存在しない場合に返される。
var ErrNotFound = errors.New("record not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateProfile はIdPから取得した表示名とプロフィール画像を反映する。
	UpdateProfile(ctx context.Context, id, name, image string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentities、sessions、skill_mapsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdPのアカウントからユーザーを解決する。
type IdentityRepository interface {
	// FindUserByIdentity はproviderとprovider_user_idに紐づくユーザーを返す。
	// 見つからない場合はnilを返す。
	FindUserByIdentity(ctx context.Context, provider, providerUserID string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// SkillMapRepository はスキルマップの永続化インターフェース。
// 設定とラベル列はJSONBカラムにまとめて保存する。
type SkillMapRepository interface {
	// Create はスキルマップを作成し、採番されたIDとタイムスタンプをmに反映する。
	Create(ctx context.Context, m *model.SkillMap) error

	// Update はupdの非nilフィールドを反映し、updated_atをnowにした行を返す。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id string, upd model.SkillMapUpdate, now time.Time) (*model.SkillMap, error)

	// ListByUserID はユーザーのスキルマップをupdated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.SkillMap, error)

	// FindByID は指定IDのスキルマップを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.SkillMap, error)

	// DeleteByID は指定IDのスキルマップを削除する。存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}
