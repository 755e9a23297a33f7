// Package auth はGoogleログインとセッション発行を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/skillmap/internal/model"
	"github.com/hitoshi/skillmap/internal/repository"
)

// ErrUnauthenticated はセッションが無効、期限切れ、またはユーザーが存在しない場合に返される。
var ErrUnauthenticated = errors.New("unauthenticated")

// OAuthUserInfo はIdPから取得したプロフィール。
type OAuthUserInfo struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	Image          string
	AccessToken    string
}

// OAuthProvider はOAuthの認可コードフローを行うIdP。
type OAuthProvider interface {
	GetLoginURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service はログイン、ログアウト、現在ユーザーの解決を行う。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		config:      config,
		now:         time.Now,
	}
}

// GetLoginURL はIdPの同意画面URLを返す。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback は認可コードを交換し、ユーザーを解決してセッションを発行する。
// 初回ログインではユーザーとidentityを作成し、2回目以降は変化した表示名と画像を反映する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("OAuth認可コードの交換に失敗: %w", err)
	}

	userID, err := s.resolveUser(ctx, info)
	if err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, userID, info.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("セッションの発行に失敗: %w", err)
	}
	return session, nil
}

func (s *Service) resolveUser(ctx context.Context, info *OAuthUserInfo) (string, error) {
	existing, err := s.identRepo.FindUserByIdentity(ctx, info.Provider, info.ProviderUserID)
	if err != nil {
		return "", fmt.Errorf("identityの検索に失敗: %w", err)
	}

	if existing != nil {
		// 表示名と画像が変わったときだけ書き込む
		if existing.Name != info.Name || existing.Image != info.Image {
			if err := s.userRepo.UpdateProfile(ctx, existing.ID, info.Name, info.Image); err != nil {
				return "", fmt.Errorf("プロフィールの更新に失敗: %w", err)
			}
		}
		slog.Info("既存ユーザーがログインしました",
			slog.String("user_id", existing.ID),
			slog.String("provider", info.Provider),
		)
		return existing.ID, nil
	}

	now := s.now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     info.Email,
		Name:      info.Name,
		Image:     info.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		Provider:       info.Provider,
		ProviderUserID: info.ProviderUserID,
		CreatedAt:      now,
	}
	if err := s.userRepo.CreateWithIdentity(ctx, user, newIdentity); err != nil {
		return "", fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}

	slog.Info("新規ユーザーを作成しました",
		slog.String("user_id", user.ID),
		slog.String("provider", info.Provider),
	)
	return user.ID, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("セッションIDが空です")
	}
	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("セッションの削除に失敗: %w", err)
	}
	slog.Info("ログアウトしました", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションIDからユーザーを解決する。
// 解決できない場合はErrUnauthenticatedを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗: %w", err)
	}
	if session == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func (s *Service) createSession(ctx context.Context, userID, accessToken string) (*model.Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("セッションIDの生成に失敗: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:          id,
		UserID:      userID,
		AccessToken: accessToken,
		ExpiresAt:   now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:   now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// generateSessionID は32バイトの乱数を16進文字列にしたセッションIDを返す。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
