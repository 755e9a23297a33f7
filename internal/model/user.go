// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Imageはプロフィール画像のURL（IdPから取得、未設定の場合は空文字）。
type User struct {
	ID        string
	Email     string
	Name      string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// AccessTokenはIdPのアクセストークンで、下流APIの呼び出しに利用できる。
type Session struct {
	ID          string
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
