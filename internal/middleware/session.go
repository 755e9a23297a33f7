// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/skillmap/internal/model"
)

// SessionCookieName はセッションIDを保持するHttpOnly Cookieの名前。
const SessionCookieName = "session_id"

type contextKey string

const (
	userIDContextKey      = contextKey("user_id")
	sessionContextKey     = contextKey("session")
	requestInfoContextKey = contextKey("request_info")
)

// ErrNoUser はコンテキストにユーザーIDがない場合に返される。
var ErrNoUser = errors.New("user ID not found in context")

// SessionFinder はセッションIDから有効なセッションを引く。期限切れの場合はnilを返す。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware はCookieのセッションを検証し、ユーザーIDとセッションをコンテキストに載せる。
// 未認証の場合は401をJSONで返す。
func NewSessionMiddleware(sessions SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			session, err := sessions.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("セッションの検証に失敗しました", slog.String("error", err.Error()))
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if info, ok := r.Context().Value(requestInfoContextKey).(*requestInfo); ok {
				info.userID = session.UserID
			}
			ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
			ctx = context.WithValue(ctx, sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はセッションミドルウェアが載せたユーザーIDを返す。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}

// SessionFromContext はセッションミドルウェアが載せたセッションを返す。
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*model.Session)
	return s, ok && s != nil
}

// ContextWithUserID はユーザーIDを載せたコンテキストを返す。テスト用。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
