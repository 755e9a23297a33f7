package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/skillmap/internal/model"
)

type mockSessionRepository struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// sessionsFor は指定IDだけを有効なセッションとして返すモックを作る。
func sessionsFor(sessionID, userID string) *mockSessionRepository {
	return &mockSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id != sessionID {
				return nil, nil
			}
			return &model.Session{
				ID:          sessionID,
				UserID:      userID,
				AccessToken: "token-" + userID,
				ExpiresAt:   time.Now().Add(time.Hour),
			}, nil
		},
	}
}

func TestSessionMiddleware_ValidSession_InjectsUserAndSession(t *testing.T) {
	mw := NewSessionMiddleware(sessionsFor("valid", "user-123"))

	var gotUser string
	var gotSession *model.Session
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserIDFromContext(r.Context())
		gotSession, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/skill-maps", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUser != "user-123" {
		t.Errorf("user = %q", gotUser)
	}
	if gotSession == nil || gotSession.AccessToken != "token-user-123" {
		t.Errorf("session = %+v", gotSession)
	}
}

func TestSessionMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		repo   *mockSessionRepository
	}{
		{"Cookieなし", nil, sessionsFor("valid", "u")},
		{"Cookieが空", &http.Cookie{Name: SessionCookieName, Value: ""}, sessionsFor("valid", "u")},
		{"期限切れ・不明", &http.Cookie{Name: SessionCookieName, Value: "expired"}, sessionsFor("valid", "u")},
		{"リポジトリエラー", &http.Cookie{Name: SessionCookieName, Value: "valid"}, &mockSessionRepository{
			findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
				return nil, errors.New("db down")
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewSessionMiddleware(tt.repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/skill-maps", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if called {
				t.Error("次のハンドラーを呼んではならない")
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			var body ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != model.ErrCodeUnauthorized {
				t.Errorf("code = %q", body.Code)
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); !errors.Is(err, ErrNoUser) {
		t.Errorf("err = %v, want ErrNoUser", err)
	}

	got, err := UserIDFromContext(ContextWithUserID(context.Background(), "user-1"))
	if err != nil || got != "user-1" {
		t.Errorf("UserIDFromContext = %q, %v", got, err)
	}

	if _, ok := SessionFromContext(context.Background()); ok {
		t.Error("SessionFromContext should be false without session")
	}
}
