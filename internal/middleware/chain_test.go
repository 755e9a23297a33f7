package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestRecoveryMiddleware_Returns500JSON(t *testing.T) {
	h := NewRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/skill-maps", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body.Code != "INTERNAL_ERROR" {
		t.Errorf("body = %+v, err = %v", body, err)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	NewSecurityHeadersMiddleware()(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy should be set")
	}
}

// newChainRouter はapp側と同じ順序でミドルウェアを積んだルーターを返す。
func newChainRouter(t *testing.T) *chi.Mux {
	t.Helper()
	var logBuf bytes.Buffer
	rl := newTestLimiter(t, 100, 1)

	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.Use(NewLoggingMiddleware(newJSONLogger(&logBuf), nil))
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewCORSMiddleware("http://localhost:3000"))
	r.Get("/api/csrf-token", NewCSRFTokenHandler(CSRFConfig{}).ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(NewSessionMiddleware(sessionsFor("s1", "user-1")))
		r.Use(NewCSRFMiddleware(CSRFConfig{}))
		r.Use(rl.GeneralMiddleware())
		r.Get("/api/skill-maps", okHandler)
		r.With(rl.GenerateMiddleware()).Post("/api/generate-axis", okHandler)
	})
	return r
}

func TestMiddlewareChain(t *testing.T) {
	r := newChainRouter(t)

	// CSRFトークンを取得してから状態変更リクエストを送る
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))
	var tok struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&tok); err != nil || tok.Token == "" {
		t.Fatalf("csrf token: %+v, %v", tok, err)
	}

	send := func(method, path string, withSession, withCSRF bool) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Origin", "http://localhost:3000")
		if withSession {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
		}
		if withCSRF {
			req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tok.Token})
			req.Header.Set(csrfHeaderName, tok.Token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(http.MethodGet, "/api/skill-maps", false, false); code != http.StatusUnauthorized {
		t.Errorf("no session: %d, want 401", code)
	}
	if code := send(http.MethodGet, "/api/skill-maps", true, false); code != http.StatusOK {
		t.Errorf("GET with session: %d, want 200", code)
	}
	if code := send(http.MethodPost, "/api/generate-axis", true, false); code != http.StatusForbidden {
		t.Errorf("POST without csrf: %d, want 403", code)
	}
	if code := send(http.MethodPost, "/api/generate-axis", true, true); code != http.StatusOK {
		t.Errorf("POST with csrf: %d, want 200", code)
	}
	if code := send(http.MethodPost, "/api/generate-axis", true, true); code != http.StatusTooManyRequests {
		t.Errorf("second generate: %d, want 429", code)
	}
}
