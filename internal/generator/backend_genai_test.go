package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewGenAIBackend_VertexRequiresProject(t *testing.T) {
	_, err := NewGenAIBackend(context.Background(), BackendConfig{Location: "asia-northeast1"})
	if !errors.Is(err, ErrMissingProject) {
		t.Errorf("err = %v, want ErrMissingProject", err)
	}
}

func TestGenAIBackend_GenerateContent_SendsPromptAndConfig(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{}"}]}}]}`)
	}))
	defer srv.Close()

	backend, err := NewGenAIBackend(context.Background(), BackendConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewGenAIBackend: %v", err)
	}

	resp, err := backend.GenerateContent(context.Background(), "こんにちは")
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}

	if !strings.Contains(gotPath, "gemini-test:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if text, _ := responseText(resp); text != "{}" {
		t.Errorf("response text = %q", text)
	}

	genCfg, _ := gotBody["generationConfig"].(map[string]any)
	if genCfg["maxOutputTokens"] != float64(2048) {
		t.Errorf("maxOutputTokens = %v", genCfg["maxOutputTokens"])
	}
	if !strings.Contains(toJSON(t, gotBody["contents"]), "こんにちは") {
		t.Errorf("contents should include the prompt: %v", gotBody["contents"])
	}
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}
