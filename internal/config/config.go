// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnvVar は設定ファイル（YAML）のパスを指定する環境変数。
const FileEnvVar = "SKILLMAP_CONFIG"

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
// koanfタグは環境変数名を小文字にしたもので、YAMLのキーにも同じ名前を使う。
type Config struct {
	// Database
	DatabaseURL string `koanf:"database_url"`

	// OAuth
	GoogleClientID     string `koanf:"google_client_id"`
	GoogleClientSecret string `koanf:"google_client_secret"`
	GoogleRedirectURL  string `koanf:"google_redirect_url"`

	// Session
	SessionSecret          string        `koanf:"session_secret"`
	SessionMaxAge          int           `koanf:"session_max_age"`
	SessionCleanupInterval time.Duration `koanf:"session_cleanup_interval"`

	// Rate Limit（リクエスト数/分）
	RateLimitGeneral  int `koanf:"rate_limit_general"`
	RateLimitGenerate int `koanf:"rate_limit_generate"`

	// Generator
	GoogleCloudProject string        `koanf:"google_cloud_project"`
	VertexAILocation   string        `koanf:"vertex_ai_location"`
	VertexAIModel      string        `koanf:"vertex_ai_model"`
	GeminiAPIKey       string        `koanf:"gemini_api_key"`
	GenerateTimeout    time.Duration `koanf:"generate_timeout"`

	// Export
	ExportWidth    int    `koanf:"export_width"`
	ExportHeight   int    `koanf:"export_height"`
	ExportFontPath string `koanf:"export_font_path"` // 空の場合は組み込みフォント

	// Logging
	LogLevel string `koanf:"log_level"`

	// Server
	ServerPort string `koanf:"server_port"`
	BaseURL    string `koanf:"base_url"`

	// Cookie
	CookieSecure bool   `koanf:"-"` // BASE_URLから導出
	CookieDomain string `koanf:"cookie_domain"`

	// CORS（カンマ区切りで複数指定可）
	CORSAllowedOrigin string `koanf:"cors_allowed_origin"`
}

// defaults は組み込みのデフォルト値を返す。
func defaults() Config {
	return Config{
		SessionMaxAge:          86400,
		SessionCleanupInterval: time.Hour,
		RateLimitGeneral:       120,
		RateLimitGenerate:      10,
		VertexAILocation:       "asia-northeast1",
		VertexAIModel:          "gemini-1.5-flash",
		GenerateTimeout:        30 * time.Second,
		ExportWidth:            1200,
		ExportHeight:           1200,
		LogLevel:               "info",
		ServerPort:             "8080",
		CORSAllowedOrigin:      "http://localhost:3000",
	}
}

// Load はデフォルト値、SKILLMAP_CONFIGで指定されたYAMLファイル、環境変数の順に重ねてConfigを読み込む。
// 必須項目が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	// DATABASE_URL -> database_url。未知の変数と空文字は無視する
	known := knownKeys()
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		key = strings.ToLower(key)
		if _, ok := known[key]; !ok || value == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("設定値の解析に失敗: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	return &cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", c.DatabaseURL},
		{"GOOGLE_CLIENT_ID", c.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", c.GoogleClientSecret},
		{"GOOGLE_REDIRECT_URL", c.GoogleRedirectURL},
		{"SESSION_SECRET", c.SessionSecret},
		{"BASE_URL", c.BaseURL},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if c.RateLimitGeneral <= 0 || c.RateLimitGenerate <= 0 {
		return fmt.Errorf("rate limits must be positive: general=%d generate=%d", c.RateLimitGeneral, c.RateLimitGenerate)
	}
	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("GENERATE_TIMEOUT must be positive: %v", c.GenerateTimeout)
	}
	return nil
}

// knownKeys はConfigのkoanfタグの一覧。
func knownKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, f := range reflect.VisibleFields(reflect.TypeFor[Config]()) {
		if tag := f.Tag.Get("koanf"); tag != "" && tag != "-" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}
