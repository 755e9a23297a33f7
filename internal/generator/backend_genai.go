package generator

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel はモデル名未指定時に使うモデル。
const DefaultModel = "gemini-1.5-flash"

// DefaultLocation はVertex AIのデフォルトリージョン。
const DefaultLocation = "asia-northeast1"

// ErrMissingProject はVertex AIバックエンドでプロジェクトIDが未設定の場合に返される。
var ErrMissingProject = errors.New("GOOGLE_CLOUD_PROJECT is required for the Vertex AI backend")

// BackendConfig は生成AIバックエンドの接続設定。
// APIKeyが設定されていればGemini API、なければVertex AIを使う。
type BackendConfig struct {
	Project  string
	Location string
	Model    string
	APIKey   string
	// BaseURL はエンドポイントの差し替え用（テスト・プロキシ）。空ならSDKのデフォルト。
	BaseURL string
}

type genaiBackend struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGenAIBackend はgenaiクライアントを使うBackendを生成する。
func NewGenAIBackend(ctx context.Context, cfg BackendConfig) (Backend, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}

	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	}
	if cfg.APIKey != "" {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	} else {
		if cfg.Project == "" {
			return nil, ErrMissingProject
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("生成AIクライアントの作成に失敗しました: %w", err)
	}

	return &genaiBackend{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			TopP:            genai.Ptr[float32](0.8),
			MaxOutputTokens: 2048,
		},
	}, nil
}

// GenerateContent はプロンプトを1件のユーザーメッセージとして送信する。
func (b *genaiBackend) GenerateContent(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	return b.client.Models.GenerateContent(ctx, b.model, contents, b.config)
}
