package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/skillmap/internal/generator"
	"github.com/hitoshi/skillmap/internal/model"
)

const (
	msgGenerateSucceeded = "軸・象限設定を生成しました"
	msgGenerateFailed    = "軸・象限設定の生成に失敗しました"
	msgEmptyPrompt       = "プロンプトを入力してください"
)

// GeneratorInterface は生成ハンドラーが必要とする生成クライアント。
type GeneratorInterface interface {
	Generate(ctx context.Context, prompt string) (*model.MapConfig, error)
}

// GenerateHandler は軸・象限設定の自動生成ハンドラー。
type GenerateHandler struct {
	generator GeneratorInterface
}

// NewGenerateHandler はGenerateHandlerを生成する。
func NewGenerateHandler(g GeneratorInterface) *GenerateHandler {
	return &GenerateHandler{generator: g}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// generateResponse は生成エンドポイント専用のエンベロープ。
type generateResponse struct {
	Success bool             `json:"success"`
	Data    *model.MapConfig `json:"data,omitempty"`
	Message string           `json:"message"`
}

// Generate はプロンプトから軸・象限設定を生成する。
// POST /api/generate-axis
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Message: msgEmptyPrompt})
		return
	}

	cfg, err := h.generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, generator.ErrEmptyPrompt) {
			writeJSON(w, http.StatusBadRequest, generateResponse{Message: msgEmptyPrompt})
			return
		}
		slog.Error("軸・象限設定の生成に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, generateResponse{Message: msgGenerateFailed})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success: true,
		Data:    cfg,
		Message: msgGenerateSucceeded,
	})
}
