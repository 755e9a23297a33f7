package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/skillmap/internal/auth"
	"github.com/hitoshi/skillmap/internal/editor"
	"github.com/hitoshi/skillmap/internal/generator"
	"github.com/hitoshi/skillmap/internal/label"
	"github.com/hitoshi/skillmap/internal/middleware"
	"github.com/hitoshi/skillmap/internal/model"
)

// maxRequestBodySize はJSONリクエストボディの上限（1MB）。
const maxRequestBodySize = 1 << 20

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeJSON はvをJSONで書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	middleware.WriteJSON(w, statusCode, v)
}

// decodeJSON はボディをvにデコードする。未知のフィールドと2つ目以降のJSON値は拒否する。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("リクエストボディの解析に失敗: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("リクエストボディに余分なデータがあります")
	}
	return nil
}

// handleServiceError はサービス層から返されたエラーをHTTPステータスコードに変換して書き込む。
// 対応付けのないエラーは内部エラーとしてログに残し、詳細は返さない。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	switch {
	case errors.Is(err, label.ErrNotFound):
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewSkillLabelNotFoundError(""))
		return
	case errors.Is(err, editor.ErrUnusableCanvas):
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity, model.NewInvalidCanvasError())
		return
	case errors.Is(err, generator.ErrEmptyPrompt):
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPromptError())
		return
	case errors.Is(err, auth.ErrUnauthenticated):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidPrompt, model.ErrCodeInvalidLabel,
		model.ErrCodeInvalidAxis, model.ErrCodeInvalidQuadrant:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCanvas:
		return http.StatusUnprocessableEntity
	case model.ErrCodeSkillMapNotFound, model.ErrCodeSkillLabelNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeCSRFInvalid:
		return http.StatusForbidden
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// requireUserID はコンテキストからユーザーIDを取り出す。取れない場合は401を書き込みfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return "", false
	}
	return userID, true
}
