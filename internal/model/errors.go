// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, skillmap, generation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidPrompt      = "INVALID_PROMPT"
	ErrCodeInvalidLabel       = "INVALID_LABEL"
	ErrCodeInvalidAxis        = "INVALID_AXIS"
	ErrCodeInvalidQuadrant    = "INVALID_QUADRANT"
	ErrCodeInvalidCanvas      = "INVALID_CANVAS"
	ErrCodeSkillMapNotFound   = "SKILL_MAP_NOT_FOUND"
	ErrCodeSkillLabelNotFound = "SKILL_LABEL_NOT_FOUND"
	ErrCodeGenerationFailed   = "GENERATION_FAILED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeCSRFInvalid        = "CSRF_TOKEN_INVALID"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidPromptError は空のプロンプトに対するエラーを生成する。
func NewInvalidPromptError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPrompt,
		Message:  "プロンプトを入力してください",
		Category: "validation",
		Action:   "どのようなスキルマップを作成したいか入力してください。",
	}
}

// NewInvalidLabelError はスキルラベルの入力値エラーを生成する。
func NewInvalidLabelError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLabel,
		Message:  fmt.Sprintf("無効なスキルラベルです: %s", reason),
		Category: "validation",
		Action:   "ラベルテキストと色を確認してください。",
	}
}

// NewInvalidAxisError は軸・方向の指定誤りエラーを生成する。
func NewInvalidAxisError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAxis,
		Message:  fmt.Sprintf("無効な軸の指定です: %s", value),
		Category: "validation",
		Action:   "軸には vertical または horizontal、方向には positive または negative を指定してください。",
	}
}

// NewInvalidQuadrantError は象限の指定誤りエラーを生成する。
func NewInvalidQuadrantError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuadrant,
		Message:  fmt.Sprintf("無効な象限の指定です: %s", value),
		Category: "validation",
		Action:   "象限には topRight、topLeft、bottomLeft、bottomRight のいずれかを、ラベルは4件指定してください。",
	}
}

// NewInvalidCanvasError はキャンバス矩形が不正でドラッグ位置を計算できない場合のエラーを生成する。
func NewInvalidCanvasError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCanvas,
		Message:  "キャンバスのサイズが不正なため位置を更新できません。",
		Category: "validation",
		Action:   "キャンバスが表示された状態で再度ドラッグしてください。",
	}
}

// NewSkillMapNotFoundError はスキルマップ未検出エラーを生成する。
func NewSkillMapNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeSkillMapNotFound,
		Message:  fmt.Sprintf("指定されたスキルマップが見つかりません: %s", id),
		Category: "skillmap",
		Action:   "スキルマップIDを確認してください。",
	}
}

// NewSkillLabelNotFoundError はスキルラベル未検出エラーを生成する。
func NewSkillLabelNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeSkillLabelNotFound,
		Message:  fmt.Sprintf("指定されたスキルラベルが見つかりません: %s", id),
		Category: "skillmap",
		Action:   "ラベル一覧を再読み込みしてください。",
	}
}

// NewGenerationFailedError は軸・象限の自動生成失敗エラーを生成する。
// 原因の詳細はログにのみ記録する。
func NewGenerationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  "軸・象限設定の生成に失敗しました",
		Category: "generation",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewCSRFInvalidError はCSRFトークンの検証失敗エラーを生成する。
func NewCSRFInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
