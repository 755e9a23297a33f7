package generator

import (
	"errors"
	"fmt"
)

// ErrEmptyPrompt はプロンプトが空または空白のみの場合に返される。バックエンドは呼ばれない。
var ErrEmptyPrompt = errors.New("prompt is empty")

var (
	// ErrNoCandidates はバックエンドが候補を1件も返さなかったことを示す。
	ErrNoCandidates = errors.New("no response candidates")
	// ErrEmptyResponse は先頭候補のテキストが空だったことを示す。
	ErrEmptyResponse = errors.New("empty response text")
)

// GenerationError はバックエンド呼び出しの失敗を表す。
// Reason はErrNoCandidatesまたはErrEmptyResponse、Cause はバックエンドが返したエラー。
type GenerationError struct {
	Reason error
	Cause  error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Reason != nil && e.Cause != nil:
		return fmt.Sprintf("generation failed: %v: %v", e.Reason, e.Cause)
	case e.Reason != nil:
		return fmt.Sprintf("generation failed: %v", e.Reason)
	default:
		return fmt.Sprintf("generation failed: %v", e.Cause)
	}
}

func (e *GenerationError) Unwrap() []error {
	var errs []error
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ParseError は生成テキストを設定として解釈できなかった場合に返される。
// Raw は加工前のテキストで、ログ出力に使う。
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid generated config: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
