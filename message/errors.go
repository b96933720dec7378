package message

import "fmt"

type ErrorCode string

const (
	ErrCodeWrongThread    ErrorCode = "WRONG_THREAD"
	ErrCodeDuplicateHook  ErrorCode = "DUPLICATE_HOOK"
	ErrCodeDegenerateHook ErrorCode = "DEGENERATE_HOOK"
)

type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("message: %s: %s", e.Code, e.Msg)
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
