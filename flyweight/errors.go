package flyweight

import "fmt"

type ErrorCode string

const (
	ErrCodeExhausted ErrorCode = "EXHAUSTED"
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
	return fmt.Sprintf("flyweight: %s: %s", e.Code, e.Msg)
}
