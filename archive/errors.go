package archive

import "fmt"

// ErrorCode names the locally-recovered failure kinds an Archive can hit
// while parsing or walking a BINARC span. Readers that need to tell
// InvalidFormat from OutOfRange apart can do so via errors.As, the same
// pattern as the reservoir package's Error.
type ErrorCode string

const (
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
	ErrCodeWrongKind     ErrorCode = "WRONG_KIND"
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
	return fmt.Sprintf("archive: %s: %s", e.Code, e.Msg)
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
