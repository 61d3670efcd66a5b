package errs

import (
	"errors"
	"fmt"
)

// ============================================================================
// Kinds
// ============================================================================

// Kind discriminates the failures raised by streams, messages and mappers.
type Kind int

const (
	// InvalidArgument: a value of the wrong shape or type was passed in.
	InvalidArgument Kind = iota + 1
	// EOFFound: the stream ended before a line terminator. Carries the partial buffer.
	EOFFound
	// MaxLineLength: a line grew past the configured bound.
	MaxLineLength
	// MalformedLine: a LF was found without a preceding CR.
	MalformedLine
	// InvalidCommand: the request line does not match the request grammar.
	InvalidCommand
	// InvalidHeader: a header section line does not match the header grammar.
	InvalidHeader
	// BodyNotString: the message body cannot be coerced for output.
	BodyNotString
	// SendMessage: a finished message could not be transmitted.
	SendMessage
)

var kindNames = map[Kind]string{
	InvalidArgument: "invalid argument",
	EOFFound:        "invalid data: eof found",
	MaxLineLength:   "invalid data: max line length",
	MalformedLine:   "invalid data: malformed line",
	InvalidCommand:  "invalid command",
	InvalidHeader:   "invalid header",
	BodyNotString:   "message not valid: body not string",
	SendMessage:     "send message",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ============================================================================
// Error
// ============================================================================

// Error is the single error type of the taxonomy.
// Line is set for InvalidCommand and InvalidHeader, Partial for EOFFound.
type Error struct {
	Kind    Kind
	Msg     string
	Line    string
	Partial []byte
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind wrapping err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// EOF returns the recoverable EOFFound error carrying what was read so far.
func EOF(partial []byte) *Error {
	return &Error{
		Kind:    EOFFound,
		Msg:     "the given line has no end, found EOF before CRLF",
		Partial: partial,
	}
}

// WithLine returns an error of the given kind naming the offending line.
func WithLine(kind Kind, line string, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line}
}

// ============================================================================
// Helpers
// ============================================================================

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind checks whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRecoverable reports whether err is the EOFFound condition.
func IsRecoverable(err error) bool {
	return IsKind(err, EOFFound)
}

// IsFatal reports whether err is any taxonomy error other than EOFFound.
func IsFatal(err error) bool {
	kind := KindOf(err)
	return kind != 0 && kind != EOFFound
}

// IsInvalidData reports whether err belongs to the invalid-data family.
func IsInvalidData(err error) bool {
	switch KindOf(err) {
	case EOFFound, MaxLineLength, MalformedLine, InvalidCommand, InvalidHeader:
		return true
	}
	return false
}

// IsMessageNotValid reports whether err belongs to the message-not-valid family.
func IsMessageNotValid(err error) bool {
	return IsKind(err, BodyNotString)
}

// PartialBuffer returns the bytes carried by an EOFFound error.
func PartialBuffer(err error) ([]byte, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == EOFFound {
		return e.Partial, true
	}
	return nil, false
}

// OffendingLine returns the line named by an InvalidCommand or InvalidHeader error.
func OffendingLine(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && (e.Kind == InvalidCommand || e.Kind == InvalidHeader) {
		return e.Line, true
	}
	return "", false
}
