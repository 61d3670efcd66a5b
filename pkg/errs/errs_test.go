package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := WithLine(InvalidCommand, "FOO", "the HTTP command line is not valid: %q", "FOO")
	assert.Equal(t, `invalid command: the HTTP command line is not valid: "FOO"`, err.Error())

	wrapped := Wrap(SendMessage, io.ErrClosedPipe, "publish to %s", "events")
	assert.Equal(t, "send message: publish to events: io: read/write on closed pipe", wrapped.Error())
	assert.ErrorIs(t, wrapped, io.ErrClosedPipe)
}

func TestError_KindMatching(t *testing.T) {
	err := fmt.Errorf("decode: %w", New(MaxLineLength, "http line max length reached"))

	assert.True(t, IsKind(err, MaxLineLength))
	assert.False(t, IsKind(err, EOFFound))
	assert.True(t, errors.Is(err, &Error{Kind: MaxLineLength}))
	assert.Equal(t, MaxLineLength, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(io.EOF))
	assert.False(t, IsKind(nil, MaxLineLength))
}

func TestError_Recoverability(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		recoverable bool
		fatal       bool
		invalidData bool
	}{
		{"eof found", EOF([]byte("GET /")), true, false, true},
		{"max length", New(MaxLineLength, ""), false, true, true},
		{"malformed", New(MalformedLine, ""), false, true, true},
		{"command", WithLine(InvalidCommand, "x", ""), false, true, true},
		{"header", WithLine(InvalidHeader, "x", ""), false, true, true},
		{"body", New(BodyNotString, ""), false, true, false},
		{"send", New(SendMessage, ""), false, true, false},
		{"argument", New(InvalidArgument, ""), false, true, false},
		{"foreign", io.EOF, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.recoverable, IsRecoverable(tt.err))
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
			assert.Equal(t, tt.invalidData, IsInvalidData(tt.err))
		})
	}
}

func TestPartialBuffer(t *testing.T) {
	partial, ok := PartialBuffer(fmt.Errorf("read: %w", EOF([]byte("GET /foo"))))
	require.True(t, ok)
	assert.Equal(t, []byte("GET /foo"), partial)

	_, ok = PartialBuffer(New(MalformedLine, ""))
	assert.False(t, ok)
}

func TestOffendingLine(t *testing.T) {
	line, ok := OffendingLine(WithLine(InvalidHeader, "Host", "bad header"))
	require.True(t, ok)
	assert.Equal(t, "Host", line)

	_, ok = OffendingLine(New(SendMessage, ""))
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "message not valid: body not string", BodyNotString.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
	assert.True(t, IsMessageNotValid(New(BodyNotString, "")))
}
