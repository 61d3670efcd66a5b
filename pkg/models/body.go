package models

import (
	"io"

	"go-exchange/pkg/errs"
	"go-exchange/pkg/stream"
)

type bodyKind byte

const (
	bodyKindNone bodyKind = iota
	bodyKindString
	bodyKindStream
)

// Body is the message payload: either a string or a readable stream, never both.
// The zero value means "no body" and renders as an empty string.
type Body struct {
	kind   bodyKind
	text   string
	stream stream.Reader
}

// StringBody returns a string body.
func StringBody(s string) Body {
	return Body{kind: bodyKindString, text: s}
}

// StreamBody returns a stream body. A nil reader yields an empty body.
func StreamBody(r stream.Reader) Body {
	if r == nil {
		return Body{}
	}
	return Body{kind: bodyKindStream, stream: r}
}

// NewBody converts v into a Body. Accepted: string, []byte, Body,
// stream.Reader and io.Reader (drained into a memory stream).
func NewBody(v any) (Body, error) {
	switch b := v.(type) {
	case nil:
		return Body{}, nil
	case Body:
		return b, nil
	case string:
		return StringBody(b), nil
	case []byte:
		return StringBody(string(b)), nil
	case stream.Reader:
		return StreamBody(b), nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return Body{}, errs.Wrap(errs.InvalidArgument, err, "read body")
		}
		return StreamBody(stream.NewMemoryBytes(data)), nil
	default:
		return Body{}, errs.New(errs.InvalidArgument, "body must be a string or a stream, %T given", v)
	}
}

// IsEmpty reports whether no body was set.
func (b Body) IsEmpty() bool { return b.kind == bodyKindNone }

// IsString reports whether the body holds a string.
func (b Body) IsString() bool { return b.kind == bodyKindString }

// IsStream reports whether the body holds a stream.
func (b Body) IsStream() bool { return b.kind == bodyKindStream }

// Text returns the string variant.
func (b Body) Text() (string, bool) {
	return b.text, b.kind == bodyKindString
}

// Stream returns the stream variant.
func (b Body) Stream() (stream.Reader, bool) {
	return b.stream, b.kind == bodyKindStream
}

// AsString coerces the body for output. A stream body is read from its
// current position. Seekable streams are rewound to that position afterwards,
// others are left drained.
func (b Body) AsString() (string, error) {
	switch b.kind {
	case bodyKindString:
		return b.text, nil
	case bodyKindStream:
		if s, ok := b.stream.(io.Seeker); ok {
			if pos, err := s.Seek(0, io.SeekCurrent); err == nil {
				defer s.Seek(pos, io.SeekStart)
			}
		}
		data, err := io.ReadAll(b.stream)
		if err != nil {
			return "", errs.Wrap(errs.BodyNotString, err, "read stream body")
		}
		return string(data), nil
	default:
		return "", nil
	}
}

// snapshot gives a seekable stream body an independent cursor. Other bodies
// are returned as is.
func (b Body) snapshot() Body {
	if b.kind != bodyKindStream {
		return b
	}
	if _, ok := b.stream.(io.Seeker); !ok {
		return b
	}
	s, err := b.AsString()
	if err != nil {
		return b
	}
	return StreamBody(stream.NewMemoryString(s))
}
