package stream

import (
	"io"

	"go-exchange/pkg/errs"
)

// Memory is a memory-backed Stream. The zero value is an empty stream ready to use.
//
// Writes behave like a file: bytes overwrite from the cursor, the buffer grows
// when the write runs past its end, and the cursor moves after the written bytes.
type Memory struct {
	buf    []byte
	cursor int
}

var _ Stream = (*Memory)(nil)

// NewMemory returns an empty stream.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryString returns a stream positioned at the start of s.
func NewMemoryString(s string) *Memory {
	return &Memory{buf: []byte(s)}
}

// NewMemoryBytes returns a stream over a copy of b.
func NewMemoryBytes(b []byte) *Memory {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &Memory{buf: buf}
}

// Len returns the buffer length.
func (m *Memory) Len() int { return len(m.buf) }

// Cursor returns the current position.
func (m *Memory) Cursor() int { return m.cursor }

// Bytes returns a copy of the whole buffer regardless of the cursor.
func (m *Memory) Bytes() []byte {
	out := make([]byte, len(m.buf))
	copy(out, m.buf)
	return out
}

// String returns the whole buffer as a string.
func (m *Memory) String() string { return string(m.buf) }

func (m *Memory) EOF() bool {
	return m.cursor == len(m.buf)
}

func (m *Memory) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if m.EOF() {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.cursor:])
	m.cursor += n
	return n, nil
}

func (m *Memory) ReadByte() (byte, error) {
	if m.EOF() {
		return 0, io.EOF
	}
	c := m.buf[m.cursor]
	m.cursor++
	return c, nil
}

func (m *Memory) Next(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	end := clamp(m.cursor+n, len(m.buf))
	out := make([]byte, end-m.cursor)
	copy(out, m.buf[m.cursor:end])
	m.cursor = end
	return out
}

func (m *Memory) ReadAll(offset int) []byte {
	offset = clamp(offset, len(m.buf))
	out := make([]byte, len(m.buf)-offset)
	copy(out, m.buf[offset:])
	m.cursor = len(m.buf)
	return out
}

func (m *Memory) Write(p []byte) (int, error) {
	end := m.cursor + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.cursor:end], p)
	m.cursor = end
	return len(p), nil
}

func (m *Memory) WriteString(s string) (int, error) {
	return m.Write([]byte(s))
}

func (m *Memory) WriteN(p []byte, n int) (int, error) {
	if n < 0 {
		return 0, errs.New(errs.InvalidArgument, "negative write length %d", n)
	}
	chunk := make([]byte, n)
	copy(chunk, p)
	return m.Write(chunk)
}

// Seek moves the cursor and clamps it into [0, Len()].
// Only an unknown whence is rejected.
func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case SeekAbsolute:
		target = offset
	case SeekRelative:
		target = int64(m.cursor) + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	default:
		return int64(m.cursor), errs.New(errs.InvalidArgument, "unknown seek mode %d", whence)
	}

	if target < 0 {
		target = 0
	}
	if target > int64(len(m.buf)) {
		target = int64(len(m.buf))
	}
	m.cursor = int(target)
	return target, nil
}

func (m *Memory) Rewind() {
	m.cursor = 0
}

func (m *Memory) End() {
	m.cursor = len(m.buf)
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
