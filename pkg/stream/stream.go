package stream

import "io"

// Seek modes accepted by Seek. They share values with io.SeekStart and
// io.SeekCurrent so a Stream can be handed to anything expecting an io.Seeker.
const (
	SeekAbsolute = io.SeekStart
	SeekRelative = io.SeekCurrent
)

// Reader is the readable side of a stream.
// Every read advances the cursor by the number of bytes actually consumed.
type Reader interface {
	io.Reader
	io.ByteReader

	// Next returns up to n bytes from the cursor.
	Next(n int) []byte
	// ReadAll returns everything from offset to the end and moves the cursor to the end.
	ReadAll(offset int) []byte
	// EOF reports whether the cursor sits at the end of the buffer.
	EOF() bool
}

// Writer is the writable side of a stream.
type Writer interface {
	io.Writer
	io.StringWriter

	// WriteN writes exactly n bytes of p, padding with NUL when p is shorter.
	WriteN(p []byte, n int) (int, error)
}

// Seeker repositions the cursor. Out of range positions are clamped, never rejected.
type Seeker interface {
	io.Seeker

	Rewind()
	End()
}

// Stream is a readable, writable, seekable byte cursor.
// Implementations are not safe for concurrent use.
type Stream interface {
	Reader
	Writer
	Seeker
}
