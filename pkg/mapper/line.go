package mapper

import (
	"go-exchange/pkg/errs"
	"go-exchange/pkg/stream"
)

const (
	CR   = '\r'
	LF   = '\n'
	CRLF = "\r\n"

	// DefaultMaxLineLength bounds a single protocol line.
	DefaultMaxLineLength = 8192
)

// ReadLine reads one CRLF terminated line from in.
//
// offset is a running count of bytes consumed from in; the returned next is
// offset plus what this call consumed, on success and on failure alike, so a
// caller parsing several lines threads it from call to call.
//
// Errors:
//   - errs.MaxLineLength when the line content reaches maxLineLength before a terminator;
//   - errs.EOFFound when the stream ends first, carrying the bytes read so far;
//   - errs.MalformedLine when a LF is not preceded by a CR.
func ReadLine(in stream.Reader, keepTerminator bool, offset, maxLineLength int) (line []byte, next int, err error) {
	next = offset
	buf := make([]byte, 0, 128)

	for {
		if contentLength(buf) >= maxLineLength {
			return nil, next, errs.New(errs.MaxLineLength, "line exceeds %d bytes", maxLineLength)
		}
		if in.EOF() {
			return nil, next, errs.EOF(buf)
		}

		c, readErr := in.ReadByte()
		if readErr != nil {
			return nil, next, errs.EOF(buf)
		}
		next++

		if c == LF {
			if len(buf) == 0 || buf[len(buf)-1] != CR {
				return nil, next, errs.New(errs.MalformedLine, "line ends with LF, not with CRLF")
			}
			if keepTerminator {
				return append(buf, c), next, nil
			}
			return buf[:len(buf)-1], next, nil
		}

		buf = append(buf, c)
	}
}

// WriteLine writes line followed by CRLF.
func WriteLine(out stream.Writer, line string) error {
	_, err := out.WriteString(line + CRLF)
	return err
}

// contentLength is the line length without a trailing CR that may still turn
// out to be half of the terminator.
func contentLength(buf []byte) int {
	if n := len(buf); n > 0 && buf[n-1] == CR {
		return n - 1
	}
	return len(buf)
}
