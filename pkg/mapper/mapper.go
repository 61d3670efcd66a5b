// Package mapper converts between raw byte streams and structured messages.
//
// A Mapper is a bidirectional codec for one wire protocol. Decode populates a
// message from a stream, Encode writes a message back onto a stream. Both are
// synchronous and leave concurrency to the caller.
package mapper

import (
	"go-exchange/pkg/models"
	"go-exchange/pkg/stream"
)

// Mapper is the codec contract every wire protocol implements.
type Mapper interface {
	// Decode reads one message from in into msg.
	Decode(in stream.Reader, msg *models.Message) error
	// Encode writes msg onto out.
	Encode(out stream.Writer, msg *models.Message) error
}
