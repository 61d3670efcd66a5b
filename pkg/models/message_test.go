package models

import (
	"io"
	"regexp"
	"testing"

	"go-exchange/pkg/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_HeaderCRUD(t *testing.T) {
	msg := NewMessage()

	assert.False(t, msg.HasHeaders())
	assert.Equal(t, "fallback", msg.Header("Host", "fallback"))

	prev, existed := msg.SetHeader("Host", "example.com")
	assert.False(t, existed)
	assert.Equal(t, "", prev)
	assert.True(t, msg.HasHeader("Host"))

	prev, existed = msg.SetHeader("Host", "other.org")
	assert.True(t, existed)
	assert.Equal(t, "example.com", prev)
	assert.Equal(t, "other.org", msg.Header("Host", ""))

	prev, existed = msg.RemoveHeader("Host")
	assert.True(t, existed)
	assert.Equal(t, "other.org", prev)
	assert.False(t, msg.HasHeader("Host"))

	_, existed = msg.RemoveHeader("Host")
	assert.False(t, existed)
}

func TestMessage_HeaderNamesAreLiteral(t *testing.T) {
	msg := NewMessage()
	msg.SetHeader("Content-Type", "text/plain")

	assert.True(t, msg.HasHeader("Content-Type"))
	assert.False(t, msg.HasHeader("content-type"))
}

func TestMessage_HeaderBulkOperations(t *testing.T) {
	msg := NewMessage()
	msg.SetHeader("A", "1")
	msg.SetHeaders(map[string]string{"B": "2", "C": "3"})

	assert.False(t, msg.HasHeader("A"))
	assert.Equal(t, []string{"B", "C"}, msg.HeaderNames())

	headers := msg.Headers()
	headers["D"] = "4"
	assert.False(t, msg.HasHeader("D"))

	msg.ClearHeaders()
	assert.False(t, msg.HasHeaders())
}

func TestMessage_HeadersMatching(t *testing.T) {
	msg := NewMessage()
	msg.SetHeader("Host", "example.com")
	msg.SetHeader("http.method", "GET")
	msg.SetHeader("query.foo", "bar")

	matched := msg.HeadersMatching(regexp.MustCompile(`^[A-Za-z-]+$`))
	assert.Equal(t, map[string]string{"Host": "example.com"}, matched)
}

func TestMessage_AttachmentCRUD(t *testing.T) {
	msg := NewMessage()
	a := stream.NewMemoryString("a")
	b := stream.NewMemoryString("b")

	assert.Nil(t, msg.Attachment("file", nil))
	assert.Same(t, a, msg.Attachment("file", a))

	_, existed := msg.AddAttachment("file", a)
	assert.False(t, existed)

	prev, existed := msg.AddAttachment("file", b)
	assert.True(t, existed)
	assert.Same(t, a, prev)

	msg.SetAttachments(map[string]stream.Reader{"other": a})
	assert.Equal(t, []string{"file", "other"}, msg.AttachmentNames())
	assert.True(t, msg.HasAttachments())

	prev, existed = msg.RemoveAttachment("file")
	assert.True(t, existed)
	assert.Same(t, b, prev)
	assert.False(t, msg.HasAttachment("file"))

	msg.ClearAttachments()
	assert.False(t, msg.HasAttachments())
}

func TestMessage_Fault(t *testing.T) {
	msg := NewMessage()
	assert.False(t, msg.IsFault())

	msg.SetFault(true)
	assert.True(t, msg.IsFault())

	msg.SetFault(false)
	assert.False(t, msg.IsFault())
}

func TestMessage_ZeroValueIsUsable(t *testing.T) {
	var msg Message

	msg.SetHeader("A", "1")
	msg.AddAttachment("x", stream.NewMemory())

	assert.Equal(t, "1", msg.Header("A", ""))
	assert.True(t, msg.HasAttachment("x"))
}

func TestMessage_CopyIsIndependent(t *testing.T) {
	attachment := stream.NewMemoryString("shared")
	original := NewMessage()
	original.SetID("msg-1")
	original.SetHeader("Host", "example.com")
	original.AddAttachment("file", attachment)
	original.SetBodyString("hello")

	clone := original.Copy()
	clone.SetHeader("Host", "changed.org")
	clone.SetHeader("X-New", "1")
	clone.SetBodyString("bye")
	clone.SetFault(true)
	clone.AddAttachment("extra", stream.NewMemory())

	assert.Equal(t, "msg-1", clone.ID())
	assert.Equal(t, "example.com", original.Header("Host", ""))
	assert.False(t, original.HasHeader("X-New"))
	assert.False(t, original.IsFault())
	assert.False(t, original.HasAttachment("extra"))

	body, err := original.BodyString()
	require.NoError(t, err)
	assert.Equal(t, "hello", body)

	assert.Same(t, original.Attachment("file", nil), clone.Attachment("file", nil))
}

func TestMessage_CopyIsolatesStreamBody(t *testing.T) {
	original := NewMessage()
	original.SetBody(StreamBody(stream.NewMemoryString("payload")))

	first := original.Copy()
	out, err := first.BodyString()
	require.NoError(t, err)
	assert.Equal(t, "payload", out)

	out, err = original.BodyString()
	require.NoError(t, err)
	assert.Equal(t, "payload", out)

	second := original.Copy()
	r, ok := second.Body().Stream()
	require.True(t, ok)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	out, err = original.BodyString()
	require.NoError(t, err)
	assert.Equal(t, "payload", out)
}

// forwardOnly hides the Seek method of the wrapped stream.
type forwardOnly struct {
	stream.Reader
}

func TestMessage_BodyStringKeepsForwardOnlyStream(t *testing.T) {
	msg := NewMessage()
	msg.SetBody(StreamBody(forwardOnly{stream.NewMemoryString("once")}))

	for i := 0; i < 2; i++ {
		out, err := msg.BodyString()
		require.NoError(t, err)
		assert.Equal(t, "once", out)
	}
	assert.True(t, msg.Body().IsString())
}

func TestMessage_CopyFrom(t *testing.T) {
	source := NewMessage()
	source.SetID("source")
	source.SetHeader("Host", "example.com")
	source.AddAttachment("src", stream.NewMemory())
	source.SetBodyString("body")
	source.SetFault(true)

	target := NewMessage()
	target.SetID("target")
	target.SetHeader("Stale", "1")
	target.AddAttachment("stale", stream.NewMemory())

	target.CopyFrom(source)

	assert.Equal(t, "target", target.ID())
	assert.Equal(t, map[string]string{"Host": "example.com"}, target.Headers())
	assert.False(t, target.HasAttachments())
	assert.True(t, target.IsFault())

	body, err := target.BodyString()
	require.NoError(t, err)
	assert.Equal(t, "body", body)

	target.SetHeader("Host", "changed")
	assert.Equal(t, "example.com", source.Header("Host", ""))
}
