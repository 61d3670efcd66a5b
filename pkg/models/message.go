package models

import (
	"io"
	"regexp"
	"sort"

	"go-exchange/pkg/stream"
)

// Message is a mutable envelope of headers, attachments and a body.
// Header names are stored literally, with no case normalization.
// A Message is owned by one pipeline stage at a time and is not safe for
// concurrent use; fork it with Copy.
type Message struct {
	id          string
	headers     map[string]string
	attachments map[string]stream.Reader
	body        Body
	fault       bool
}

// NewMessage returns an empty message without id.
func NewMessage() *Message {
	return &Message{
		headers:     make(map[string]string),
		attachments: make(map[string]stream.Reader),
	}
}

// ID returns the id assigned by the owning context.
func (m *Message) ID() string { return m.id }

// SetID assigns the message id.
func (m *Message) SetID(id string) { m.id = id }

// IsFault reports whether the message is on fault.
func (m *Message) IsFault() bool { return m.fault }

// SetFault raises or clears the fault flag.
func (m *Message) SetFault(fault bool) { m.fault = fault }

// ============================================================================
// Headers
// ============================================================================

// Header returns the header value or def when it is not set.
func (m *Message) Header(name, def string) string {
	if v, ok := m.headers[name]; ok {
		return v
	}
	return def
}

// HasHeader reports whether the header is set.
func (m *Message) HasHeader(name string) bool {
	_, ok := m.headers[name]
	return ok
}

// SetHeader stores the header and returns the value it replaced, if any.
func (m *Message) SetHeader(name, value string) (prev string, existed bool) {
	m.ensure()
	prev, existed = m.headers[name]
	m.headers[name] = value
	return prev, existed
}

// RemoveHeader deletes the header and returns the removed value, if any.
func (m *Message) RemoveHeader(name string) (prev string, existed bool) {
	prev, existed = m.headers[name]
	delete(m.headers, name)
	return prev, existed
}

// Headers returns a copy of the header map.
func (m *Message) Headers() map[string]string {
	out := make(map[string]string, len(m.headers))
	for k, v := range m.headers {
		out[k] = v
	}
	return out
}

// HeaderNames returns the header names in sorted order.
func (m *Message) HeaderNames() []string {
	names := make([]string, 0, len(m.headers))
	for k := range m.headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// HeadersMatching returns the headers whose name matches re.
func (m *Message) HeadersMatching(re *regexp.Regexp) map[string]string {
	out := make(map[string]string)
	for k, v := range m.headers {
		if re.MatchString(k) {
			out[k] = v
		}
	}
	return out
}

// SetHeaders replaces every header with the given ones.
func (m *Message) SetHeaders(headers map[string]string) {
	m.headers = make(map[string]string, len(headers))
	for k, v := range headers {
		m.headers[k] = v
	}
}

// ClearHeaders removes every header.
func (m *Message) ClearHeaders() {
	m.headers = make(map[string]string)
}

// HasHeaders reports whether at least one header is set.
func (m *Message) HasHeaders() bool { return len(m.headers) > 0 }

// ============================================================================
// Attachments
// ============================================================================

// Attachment returns the named attachment or def.
func (m *Message) Attachment(name string, def stream.Reader) stream.Reader {
	if r, ok := m.attachments[name]; ok {
		return r
	}
	return def
}

// HasAttachment reports whether the attachment is set.
func (m *Message) HasAttachment(name string) bool {
	_, ok := m.attachments[name]
	return ok
}

// AddAttachment stores the attachment and returns the one it replaced, if any.
func (m *Message) AddAttachment(name string, r stream.Reader) (prev stream.Reader, existed bool) {
	m.ensure()
	prev, existed = m.attachments[name]
	m.attachments[name] = r
	return prev, existed
}

// RemoveAttachment deletes the attachment and returns it, if any.
func (m *Message) RemoveAttachment(name string) (prev stream.Reader, existed bool) {
	prev, existed = m.attachments[name]
	delete(m.attachments, name)
	return prev, existed
}

// Attachments returns a copy of the attachment map. The streams are shared.
func (m *Message) Attachments() map[string]stream.Reader {
	out := make(map[string]stream.Reader, len(m.attachments))
	for k, v := range m.attachments {
		out[k] = v
	}
	return out
}

// AttachmentNames returns the attachment names in sorted order.
func (m *Message) AttachmentNames() []string {
	names := make([]string, 0, len(m.attachments))
	for k := range m.attachments {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetAttachments adds every given attachment, keeping the others.
func (m *Message) SetAttachments(attachments map[string]stream.Reader) {
	for k, v := range attachments {
		m.AddAttachment(k, v)
	}
}

// ClearAttachments removes every attachment.
func (m *Message) ClearAttachments() {
	m.attachments = make(map[string]stream.Reader)
}

// HasAttachments reports whether at least one attachment is set.
func (m *Message) HasAttachments() bool { return len(m.attachments) > 0 }

// ============================================================================
// Body
// ============================================================================

// Body returns the message body.
func (m *Message) Body() Body { return m.body }

// SetBody replaces the body.
func (m *Message) SetBody(b Body) { m.body = b }

// SetBodyString replaces the body with a string body.
func (m *Message) SetBodyString(s string) { m.body = StringBody(s) }

// BodyString coerces the body for output. See Body.AsString.
// A stream body that cannot seek is replaced by its text so later reads
// see the same content.
func (m *Message) BodyString() (string, error) {
	s, err := m.body.AsString()
	if err != nil {
		return "", err
	}
	if r, ok := m.body.Stream(); ok {
		if _, seekable := r.(io.Seeker); !seekable {
			m.body = StringBody(s)
		}
	}
	return s, nil
}

// ============================================================================
// Copy
// ============================================================================

// Copy returns a message with its own header and attachment maps.
// A seekable stream body is snapshotted from its cursor into a new stream.
// Attachment streams are shared with the original.
func (m *Message) Copy() *Message {
	c := &Message{
		id:    m.id,
		body:  m.body.snapshot(),
		fault: m.fault,
	}
	c.SetHeaders(m.headers)
	c.attachments = m.Attachments()
	return c
}

// CopyFrom clears the receiver's headers and attachments, then imports
// other's headers, body and fault flag. The receiver keeps its id.
func (m *Message) CopyFrom(other *Message) {
	m.ClearAttachments()
	m.ClearHeaders()

	m.SetHeaders(other.headers)
	m.body = other.body
	m.fault = other.fault
}

func (m *Message) ensure() {
	if m.headers == nil {
		m.headers = make(map[string]string)
	}
	if m.attachments == nil {
		m.attachments = make(map[string]stream.Reader)
	}
}
