package models

import (
	"go-exchange/pkg/errs"
)

// Exchange is the unit of work flowing through a pipeline: an inbound message,
// an optional outbound message, exchange-scoped properties and failure state.
//
// An Exchange is owned by one stage at a time. Use Copy before forwarding it to
// more than one destination. Build one with NewExchange; a zero Exchange
// starts with an empty in message.
type Exchange struct {
	id          string
	fromRouteID string
	properties  map[string]any
	in          *Message
	out         *Message
	err         error
	ctx         Context
}

// NewExchange wraps in. The exchange id comes from ctx when ctx is set.
func NewExchange(ctx Context, in *Message) (*Exchange, error) {
	if in == nil {
		return nil, errs.New(errs.InvalidArgument, "exchange requires an in message")
	}

	ex := &Exchange{
		properties: make(map[string]any),
		in:         in,
		ctx:        ctx,
	}
	if ctx != nil {
		ex.id = ctx.NewID()
	}
	return ex, nil
}

// ID returns the exchange id.
func (e *Exchange) ID() string { return e.id }

// SetID assigns the exchange id.
func (e *Exchange) SetID(id string) { e.id = id }

// FromRouteID returns the route that originated the exchange.
func (e *Exchange) FromRouteID() string { return e.fromRouteID }

// SetFromRouteID records the route that originated the exchange.
func (e *Exchange) SetFromRouteID(routeID string) { e.fromRouteID = routeID }

// Context returns the owning context. It is shared, never copied.
func (e *Exchange) Context() Context { return e.ctx }

// ============================================================================
// Properties
// ============================================================================

// Property returns the property value or def.
func (e *Exchange) Property(name string, def any) any {
	if v, ok := e.properties[name]; ok {
		return v
	}
	return def
}

// HasProperty reports whether the property is set.
func (e *Exchange) HasProperty(name string) bool {
	_, ok := e.properties[name]
	return ok
}

// SetProperty stores the property and returns the value it replaced, if any.
func (e *Exchange) SetProperty(name string, value any) (prev any, existed bool) {
	if e.properties == nil {
		e.properties = make(map[string]any)
	}
	prev, existed = e.properties[name]
	e.properties[name] = value
	return prev, existed
}

// RemoveProperty deletes the property and returns the removed value, if any.
func (e *Exchange) RemoveProperty(name string) (prev any, existed bool) {
	prev, existed = e.properties[name]
	delete(e.properties, name)
	return prev, existed
}

// Properties returns a copy of the property map.
func (e *Exchange) Properties() map[string]any {
	out := make(map[string]any, len(e.properties))
	for k, v := range e.properties {
		out[k] = v
	}
	return out
}

// ============================================================================
// Messages
// ============================================================================

// In returns the inbound message. It is never nil.
func (e *Exchange) In() *Message {
	if e.in == nil {
		e.in = NewMessage()
	}
	return e.in
}

// SetIn replaces the inbound message.
func (e *Exchange) SetIn(m *Message) error {
	if m == nil {
		return errs.New(errs.InvalidArgument, "in message cannot be nil")
	}
	e.in = m
	return nil
}

// Out returns the outbound message. When none was set, a copy of In is
// derived on the first call and kept as the outbound message, so later calls
// return the same instance and HasOut reports true from then on.
func (e *Exchange) Out() *Message {
	if e.out == nil {
		e.out = e.In().Copy()
	}
	return e.out
}

// SetOut replaces the outbound message. nil returns the exchange to "no out yet".
func (e *Exchange) SetOut(m *Message) { e.out = m }

// HasOut reports whether an outbound message is present.
func (e *Exchange) HasOut() bool { return e.out != nil }

// ============================================================================
// Failure
// ============================================================================

// SetException records err as the exchange failure.
func (e *Exchange) SetException(err error) { e.err = err }

// Exception returns the recorded failure, if any.
func (e *Exchange) Exception() error { return e.err }

// IsFailed is true when an exception was recorded, the in message is on
// fault, or an out message is present and on fault.
func (e *Exchange) IsFailed() bool {
	return e.err != nil || e.In().IsFault() || (e.out != nil && e.out.IsFault())
}

// Copy deep-copies the in and out messages and the property map.
// Attachment streams, property values and the context are shared.
func (e *Exchange) Copy() *Exchange {
	c := &Exchange{
		id:          e.id,
		fromRouteID: e.fromRouteID,
		properties:  e.Properties(),
		in:          e.In().Copy(),
		err:         e.err,
		ctx:         e.ctx,
	}
	if e.out != nil {
		c.out = e.out.Copy()
	}
	return c
}
