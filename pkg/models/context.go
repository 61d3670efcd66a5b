package models

import (
	"context"

	"github.com/google/uuid"
)

// Context is the processing environment that owns exchanges.
// It names itself and hands out ids for exchanges and messages.
type Context interface {
	Name() string
	NewID() string
}

// DefaultContext generates random UUIDs.
type DefaultContext struct {
	name string
}

// NewContext returns a DefaultContext with the given name.
func NewContext(name string) *DefaultContext {
	return &DefaultContext{name: name}
}

func (c *DefaultContext) Name() string { return c.name }

func (c *DefaultContext) NewID() string { return uuid.NewString() }

// MessageSender consumes a finished message.
// Implementations report failures as errs.SendMessage errors and do not retry.
type MessageSender interface {
	Send(ctx context.Context, msg *Message) error
}
