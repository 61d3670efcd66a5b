package service

import (
	"context"
	"strings"

	"go-exchange/internal/observability"
	"go-exchange/pkg/mapper"
	"go-exchange/pkg/models"

	"github.com/sirupsen/logrus"
)

// Headers stamped on the out message.
const (
	HeaderProcessedBy = "X-Processed-By"
	HeaderExchangeID  = "X-Exchange-Id"
)

// ExchangeProcessor handles business logic for received HTTP request exchanges
type ExchangeProcessor struct {
	logger  *logrus.Logger
	allowed map[string]bool
}

// NewExchangeProcessor accepts the given methods, or every method when none
// are given.
func NewExchangeProcessor(allowedMethods ...string) *ExchangeProcessor {
	p := &ExchangeProcessor{
		logger: observability.GetLogger(),
	}
	if len(allowedMethods) > 0 {
		p.allowed = make(map[string]bool, len(allowedMethods))
		for _, m := range allowedMethods {
			p.allowed[strings.ToUpper(m)] = true
		}
	}
	return p
}

// Process marks requests with a disallowed method as fault. Accepted ones get
// an out message stamped with the processing context and exchange id.
func (p *ExchangeProcessor) Process(ctx context.Context, ex *models.Exchange) error {
	req := mapper.AsHTTP(ex.In())

	entry := p.logger.WithFields(logrus.Fields{
		"exchange_id": ex.ID(),
		"message_id":  ex.In().ID(),
		"route_id":    ex.FromRouteID(),
		"method":      req.Method(),
		"uri":         req.URI(),
	})

	if p.allowed != nil && !p.allowed[req.Method()] {
		entry.Warn("Method not allowed, marking request as fault")
		ex.In().SetFault(true)
		return nil
	}

	entry.Info("Processing exchange")

	out := ex.Out()
	if c := ex.Context(); c != nil {
		out.SetHeader(HeaderProcessedBy, c.Name())
	}
	out.SetHeader(HeaderExchangeID, ex.ID())

	entry.WithField("headers", len(out.Headers())).Debug("Exchange processed successfully")
	return nil
}
