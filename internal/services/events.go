package services

import (
	"context"

	"github.com/kengo-k/taxdesk-sub002/internal/amqp"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
)

// EventPublisher sends ledger change notifications. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// Invalidator drops derived data held for a fiscal year.
type Invalidator interface {
	Invalidate(fiscalYear string)
}

// notifier fans a committed change out to the cache and the event bus.
// Neither step can fail the operation that triggered it.
type notifier struct {
	publisher   EventPublisher
	invalidator Invalidator
	logger      *log.Logger
}

type Option func(*notifier)

func WithPublisher(p EventPublisher) Option {
	return func(n *notifier) { n.publisher = p }
}

func WithInvalidator(i Invalidator) Option {
	return func(n *notifier) { n.invalidator = i }
}

func WithLogger(l *log.Logger) Option {
	return func(n *notifier) { n.logger = l }
}

func newNotifier(component string, opts []Option) notifier {
	n := notifier{}
	for _, opt := range opts {
		opt(&n)
	}
	if n.logger == nil {
		n.logger = log.FromContext(context.Background())
	}
	n.logger = n.logger.WithComponent(component)
	return n
}

func (n notifier) changed(ctx context.Context, event *amqp.LedgerEvent) {
	if n.invalidator != nil {
		n.invalidator.Invalidate(event.FiscalYear)
	}
	if n.publisher == nil {
		n.logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event",
			log.FieldEventType, event.Type)
		return
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, event.ID,
			log.FieldEventType, event.Type,
			log.FieldFiscalYear, event.FiscalYear,
			log.FieldError, err)
	}
}
