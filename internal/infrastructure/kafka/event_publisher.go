package kafka

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/kafka"
	"github.com/ledgerstack/erp-core/pkg/logging"
	"github.com/ledgerstack/erp-core/pkg/metrics"
	"github.com/ledgerstack/erp-core/pkg/resilience"
)

const eventSource = "erp-core"

// EventPublisher routes domain events to their Kafka topics behind a circuit
// breaker. Publishing is best effort; a broker outage must never fail the
// business operation that raised the event.
type EventPublisher struct {
	producer *kafka.Producer
	breaker  *resilience.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewEventPublisher creates a new EventPublisher
func NewEventPublisher(producer *kafka.Producer, breaker *resilience.CircuitBreaker, m *metrics.Metrics, logger *logging.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		breaker:  breaker,
		metrics:  m,
		logger:   logger,
	}
}

// Publish wraps the event in an envelope and sends it to the topic derived
// from its type
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	topic := topicFor(event)
	envelope := &kafka.Envelope{
		ID:      uuid.New().String(),
		Type:    event.EventType(),
		Source:  eventSource,
		Subject: subjectFor(event),
		Time:    event.OccurredAt(),
		Data:    event,
	}

	start := time.Now()
	_, err := p.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, p.producer.PublishEvent(ctx, topic, envelope)
	})
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.EventType(), err == nil, duration)
	}
	if err != nil {
		p.logger.Warn("Failed to publish event", "topic", topic, "eventType", event.EventType(), "error", err)
		return err
	}

	p.logger.KafkaPublish(ctx, topic, event.EventType(), true, duration)
	return nil
}

func topicFor(event domain.DomainEvent) string {
	switch event.(type) {
	case *domain.ProductionRecordedEvent:
		return kafka.Topics.ProductionEvents
	case *domain.StockReconciledEvent, *domain.ReconciliationFailedEvent:
		return kafka.Topics.InventoryEvents
	case *domain.LedgerEntryPostedEvent:
		return kafka.Topics.LedgerEvents
	case *domain.OrderCreatedEvent:
		return kafka.Topics.OrderEvents
	default:
		return kafka.Topics.InventoryEvents
	}
}

// subjectFor picks the envelope subject, which doubles as the partition key
func subjectFor(event domain.DomainEvent) string {
	switch e := event.(type) {
	case *domain.ProductionRecordedEvent:
		return e.SubpartID
	case *domain.StockReconciledEvent:
		return e.SKUID
	case *domain.ReconciliationFailedEvent:
		return e.SubpartID
	case *domain.LedgerEntryPostedEvent:
		return e.Account
	case *domain.OrderCreatedEvent:
		return e.OrderID
	default:
		return event.EventType()
	}
}
