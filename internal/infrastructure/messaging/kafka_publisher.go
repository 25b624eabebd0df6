package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// MessageProducer escritor de mensajes Kafka (el otelkafka.Writer lo implementa).
type MessageProducer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// FailureCounter cuenta eventos que no se pudieron publicar.
type FailureCounter interface {
	IncEventPublishFailure(eventType string)
}

// NewKafkaWriter crea el writer de kafka-go envuelto con instrumentación OpenTelemetry:
// cada mensaje lleva el contexto de traza en sus headers.
func NewKafkaWriter(cfg config.KafkaConfig, serviceName string) (MessageProducer, error) {
	base := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(otel.GetTracerProvider()),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes([]attribute.KeyValue{
			semconv.MessagingDestinationNameKey.String(cfg.Topic),
			attribute.String("messaging.kafka.client_id", serviceName),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("crear writer Kafka: %w", err)
	}
	return writer, nil
}

// ledgerMessage cuerpo JSON de los eventos publicados.
type ledgerMessage struct {
	Type           string    `json:"type"`
	RecordID       string    `json:"record_id,omitempty"`
	ProductID      string    `json:"product_id"`
	LocationID     string    `json:"location_id,omitempty"`
	FromLocationID string    `json:"from_location_id,omitempty"`
	ToLocationID   string    `json:"to_location_id,omitempty"`
	QuantityChange int64     `json:"quantity_change"`
	Quantity       int64     `json:"quantity"`
	CurrentStock   int64     `json:"current_stock"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// KafkaPublisher publica los eventos del ledger con clave = product_id, así todos los eventos
// de un producto caen en la misma partición y conservan el orden.
type KafkaPublisher struct {
	producer MessageProducer
	failures FailureCounter
	log      zerolog.Logger
}

// NewKafkaPublisher failures puede ser nil.
func NewKafkaPublisher(producer MessageProducer, failures FailureCounter, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		failures: failures,
		log:      log.With().Str("component", "kafka_publisher").Logger(),
	}
}

// Publish serializa y escribe el evento.
func (p *KafkaPublisher) Publish(ctx context.Context, event entity.LedgerEvent) error {
	body, err := json.Marshal(ledgerMessage{
		Type:           event.Type,
		RecordID:       event.RecordID,
		ProductID:      event.ProductID,
		LocationID:     event.LocationID,
		FromLocationID: event.FromLocationID,
		ToLocationID:   event.ToLocationID,
		QuantityChange: event.QuantityChange,
		Quantity:       event.Quantity,
		CurrentStock:   event.CurrentStock,
		OccurredAt:     event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ProductID),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.producer.WriteMessage(ctx, msg); err != nil {
		if p.failures != nil {
			p.failures.IncEventPublishFailure(event.Type)
		}
		return fmt.Errorf("publicar evento %s: %w", event.Type, err)
	}
	p.log.Debug().Str("event_type", event.Type).Str("product_id", event.ProductID).Msg("evento publicado")
	return nil
}

// Close cierra el producer subyacente.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
