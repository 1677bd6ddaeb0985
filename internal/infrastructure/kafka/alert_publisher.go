// Package kafka publica eventos de inventario en Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// EventTypeSafetyAlert valor del header event_type para alertas de stock de seguridad.
const EventTypeSafetyAlert = "inventory.safety_alert"

var _ inventory.AlertPublisher = (*AlertPublisher)(nil)

// AlertPublisher envía alertas de stock de seguridad a un tópico con un SyncProducer.
type AlertPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewAlertPublisher crea el productor contra los brokers indicados.
func NewAlertPublisher(brokers []string, topic string, log zerolog.Logger) (*AlertPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("publicador de alertas kafka inicializado")
	return NewAlertPublisherWithProducer(producer, topic, log), nil
}

// NewAlertPublisherWithProducer usa un productor existente (tests con sarama/mocks).
func NewAlertPublisherWithProducer(producer sarama.SyncProducer, topic string, log zerolog.Logger) *AlertPublisher {
	return &AlertPublisher{producer: producer, topic: topic, log: log}
}

// PublishSafetyAlert serializa el evento a JSON. La clave es producto:tienda para que las alertas
// de un mismo par caigan en la misma partición y conserven el orden.
func (p *AlertPublisher) PublishSafetyAlert(ctx context.Context, event inventory.SafetyAlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializar alerta: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ItemID + ":" + event.LocationID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeSafetyAlert)},
			{Key: []byte("event_id"), Value: []byte(event.MovementID)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("enviar alerta a kafka: %w", err)
	}
	p.log.Debug().
		Str("topic", p.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("movement_id", event.MovementID).
		Msg("alerta de stock publicada")
	return nil
}

// Close cierra el productor.
func (p *AlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// LogPublisher registra las alertas en el log cuando no hay brokers configurados.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador de solo log.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// PublishSafetyAlert escribe la alerta como evento de log de nivel warn.
func (p *LogPublisher) PublishSafetyAlert(_ context.Context, event inventory.SafetyAlertEvent) error {
	p.log.Warn().
		Str("event_type", EventTypeSafetyAlert).
		Str("movement_id", event.MovementID).
		Str("item_id", event.ItemID).
		Str("location_id", event.LocationID).
		Int64("quantity", event.Quantity).
		Int64("safety_threshold", event.SafetyThreshold).
		Msg("stock bajo el umbral de seguridad")
	return nil
}
