package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"radius-admin/internal/client"
	"radius-admin/internal/models"
)

// KafkaSink forwards audit records to the SIEM ingestion topic. Records
// key by actor so one admin's trail stays ordered within a partition.
type KafkaSink struct {
	producer *client.KafkaProducer
	topic    string
}

func NewKafkaSink(producer *client.KafkaProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Write(ctx context.Context, rec *models.AuditRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	headers := map[string]string{
		"action": string(rec.Action),
		"status": string(rec.Status),
	}
	return s.producer.ProduceMessage(ctx, s.topic, []byte(rec.Actor), value, headers)
}
