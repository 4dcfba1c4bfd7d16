package scanlog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"kycgate/internal/platform/config"
)

// kafkaPayload is the JSON structure published to the scan-events topic.
type kafkaPayload struct {
	CaseID        string `json:"caseId"`
	ApplicantName string `json:"applicantName"`
	State         string `json:"state"`
	ExpiryDate    string `json:"expiryDate"`
	ScannedAt     string `json:"scannedAt"`
}

// KafkaPublisher produces scan records to Kafka for downstream compliance
// consumers. Publishing is fire-and-forget: produce errors are logged, never
// surfaced to the verification flow.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the configured brokers. Returns nil if no
// brokers are configured (Kafka fan-out disabled).
func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish produces one scan record. Errors are reported asynchronously via
// the produce callback and only logged.
func (p *KafkaPublisher) Publish(ctx context.Context, rec Record) error {
	payload := kafkaPayload{
		CaseID:        rec.CaseID,
		ApplicantName: rec.ApplicantName,
		State:         rec.State,
		ExpiryDate:    rec.ExpiryDate.Format(time.RFC3339Nano),
		ScannedAt:     rec.ScannedAt.Format(time.RFC3339Nano),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Key:   []byte(rec.CaseID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("failed to publish scan event",
				"case_id", rec.CaseID,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes pending records and shuts down the client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
