package repository

import (
	"context"

	"KabuScan/internal/domain/models"
	xkafka "KabuScan/pkg/kafka"
)

// KafkaReportPublisher pushes finished scan reports to a Kafka topic for
// downstream consumers (alerting, archival). Publishing is best effort; the
// scan itself never fails on a publish error.
type KafkaReportPublisher struct {
	producer *xkafka.Producer
	topic    string
}

func NewKafkaReportPublisher(producer *xkafka.Producer, topic string) *KafkaReportPublisher {
	if topic == "" {
		topic = "kabuscan.reports"
	}
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) Publish(ctx context.Context, report *models.ScanReport) error {
	return p.producer.Publish(ctx, p.topic, []byte(report.Outcome), report)
}

func (p *KafkaReportPublisher) Close() error {
	return p.producer.Close()
}
