// Package kafka publishes replication status records to a topic, one message
// per record keyed by storage group so a consumer sees each group's history
// in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal/collector"
)

const flushTimeoutMs = 10000

type Option func(*Preserver)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = logger
	}
}

type Preserver struct {
	config   kafka.ConfigMap
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

// New parses a kafka URI of the form kafka://broker:9092/topic?acks=all.
// Query parameters are passed through to the producer config.
func New(uri *url.URL, opts ...Option) (*Preserver, error) {
	topic := strings.TrimPrefix(uri.Path, "/")
	if topic == "" {
		return nil, fmt.Errorf("topic must be specified in URL path")
	}

	brokers := uri.Host
	if uri.Port() != "" && !strings.Contains(brokers, ":") {
		brokers = fmt.Sprintf("%s:%s", uri.Hostname(), uri.Port())
	}

	config := kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"client.id":         "rdfmon-collector",

		"acks":                                  "1",
		"retries":                               "3",
		"batch.size":                            "16384",
		"linger.ms":                             "5",
		"compression.type":                      "snappy",
		"max.in.flight.requests.per.connection": "5",

		"request.timeout.ms":  "5000",
		"delivery.timeout.ms": "10000",
	}

	for key, values := range uri.Query() {
		if len(values) > 0 {
			config[key] = values[0]
		}
	}

	p := &Preserver{
		topic:  topic,
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func (p *Preserver) Connect(ctx context.Context) error {
	producer, err := kafka.NewProducer(&p.config)
	if err != nil {
		return err
	}
	p.producer = producer

	go func() {
		defer p.logger.Info("producer event loop closed")

		for e := range producer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					p.logger.Error("delivery failed", zap.Error(ev.TopicPartition.Error))
				} else {
					p.logger.Debug("message delivered",
						zap.String("topic", *ev.TopicPartition.Topic),
						zap.Int32("partition", ev.TopicPartition.Partition),
						zap.Int64("offset", int64(ev.TopicPartition.Offset)))
				}
			case kafka.Error:
				p.logger.Error("producer error", zap.Error(ev))
			}
		}
	}()

	p.logger.Info("kafka sink connected",
		zap.String("topic", p.topic),
	)
	return nil
}

// Preserve produces one message per record and flushes before returning, so
// a reported success means the broker accepted the run's messages.
func (p *Preserver) Preserve(ctx context.Context, run *collector.Run) error {
	if p.producer == nil {
		return fmt.Errorf("kafka: not connected")
	}

	var errs []error
	var produced int
	for _, record := range run.Records() {
		row, err := record.Row()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		payload := row.Map()
		payload["run_id"] = run.ID
		value, err := json.Marshal(payload)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		message := &kafka.Message{
			TopicPartition: kafka.TopicPartition{
				Topic:     &p.topic,
				Partition: kafka.PartitionAny,
			},
			Key:   []byte(record.StorageGroup),
			Value: value,
		}

		if err := p.producer.Produce(message, nil); err != nil {
			errs = append(errs, fmt.Errorf("produce %s: %w", record.StorageGroup, err))
			continue
		}
		produced++
	}

	if remaining := p.producer.Flush(flushTimeoutMs); remaining > 0 {
		errs = append(errs, fmt.Errorf("kafka: %d messages still queued after flush", remaining))
	}

	p.logger.Info("preserved run to kafka",
		zap.String("run_id", run.ID),
		zap.String("topic", p.topic),
		zap.Int("produced", produced),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func (p *Preserver) Close(ctx context.Context) error {
	if p.producer != nil {
		p.producer.Flush(5000)
		p.producer.Close()
	}
	return nil
}
