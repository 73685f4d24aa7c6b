package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// defaultBatchTimeout keeps event publishing low-latency; domain events
// are few and small, so large batches buy nothing.
const defaultBatchTimeout = 10 * time.Millisecond

// Message is one record to publish. Headers become Kafka record headers.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer publishes messages through per-topic kafka-go writers,
// created lazily on first use.
type Producer struct {
	mu           sync.Mutex
	writers      map[string]*kafkago.Writer
	brokers      []string
	batchTimeout time.Duration
}

// NewProducer creates a producer for the configured brokers.
func NewProducer(cfg Config) *Producer {
	timeout := cfg.BatchTimeout
	if timeout <= 0 {
		timeout = defaultBatchTimeout
	}
	return &Producer{
		writers:      make(map[string]*kafkago.Writer),
		brokers:      cfg.Brokers,
		batchTimeout: timeout,
	}
}

// Publish writes messages to a topic, waiting for full-ISR acks.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	w := p.writerFor(topic)

	kafkaMessages := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		km := kafkago.Message{
			Key:   msg.Key,
			Value: msg.Value,
		}
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafkago.Header{
				Key:   k,
				Value: []byte(v),
			})
		}
		kafkaMessages = append(kafkaMessages, km)
	}

	if err := w.WriteMessages(ctx, kafkaMessages...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close closes every writer, returning the first error encountered.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]*kafkago.Writer)
	return firstErr
}

func (p *Producer) writerFor(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: p.batchTimeout,
		RequiredAcks: kafkago.RequireAll,
	}
	p.writers[topic] = w
	return w
}
