package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"shopcart/internal/cart"
)

// Conf publishes cart changes to a Kafka topic.
type Conf struct {
	client *kgo.Client
	topic  string
}

func NewConf(brokers []string, topic string) (*Conf, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if topic == "" {
		topic = Topic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &Conf{client: client, topic: topic}, nil
}

// Publish produces the change synchronously and returns the broker's verdict.
func (k *Conf) Publish(ctx context.Context, change cart.Change) error {
	event := NewCartChangedEvent(change)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cart event: %w", err)
	}
	record := &kgo.Record{Topic: k.topic, Key: event.key(), Value: value}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce cart event: %w", err)
	}
	return nil
}

func (k *Conf) Close() {
	k.client.Close()
}
