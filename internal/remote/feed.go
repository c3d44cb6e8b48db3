package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
)

// KafkaFeed implements Feed over a Kafka topic carrying one JSON Document
// per changed report, keyed by report id. The hazard service publishes to
// the topic on every remote write.
type KafkaFeed struct {
	brokers []string
	topic   string
	groupID string
	logger  *slog.Logger
}

// NewKafkaFeed creates a change-notification feed reader.
// groupID should be unique per device so every device sees every change.
func NewKafkaFeed(brokers []string, topic, groupID string, logger *slog.Logger) *KafkaFeed {
	return &KafkaFeed{brokers: brokers, topic: topic, groupID: groupID, logger: logger}
}

// Subscribe starts consuming change notifications. Delivery runs until
// Unsubscribe is called or ctx ends; either way the events channel is
// closed and the underlying Kafka reader released exactly once.
func (f *KafkaFeed) Subscribe(ctx context.Context) (*Subscription, error) {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     f.brokers,
		Topic:       f.topic,
		GroupID:     f.groupID,
		StartOffset: kafkago.LastOffset,
	})

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan Document)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			if err := reader.Close(); err != nil {
				f.logger.Warn("feed reader close", "error", err)
			}
		})
	}

	go func() {
		defer close(events)
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					f.logger.Warn("feed read failed", "error", err)
				}
				return
			}

			var doc Document
			if err := json.Unmarshal(msg.Value, &doc); err != nil {
				f.logger.Warn("feed message malformed", "key", string(msg.Key), "error", err)
				continue
			}

			select {
			case events <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return NewSubscription(events, stop), nil
}
