package event

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Notifier publishes UploadEvents to a single Kafka topic through a shared
// sync producer. If the broker cannot be reached during startup the Notifier
// is permanently disabled and every Publish becomes a logged no-op; it does
// not reconnect on its own.
type Notifier struct {
	producer sarama.SyncProducer // nil when disabled
	topic    string
	log      zerolog.Logger
}

// NewNotifier connects to the broker with a fixed retry budget (not
// exponential: the common case is the broker starting a few seconds after us).
// A Notifier is always returned; inspect Enabled to see which state it is in.
func NewNotifier(brokers []string, topic string, logger zerolog.Logger) *Notifier {
	n := &Notifier{
		topic: topic,
		log:   logger.With().Str("component", "notifier").Logger(),
	}

	cfg := producerConfig()
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		producer, err := sarama.NewSyncProducer(brokers, cfg)
		if err == nil {
			n.producer = producer
			n.log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("connected to broker")
			return n
		}
		n.log.Warn().Err(err).Int("attempt", attempt).Int("max", connectAttempts).Msg("broker connect failed")
		if attempt < connectAttempts {
			time.Sleep(connectBackoff)
		}
	}

	n.log.Error().Msg("broker unreachable, notifier disabled: upload events will not be published")
	return n
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = "filestore-producer"
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 10
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	return cfg
}

// Enabled reports whether the notifier holds a live producer.
func (n *Notifier) Enabled() bool {
	return n.producer != nil
}

// Publish sends the event to the topic. It never returns an error: a disabled
// notifier skips, a failed send is logged and swallowed. The returned status
// exists for logging and tests, not for control flow.
func (n *Notifier) Publish(ev UploadEvent) PublishStatus {
	if n.producer == nil {
		n.log.Debug().Str("key", ev.Key).Msg("notifier disabled, skipping event")
		return StatusSkipped
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		n.log.Error().Err(err).Str("key", ev.Key).Msg("encode upload event")
		return StatusFailed
	}

	partition, offset, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		n.log.Error().Err(err).Str("key", ev.Key).Msg("publish upload event")
		return StatusFailed
	}

	n.log.Debug().Str("key", ev.Key).Int32("partition", partition).Int64("offset", offset).Msg("published upload event")
	return StatusDelivered
}

// Close disconnects the producer. Safe on a disabled notifier.
func (n *Notifier) Close() {
	if n.producer == nil {
		return
	}
	if err := n.producer.Close(); err != nil {
		n.log.Warn().Err(err).Msg("close producer")
	}
}
