// Command consumer subscribes to the upload-event topic and logs every event
// it receives. It is the reference subscriber for the side channel: delivery
// is best-effort, so anything that must not be lost does not belong here.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jonfjz/filestore/internal/config"
	"github.com/jonfjz/filestore/internal/event"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "consumer").Logger()

	scfg := sarama.NewConfig()
	scfg.ClientID = "filestore-consumer"
	scfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	scfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, scfg)
	if err != nil {
		logger.Fatal().Err(err).Strs("brokers", cfg.KafkaBrokers).Msg("create consumer group")
	}
	defer group.Close()

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info().Msg("shutting down")
		cancel()
	}()

	handler := &eventLogger{log: logger}
	logger.Info().Str("topic", cfg.KafkaTopic).Str("group", cfg.KafkaGroupID).Msg("consuming upload events")

	// Consume returns on every rebalance; loop until cancelled.
	for {
		if err := group.Consume(ctx, []string{cfg.KafkaTopic}, handler); err != nil {
			logger.Error().Err(err).Msg("consume session failed")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// eventLogger implements sarama.ConsumerGroupHandler.
type eventLogger struct {
	log zerolog.Logger
}

func (e *eventLogger) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (e *eventLogger) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (e *eventLogger) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var ev event.UploadEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			e.log.Error().Err(err).Int64("offset", msg.Offset).Msg("malformed upload event")
			session.MarkMessage(msg, "")
			continue
		}

		e.log.Info().
			Str("entryId", ev.EntryID).
			Str("assetId", ev.AssetID).
			Str("key", ev.Key).
			Str("originalname", ev.OriginalName).
			Str("uploadedAt", ev.UploadedAt).
			Msg("consumed file event")

		session.MarkMessage(msg, "")
	}
	return nil
}
