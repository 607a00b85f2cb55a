// Package natsbus connects the progression service to NATS JetStream: progress events
// go out on flog.progress.events.<event>, auction results come in on auction.finished.>.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

const (
	EventsStream           = "FLOG_PROGRESS_EVENTS"
	AuctionsStream         = "FLOG_AUCTIONS"
	AuctionFinishedSubject = "auction.finished.>"
	SettlementConsumer     = "progress-settlement"
)

// MessageHandler processes one message. Errors wrapping a permanent error are acked
// and dropped; any other error naks the message for redelivery.
type MessageHandler func(ctx context.Context, data []byte) error

type Bus struct {
	nc        *nats.Conn
	js        jetstream.JetStream
	consumers []jetstream.ConsumeContext
}

func Connect(url string) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	return &Bus{nc: nc, js: js}, nil
}

// EnsureStreams creates the streams this service publishes to and consumes from.
func (b *Bus) EnsureStreams(ctx context.Context) error {
	streams := []jetstream.StreamConfig{
		{
			Name:      EventsStream,
			Subjects:  []string{events.Topic(">")},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    72 * time.Hour,
			Replicas:  1,
		},
		{
			Name:      AuctionsStream,
			Subjects:  []string{AuctionFinishedSubject},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    72 * time.Hour,
			Replicas:  1,
		},
	}

	for _, cfg := range streams {
		if _, err := b.js.CreateOrUpdateStream(ctx, cfg); err != nil {
			return fmt.Errorf("create stream %s: %w", cfg.Name, err)
		}
		log.Info().Str("stream", cfg.Name).Msg("Ensured stream")
	}
	return nil
}

func (b *Bus) Name() string {
	return "nats"
}

// Send publishes the envelope and waits for the JetStream ack.
func (b *Bus) Send(ctx context.Context, env events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = b.js.Publish(ctx, env.GetEventTopicName(), data)
	return err
}

// Consume attaches a durable consumer with explicit acks and bounded redelivery.
func (b *Bus) Consume(ctx context.Context, stream, subject, durable string, permanent error, handler MessageHandler) error {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		Durable:       durable,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", durable, err)
	}

	consumeContext, err := consumer.Consume(func(msg jetstream.Msg) {
		err := handler(ctx, msg.Data())
		switch {
		case err == nil:
			msg.Ack()
		case permanent != nil && errors.Is(err, permanent):
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("Dropping message that cannot be processed")
			msg.Term()
		default:
			log.Warn().Err(err).Str("subject", msg.Subject()).Msg("Message processing failed, will be redelivered")
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", durable, err)
	}

	b.consumers = append(b.consumers, consumeContext)
	log.Info().Str("subject", subject).Str("consumer", durable).Msg("Subscribed")
	return nil
}

func (b *Bus) Close() {
	for _, cc := range b.consumers {
		cc.Stop()
	}
	b.nc.Close()
}
