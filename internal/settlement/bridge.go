package settlement

import (
	"context"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

// ErrMalformedEvent marks payloads that can never be decoded. They are dropped, not retried.
var ErrMalformedEvent = errors.New("settlement: malformed auction finished event")

// Bridge turns auction-finished messages from the bus into settlements.
type Bridge struct {
	coordinator *Coordinator
}

func NewBridge(coordinator *Coordinator) *Bridge {
	return &Bridge{coordinator: coordinator}
}

// HandleAuctionFinished decodes and settles one message.
func (b *Bridge) HandleAuctionFinished(ctx context.Context, data []byte) error {
	event, err := utils.JsonDecodeByteStream[model.AuctionFinished](data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.AuctionId == "" {
		return fmt.Errorf("%w: missing auctionId", ErrMalformedEvent)
	}

	_, err = b.coordinator.SettleAuction(ctx, event.AuctionId, event.SettledWinner())
	return err
}

// HandlePubSub acks settled and malformed messages and nacks the rest for redelivery.
func (b *Bridge) HandlePubSub(ctx context.Context, message *gcppubsub.Message) {
	err := b.HandleAuctionFinished(ctx, message.Data)
	switch {
	case err == nil:
		message.Ack()
	case errors.Is(err, ErrMalformedEvent):
		log.Error().Err(err).Str("messageId", message.ID).Msg("Dropping undecodable auction finished message")
		message.Ack()
	default:
		log.Warn().Err(err).Str("messageId", message.ID).Msg("Settlement failed, message will be redelivered")
		message.Nack()
	}
}
