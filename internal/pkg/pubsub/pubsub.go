package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
)

var ctx context.Context
var cancel context.CancelFunc
var client *pubsub.Client

func InitPubSub(projectID string) error {
	if projectID == "" {
		return errors.New("pubsub: missing GOOGLE_PROJECT_ID")
	}
	ctx, cancel = context.WithCancel(context.Background())
	var err error
	client, err = pubsub.NewClient(ctx, projectID)
	if err != nil {
		cancel()
		return fmt.Errorf("pubsub: init client for %s: %w", projectID, err)
	}
	log.Info().Str("projectId", projectID).Msg("Successful pubsub init")
	return nil
}

// Subscribe blocks receiving messages until CloseClient is called.
func Subscribe(subscriptionHandler SubscriptionHandler) {
	sub := client.Subscription(subscriptionHandler.SubscriptionId)
	err := sub.Receive(ctx, subscriptionHandler.Handler)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Subscriber error for sub id %s", subscriptionHandler.SubscriptionId))
	}
}

func Publish(message Publishable) {
	t := getTopic(message.GetEventTopicName())
	if t == nil {
		return
	}
	defer t.Stop()

	result := t.Publish(ctx, &pubsub.Message{Data: encodeMessage(message)})

	go func(res *pubsub.PublishResult) {
		_, err := res.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg(fmt.Sprintf("Failed to publish message for %s", message.GetEventTopicName()))
			return
		}
	}(result)
}

func CloseClient() {
	if client == nil {
		return
	}
	cancel()
	client.Close()
}

func getTopic(topicName string) *pubsub.Topic {
	t := client.Topic(topicName)
	exists, err := t.Exists(ctx)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Cant check topic %s", topicName))
		return nil
	}
	if !exists {
		log.Info().Msg(fmt.Sprintf("Topic %s does not exist. Creating new", topicName))
		nt, err := client.CreateTopic(ctx, topicName)
		if err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Cant create topic %s", topicName))
			return nil
		}
		return nt
	}
	return t
}

func encodeMessage(message any) []byte {
	switch m := message.(type) {
	case string:
		return []byte(m)

	default:
		bytes, _ := json.Marshal(message)
		return bytes
	}
}
