package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
)

type SubscriptionHandler struct {
	SubscriptionId string
	Handler        func(ctx context.Context, message *pubsub.Message)
}

// Publishable is anything that knows which topic it belongs on.
type Publishable interface {
	GetEventTopicName() string
}
