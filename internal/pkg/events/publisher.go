// Package events carries progression notifications to the bus and connected clients.
// Delivery is fire-and-forget: failures are logged and counted, never returned.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/metrics"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/rs/zerolog/log"
)

const topicPrefix = "flog.progress.events."

// Topic is the bus topic or subject an event is published on.
func Topic(eventName string) string {
	return topicPrefix + eventName
}

type Publisher interface {
	Publish(ctx context.Context, eventName string, payload any)
}

// Envelope wraps every published payload.
type Envelope struct {
	Id         string    `json:"id"`
	Event      string    `json:"event"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

func NewEnvelope(eventName string, payload any) Envelope {
	env := Envelope{
		Id:         uuid.New().String(),
		Event:      eventName,
		OccurredAt: model.Now(),
		Payload:    payload,
	}
	if t, ok := payload.(Targeted); ok {
		env.Username = t.TargetUser()
	}
	return env
}

func (e Envelope) GetEventTopicName() string {
	return Topic(e.Event)
}

// Sink delivers an envelope to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, env Envelope) error
}

// Fanout hands each event to every sink.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Add(sink Sink) {
	f.sinks = append(f.sinks, sink)
}

func (f *Fanout) Publish(ctx context.Context, eventName string, payload any) {
	env := NewEnvelope(eventName, payload)
	for _, sink := range f.sinks {
		if err := sink.Send(ctx, env); err != nil {
			metrics.EventPublishErrors.WithLabelValues(eventName, sink.Name()).Inc()
			log.Warn().Err(err).Str("event", eventName).Str("sink", sink.Name()).Str("eventId", env.Id).Msg("Failed to publish event")
			continue
		}
		metrics.EventsPublished.WithLabelValues(eventName, sink.Name()).Inc()
	}
}

// LogSink only writes the event to the log.
type LogSink struct{}

func (LogSink) Name() string {
	return "log"
}

func (LogSink) Send(_ context.Context, env Envelope) error {
	log.Info().Str("event", env.Event).Str("eventId", env.Id).Str("username", env.Username).Interface("payload", env.Payload).Msg("Progress event")
	return nil
}
