package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/events"
	"github.com/rs/zerolog/log"
)

var singletonMutex sync.Mutex

// writeWait bounds a single push; a listener that cannot take it in time is dropped.
const writeWait = 5 * time.Second

type listener struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMutex sync.Mutex
}

type WebSocketNotificationHub struct {
	registrationMutex sync.RWMutex
	listeners         map[string][]*listener
	writeWait         time.Duration
}

// UserTopic is the topic a user's progress notifications are pushed on.
func UserTopic(username string) string {
	return "progress/" + username
}

func (hub *WebSocketNotificationHub) RegisterListener(topic string, conn *websocket.Conn) {
	hub.registrationMutex.Lock()
	defer hub.registrationMutex.Unlock()

	hub.listeners[topic] = append(hub.listeners[topic], &listener{conn: conn})
}

func (hub *WebSocketNotificationHub) UnregisterListener(topic string, conn *websocket.Conn) {
	hub.registrationMutex.Lock()
	defer hub.registrationMutex.Unlock()

	remaining := hub.listeners[topic][:0]
	for _, l := range hub.listeners[topic] {
		if l.conn != conn {
			remaining = append(remaining, l)
		}
	}

	if len(remaining) == 0 {
		delete(hub.listeners, topic)
		return
	}
	hub.listeners[topic] = remaining
}

func (hub *WebSocketNotificationHub) ListenerCount(topic string) int {
	hub.registrationMutex.RLock()
	defer hub.registrationMutex.RUnlock()

	return len(hub.listeners[topic])
}

// Publish pushes event to every listener on the topic. Listeners whose write fails or
// times out are unregistered and closed.
func (hub *WebSocketNotificationHub) Publish(targetTopic string, event any) {
	hub.registrationMutex.RLock()
	listeners := append([]*listener{}, hub.listeners[targetTopic]...)
	hub.registrationMutex.RUnlock()

	for _, l := range listeners {
		if err := hub.write(l, event); err != nil {
			log.Warn().Err(err).Str("topic", targetTopic).Msg("Failed to push ws notification, dropping listener")
			hub.UnregisterListener(targetTopic, l.conn)
			l.conn.Close()
		}
	}
}

func (hub *WebSocketNotificationHub) write(l *listener, event any) error {
	l.writeMutex.Lock()
	defer l.writeMutex.Unlock()

	if err := l.conn.SetWriteDeadline(time.Now().Add(hub.writeWait)); err != nil {
		return err
	}
	return l.conn.WriteJSON(event)
}

func (hub *WebSocketNotificationHub) Name() string {
	return "ws"
}

// Send pushes user-targeted events to that user's open connections.
func (hub *WebSocketNotificationHub) Send(_ context.Context, env events.Envelope) error {
	if env.Username == "" {
		return nil
	}
	hub.Publish(UserTopic(env.Username), env)
	return nil
}

var notificationHubSingleton *WebSocketNotificationHub

func NewNotificationHub() *WebSocketNotificationHub {
	singletonMutex.Lock()
	defer singletonMutex.Unlock()

	if notificationHubSingleton == nil {
		notificationHubSingleton = &WebSocketNotificationHub{
			listeners: make(map[string][]*listener),
			writeWait: writeWait,
		}
	}

	return notificationHubSingleton
}
