// Package ws pushes game snapshots to websocket subscribers.
package ws

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"bossfight/internal/telemetry"
	"bossfight/logging"
	lognetwork "bossfight/logging/network"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Renderer encodes the payload for one locale.
type Renderer func(locale string) ([]byte, error)

// subscriber owns one connection. Messages go through send and are written
// by the subscriber's own write loop, so a slow client never blocks a
// broadcast.
type subscriber struct {
	id     string
	locale string
	remote string
	conn   *websocket.Conn
	mu     sync.Mutex

	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

func (s *subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// enqueue reports false when the queue is full.
func (s *subscriber) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// WriteMessage serializes writes; gorilla connections allow one writer.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

type HubConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
}

// Hub tracks live subscribers. All methods are safe for concurrent use.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	logger      telemetry.Logger
	publisher   logging.Publisher
	metrics     telemetry.Metrics
}

func NewHub(cfg HubConfig) *Hub {
	hub := &Hub{
		subscribers: make(map[string]*subscriber),
		logger:      cfg.Logger,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
	}
	if hub.logger == nil {
		hub.logger = telemetry.LoggerFunc(nil)
	}
	if hub.publisher == nil {
		hub.publisher = logging.NopPublisher()
	}
	if hub.metrics == nil {
		hub.metrics = telemetry.NopMetrics()
	}
	return hub
}

// Subscribe registers conn and starts its write loop. A non-nil initial
// payload is queued ahead of any broadcast.
func (h *Hub) Subscribe(ctx context.Context, conn *websocket.Conn, locale string, initial []byte) *subscriber {
	sub := &subscriber{
		id:     fmt.Sprintf("sub-%d", h.nextID.Add(1)),
		locale: locale,
		remote: conn.RemoteAddr().String(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	if initial != nil {
		sub.send <- initial
	}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	count := len(h.subscribers)
	h.metrics.Store(telemetry.KeySubscribers, uint64(count))
	h.mu.Unlock()
	go h.writeLoop(sub)

	lognetwork.SubscriberConnected(ctx, h.publisher, subscriberRef(sub.id), lognetwork.SubscriberPayload{
		RemoteAddr:  sub.remote,
		Subscribers: count,
	})
	return sub
}

// Unsubscribe closes and forgets the subscriber. Unknown ids are ignored.
func (h *Hub) Unsubscribe(ctx context.Context, id, reason string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.metrics.Store(telemetry.KeySubscribers, uint64(count))
	h.mu.Unlock()
	if !ok {
		return
	}

	sub.stop()
	_ = sub.conn.Close()
	lognetwork.SubscriberDropped(ctx, h.publisher, subscriberRef(id), lognetwork.SubscriberPayload{
		RemoteAddr:  sub.remote,
		Subscribers: count,
		Reason:      reason,
	})
}

func (h *Hub) writeLoop(sub *subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case data := <-sub.send:
			if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
				h.Unsubscribe(context.Background(), sub.id, fmt.Sprintf("write failed: %v", err))
				return
			}
		}
	}
}

// Broadcast renders the payload once per locale and queues it for every
// subscriber without waiting for the writes. Subscribers whose queue is full
// are dropped. It returns the number of queued deliveries.
func (h *Hub) Broadcast(ctx context.Context, render Renderer) int {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	rendered := make(map[string][]byte)
	delivered := 0
	for _, sub := range targets {
		data, ok := rendered[sub.locale]
		if !ok {
			var err error
			data, err = render(sub.locale)
			if err != nil {
				h.logger.Printf("failed to render push payload for locale %q: %v", sub.locale, err)
				continue
			}
			rendered[sub.locale] = data
		}
		if !sub.enqueue(data) {
			h.Unsubscribe(ctx, sub.id, "send queue full")
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close(ctx context.Context) {
	h.mu.Lock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	for _, id := range ids {
		h.Unsubscribe(ctx, id, "server shutdown")
	}
}

func subscriberRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindSubscriber}
}
