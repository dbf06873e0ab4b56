package network

import (
	"context"

	"bossfight/logging"
)

const (
	// EventSubscriberConnected is emitted when a push subscriber attaches.
	EventSubscriberConnected logging.EventType = "network.subscriber_connected"
	// EventSubscriberDropped is emitted when a push subscriber goes away.
	EventSubscriberDropped logging.EventType = "network.subscriber_dropped"
)

// SubscriberPayload captures connection details for a push subscriber.
type SubscriberPayload struct {
	RemoteAddr  string `json:"remoteAddr,omitempty"`
	Subscribers int    `json:"subscribers"`
	Reason      string `json:"reason,omitempty"`
}

// SubscriberConnected publishes a debug event for a new subscriber.
func SubscriberConnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SubscriberPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSubscriberConnected,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// SubscriberDropped publishes an info event when a subscriber is removed.
func SubscriberDropped(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SubscriberPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSubscriberDropped,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
