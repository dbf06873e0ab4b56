package ws

import (
	"context"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"bossfight/internal/telemetry"
)

// SnapshotFunc renders the first message a new subscriber receives, and
// reports the locale later broadcasts should use for it.
type SnapshotFunc func(r *nethttp.Request) (locale string, data []byte, err error)

type HandlerConfig struct {
	Logger   telemetry.Logger
	Snapshot SnapshotFunc
}

// Handler upgrades requests and keeps each connection registered with the
// hub until the client goes away.
type Handler struct {
	hub      *Hub
	logger   telemetry.Logger
	snapshot SnapshotFunc
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		snapshot: cfg.Snapshot,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	var (
		locale string
		data   []byte
	)
	if h.snapshot != nil {
		var err error
		locale, data, err = h.snapshot(r)
		if err != nil {
			h.logger.Printf("failed to render initial snapshot: %v", err)
			nethttp.Error(w, "snapshot unavailable", nethttp.StatusInternalServerError)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	// The request context ends with the handler; subscriber events outlive it.
	ctx := context.WithoutCancel(r.Context())
	sub := h.hub.Subscribe(ctx, conn, locale, data)

	// Clients never send anything meaningful; reading surfaces the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			reason := "client closed"
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				reason = err.Error()
			}
			h.hub.Unsubscribe(ctx, sub.id, reason)
			return
		}
	}
}
