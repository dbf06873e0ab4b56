package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	nethttp "net/http"
	"net/http/pprof"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/language"

	"bossfight/internal/catalog"
	"bossfight/internal/game"
	"bossfight/internal/i18n"
	"bossfight/internal/net/ws"
	"bossfight/internal/observability"
	"bossfight/internal/store"
	"bossfight/internal/telemetry"
	"bossfight/logging"
)

const maxBodyBytes = 1 << 16

type HTTPHandlerConfig struct {
	Catalog       *catalog.Resolver
	Locales       *i18n.Resolver
	Hub           *ws.Hub
	MediaDir      string
	LevelUpVideo  string
	Pages         fs.FS
	Logger        telemetry.Logger
	Counters      *telemetry.Counters
	LogStats      func() logging.RouterStats
	Observability observability.Config
}

type handler struct {
	svc     *game.Service
	cfg     HTTPHandlerConfig
	logger  telemetry.Logger
	locales *i18n.Resolver
}

func NewHTTPHandler(svc *game.Service, cfg HTTPHandlerConfig) nethttp.Handler {
	h := &handler{svc: svc, cfg: cfg, logger: cfg.Logger, locales: cfg.Locales}
	if h.logger == nil {
		h.logger = telemetry.LoggerFunc(nil)
	}
	if h.locales == nil {
		h.locales = i18n.NewResolver(language.English)
	}
	if h.cfg.LevelUpVideo == "" {
		h.cfg.LevelUpVideo = "/media/next_level.mp4"
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", h.diagnostics)

	mux.Handle("/api/game", h.traced("game.state", nethttp.MethodGet, h.gameState))
	mux.Handle("/api/award-points", h.traced("game.award", nethttp.MethodPost, h.awardPoints))
	mux.Handle("/api/level-up", h.traced("game.advance", nethttp.MethodPost, h.advance))
	mux.Handle("/api/evolve", h.traced("game.advance", nethttp.MethodPost, h.advance))
	mux.Handle("/api/reset", h.traced("game.reset", nethttp.MethodPost, h.reset))
	mux.Handle("/api/catalog", h.traced("catalog.list", nethttp.MethodGet, h.catalogList))
	mux.Handle("/api/catalog/schema", h.traced("catalog.schema", nethttp.MethodGet, h.catalogSchema))

	mux.HandleFunc("/media/", h.media)

	if cfg.Hub != nil {
		wsHandler := ws.NewHandler(cfg.Hub, ws.HandlerConfig{
			Logger:   h.logger,
			Snapshot: h.pushSnapshot,
		})
		mux.HandleFunc("/ws", wsHandler.Handle)
	}

	if cfg.Observability.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	if cfg.Pages != nil {
		mux.Handle("/student", h.page("student.html"))
		mux.Handle("/teacher", h.page("teacher.html"))
		mux.Handle("/{$}", h.page("index.html"))
	}

	return h.recoverPanics(mux)
}

func (h *handler) recoverPanics(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == nethttp.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeError(w, nethttp.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// traced enforces method, starts a span, and attaches a trace id for the
// logging router.
func (h *handler) traced(name, method string, fn nethttp.HandlerFunc) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, nethttp.StatusMethodNotAllowed, "method not allowed")
			return
		}
		ctx, span := observability.Tracer().Start(r.Context(), name)
		defer span.End()
		span.SetAttributes(attribute.String("http.route", r.URL.Path))
		ctx = logging.ContextWithTraceID(ctx, observability.TraceID(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		fn(rec, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= nethttp.StatusInternalServerError {
			span.SetStatus(codes.Error, nethttp.StatusText(rec.status))
		}
	})
}

type statusRecorder struct {
	nethttp.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *handler) language(w nethttp.ResponseWriter, r *nethttp.Request) language.Tag {
	tag, persist := h.locales.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return tag
}

func (h *handler) gameState(w nethttp.ResponseWriter, r *nethttp.Request) {
	snapshot, err := h.svc.State(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, newGamePayload(snapshot, h.language(w, r)))
}

func (h *handler) awardPoints(w nethttp.ResponseWriter, r *nethttp.Request) {
	amount, err := decodeAward(r)
	if err != nil {
		h.svc.RejectAward(r.Context(), err)
		h.fail(w, err)
		return
	}
	result, err := h.svc.Award(r.Context(), amount)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, newAwardPayload(result, h.language(w, r)))
}

// decodeAward reads {"amount": ...}. An empty body or missing amount counts
// as zero points.
func decodeAward(r *nethttp.Request) (int64, error) {
	if r.Body == nil {
		return 0, nil
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("%w: read body: %v", game.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return 0, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var body map[string]any
	if err := decoder.Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: invalid payload", game.ErrInvalidInput)
	}
	value, ok := body["amount"]
	if !ok {
		return 0, nil
	}
	return game.ParseAward(value)
}

func (h *handler) advance(w nethttp.ResponseWriter, r *nethttp.Request) {
	result, err := h.svc.Advance(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, newAdvancePayload(result, h.language(w, r), h.cfg.LevelUpVideo))
}

func (h *handler) reset(w nethttp.ResponseWriter, r *nethttp.Request) {
	if _, err := h.svc.Reset(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, resetPayload{Success: true, Message: "Game reset"})
}

func (h *handler) catalogList(w nethttp.ResponseWriter, r *nethttp.Request) {
	engine := h.svc.Engine()
	current := catalog.Default()
	if h.cfg.Catalog != nil {
		current = h.cfg.Catalog.Current()
	} else if engine.Catalog != nil {
		current = engine.Catalog()
	}
	writeJSON(w, nethttp.StatusOK, catalogPayload{
		Policy: engine.Policy.String(),
		Stages: current.Stages(),
	})
}

func (h *handler) catalogSchema(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, catalog.Schema())
}

func (h *handler) pushSnapshot(r *nethttp.Request) (string, []byte, error) {
	tag, _ := h.locales.ResolveTag(r)
	snapshot, err := h.svc.State(r.Context())
	if err != nil {
		return "", nil, err
	}
	data, err := json.Marshal(newGamePayload(snapshot, tag))
	return tag.String(), data, err
}

func (h *handler) diagnostics(w nethttp.ResponseWriter, r *nethttp.Request) {
	var version uint64
	if snapshot, err := h.svc.State(r.Context()); err == nil {
		version = snapshot.State.Version
	}
	subscribers := 0
	if h.cfg.Hub != nil {
		subscribers = h.cfg.Hub.Count()
	}
	var logStats any
	if h.cfg.LogStats != nil {
		logStats = h.cfg.LogStats()
	}

	payload := struct {
		Status      string            `json:"status"`
		ServerTime  int64             `json:"serverTime"`
		Version     uint64            `json:"version"`
		Subscribers int               `json:"subscribers"`
		Telemetry   map[string]uint64 `json:"telemetry"`
		Logging     any               `json:"logging,omitempty"`
	}{
		Status:      "ok",
		ServerTime:  time.Now().UnixMilli(),
		Version:     version,
		Subscribers: subscribers,
		Telemetry:   h.cfg.Counters.Snapshot(),
		Logging:     logStats,
	}
	writeJSON(w, nethttp.StatusOK, payload)
}

func (h *handler) page(name string) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet && r.Method != nethttp.MethodHead {
			writeError(w, nethttp.StatusMethodNotAllowed, "method not allowed")
			return
		}
		data, err := fs.ReadFile(h.cfg.Pages, name)
		if err != nil {
			h.logger.Printf("page %s unavailable: %v", name, err)
			writeError(w, nethttp.StatusNotFound, "page not found")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})
}

// fail maps service errors onto the JSON error envelope.
func (h *handler) fail(w nethttp.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrAlreadyFinal):
		writeError(w, nethttp.StatusConflict, game.ErrAlreadyFinal.Error())
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, nethttp.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrUnavailable):
		h.logger.Printf("request not applied: %v", err)
		writeError(w, nethttp.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, nethttp.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Printf("request failed: %v", err)
		writeError(w, nethttp.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w nethttp.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w nethttp.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Success: false, Error: msg})
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
