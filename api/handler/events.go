package handler

import (
	"bufio"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/salon/api/transport"
	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/internal/hub"
	"github.com/fastygo/salon/pkg/httpcontext"
)

const reconnectDelay = 3 * time.Second

// EventsHandler streams live appointment events to dashboards as server-sent events.
type EventsHandler struct {
	baseHandler
	hub       *hub.Hub
	heartbeat time.Duration
}

func NewEventsHandler(h *hub.Hub, heartbeat time.Duration, adapter *httpcontext.Adapter, logger *zap.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &EventsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		hub:         h,
		heartbeat:   heartbeat,
	}
}

// @Summary Live appointment events
// @Tags events
// @Produce text/event-stream
// @Router /api/v1/events [get]
func (h *EventsHandler) Stream(ctx *fasthttp.RequestCtx) {
	who := caller(ctx)
	if !who.IsStaff() {
		h.respondJSON(ctx, http.StatusForbidden, transport.NewError(string(domain.ErrCodeForbidden), domain.ErrForbidden.Message, nil))
		return
	}

	// Subscribe before the response starts so nothing broadcast after this
	// request was accepted is missed.
	sub := h.hub.Subscribe()
	logger := h.logger.With(
		zap.Uint64("subscriber_id", sub.ID()),
		zap.String("user_id", who.UserID),
		zap.String("request_id", httpcontext.RequestID(ctx)),
	)
	logger.Info("live stream opened")

	ctx.SetStatusCode(http.StatusOK)
	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		started := time.Now()
		err := h.pump(w, sub, ticker.C)
		if err != nil {
			logger.Info("live stream closed by client", zap.Error(err), zap.Duration("duration", time.Since(started)))
			return
		}
		logger.Info("live stream closed by server", zap.Duration("duration", time.Since(started)))
	})
}

// pump writes events until the subscription ends or a write fails. A failed
// write or flush means the client is gone, so the subscriber is removed.
func (h *EventsHandler) pump(w *bufio.Writer, sub *hub.Subscriber, heartbeat <-chan time.Time) error {
	defer h.hub.Unsubscribe(sub)

	if err := writeFrame(w, transport.RetryFrame(reconnectDelay.Milliseconds())); err != nil {
		return err
	}

	messages := sub.Messages()
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := writeFrame(w, transport.EventFrame(msg.ID, msg.Event, msg.Data)); err != nil {
				return err
			}
		case <-heartbeat:
			if err := writeFrame(w, transport.CommentFrame("heartbeat")); err != nil {
				return err
			}
		}
	}
}

func writeFrame(w *bufio.Writer, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}
