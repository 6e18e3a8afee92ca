package http

import (
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildgate/internal/core"
	"github.com/vovakirdan/guildgate/internal/proto"
)

// EventsHandler streams domain events to websocket subscribers so
// embedding applications can observe the pipeline.
type EventsHandler struct {
	emitter *core.Emitter
	log     *zerolog.Logger
}

// NewEventsHandler builds the /events websocket handler.
func NewEventsHandler(emitter *core.Emitter, logger *zerolog.Logger) *EventsHandler {
	return &EventsHandler{emitter: emitter, log: logger}
}

func (h *EventsHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx := r.Context()
	events := h.emitter.Subscribe(16)
	defer h.emitter.Unsubscribe(events)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "shutting down")
				return
			}
			if err := wsjson.Write(ctx, conn, proto.FromEvent(ev)); err != nil {
				h.log.Warn().Err(err).Msg("write ws event")
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "closing")
			return
		}
	}
}
