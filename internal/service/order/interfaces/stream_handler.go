// internal/service/order/interfaces/stream_handler.go
package interfaces

import (
	"net/http"
	"time"

	"atlas/internal/pkg/logger"
	"atlas/internal/service/order/application"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is the gateway's concern.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const streamPollInterval = time.Second

// streamTimeline upgrades to a websocket and pushes the order's ledger
// entries: the full timeline first, then every new entry as it is appended.
// The ledger is append-only and ordered by Seq, so polling past the highest
// sequence already sent is lossless.
func (h *OrderHandler) streamTimeline(w http.ResponseWriter, r *http.Request, p application.Principal) {
	orderID := r.PathValue("id")

	// Authorization errors must surface as HTTP statuses, so check before
	// upgrading the connection.
	if _, err := h.service.Timeline(r.Context(), p, orderID); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var lastSeq int64

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	for {
		events, err := h.service.Timeline(ctx, p, orderID)
		if err != nil {
			// The order may have been deleted mid-stream; the deleted
			// event was already pushed, close normally.
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
		for _, e := range events {
			if e.Seq <= lastSeq {
				continue
			}
			if err := conn.WriteJSON(toEventResponse(e)); err != nil {
				logger.Ctx(ctx).Debug().Err(err).Str("order_id", orderID).Msg("timeline stream closed by peer")
				return
			}
			lastSeq = e.Seq
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
