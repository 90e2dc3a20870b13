package httpd

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/hub"
)

type wsInbound struct {
	Event string `json:"event"`
}

// Realtime handles GET /ws: the subscriber channel. On connect the bridge
// replays cached state (status, then a pending challenge); afterwards the
// connection only receives fan-out events and may send request-data pulls.
func (h *Handler) Realtime(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if h.allowedOrigin == "" {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = []string{originPattern(h.allowedOrigin)}
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}

	sub := h.hub.Attach()
	defer h.hub.Detach(sub)
	defer conn.CloseNow()

	h.bridge.OnSubscriberConnected(sub)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: only request-data is understood; anything else is ignored.
	go func() {
		defer cancel()
		for {
			var in wsInbound
			if err := wsjson.Read(ctx, conn, &in); err != nil {
				return
			}
			if in.Event == hub.RequestData {
				go h.bridge.RefreshFor(context.WithoutCancel(ctx), sub)
			}
		}
	}()

	for {
		select {
		case ev := <-sub.Events:
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				h.logger.Debug("websocket write failed", zap.String("id", sub.ID), zap.Error(err))
				return
			}
		case <-sub.Done:
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ctx.Done():
			return
		}
	}
}

func originPattern(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Host
	}
	return origin
}
