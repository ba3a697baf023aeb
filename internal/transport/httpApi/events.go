package httpApi

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model/httpModel"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/gorilla/websocket"
)

const eventPortfolioChanged = "portfolio_changed"

type eventsConfig struct {
	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

var defaultEventsConfig = eventsConfig{
	writeWait:  10 * time.Second,
	pongWait:   60 * time.Second,
	pingPeriod: 50 * time.Second,
}

// Events upgrades to a websocket and pushes a message whenever portfolio
// state changes. Bursts of changes collapse into one message.
func (ctrl *Controller) Events(w http.ResponseWriter, r *http.Request) {
	rqID := utils.GetRequestIDFromCtx(r.Context())

	upgrader := websocket.Upgrader{CheckOrigin: ctrl.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return
	}
	defer conn.Close()

	changes, unsubscribe := ctrl.manager.Subscribe()
	defer unsubscribe()

	slog.Info("websocket subscribed", slog.String("rqID", rqID))

	closed := make(chan struct{})
	go ctrl.readPump(conn, closed)

	ticker := time.NewTicker(ctrl.events.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			slog.Info("websocket closed", slog.String("rqID", rqID))
			return
		case <-r.Context().Done():
			return
		case <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(ctrl.events.writeWait))
			event := httpModel.Event{Type: eventPortfolioChanged, At: time.Now().UTC()}
			if err := conn.WriteJSON(event); err != nil {
				slog.Warn("websocket write failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(ctrl.events.writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed, and
// signals when the peer goes away.
func (ctrl *Controller) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	_ = conn.SetReadDeadline(time.Now().Add(ctrl.events.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ctrl.events.pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (ctrl *Controller) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(ctrl.allowOrigins) == 0 || slices.Contains(ctrl.allowOrigins, "*") {
		return true
	}
	if slices.Contains(ctrl.allowOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}
