package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seenimoa/stockdash/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS does not apply to upgrades; the access gate does
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// WSMessage is a message sent over the drop stream.
type WSMessage struct {
	Type  string      `json:"type"` // "drops" or "error"
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// handleDropStream upgrades to a WebSocket and pushes a fresh drop table
// every api.stream_interval_sec until the client goes away. It accepts the
// same query parameters as /drops.
func (s *Server) handleDropStream(w http.ResponseWriter, r *http.Request) {
	req, err := dropRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	go wsReadPump(conn, cancel, s.logger)
	s.dropWritePump(ctx, conn, req)
}

// wsReadPump discards client messages and cancels the stream once the
// connection closes.
func wsReadPump(conn *websocket.Conn, cancel context.CancelFunc, logger *zap.Logger) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// dropWritePump sends a drop table immediately and then on every refresh
// tick, with pings in between.
func (s *Server) dropWritePump(ctx context.Context, conn *websocket.Conn, req pipeline.DropRequest) {
	interval := time.Duration(s.cfg.API.StreamIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	refresh := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		refresh.Stop()
		ping.Stop()
		conn.Close()
	}()

	send := func() bool {
		fetchCtx, cancel := context.WithTimeout(ctx, s.requestTimeout())
		table, err := s.pipe.Drops(fetchCtx, req)
		cancel()
		msg := WSMessage{Type: "drops", Data: table}
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			msg = WSMessage{Type: "error", Error: err.Error()}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg) == nil
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-refresh.C:
			if !send() {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
