package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"stove_automation"
	"stove_automation/internal/models"
	"stove_automation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	defaultPollInterval = 2 * time.Second
	minPollInterval     = 20 * time.Millisecond
	maxPollInterval     = time.Minute

	wsTypeState = "state"
	wsTypeError = "error"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsSnapshot is the payload of a "state" envelope.
type wsSnapshot struct {
	Stove      models.StoveStateRecord             `json:"stove"`
	Cron       *service.CronHealth                 `json:"cron,omitempty"`
	LastResult *stove_automation.SchedulerResponse `json:"lastResult,omitempty"`
}

// The route sits behind the cron secret, so any origin is accepted.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsStream tracks what a single connection has already been sent.
type wsStream struct {
	conn     *websocket.Conn
	lastSent []byte
	failing  bool
}

// @Summary      Live stove state
// @Description  WebSocket. Pushes a "state" envelope on connect and whenever the stove record, cron health or last check result changes.
// @Tags         stove
// @Param        interval  query  string  false  "Poll interval (e.g. 5s), 20ms-1m"
// @Router       /ws [get]
// @Security     CronSecret
func (h *Handler) wsConnect(c *gin.Context) {
	interval := parsePollInterval(c.Query("interval"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.drain(conn, done)

	ctx := c.Request.Context()
	stream := &wsStream{conn: conn}

	// a client that cannot get a first snapshot is disconnected
	snap, err := h.snapshot(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_initial_state_failed", "err", err)
		}
		return
	}
	if err := stream.push(snap); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed", "err", err)
		}
		return
	}

	poll := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		poll.Stop()
		ping.Stop()
	}()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-poll.C:
			if err := h.refresh(ctx, stream); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// refresh pushes a new snapshot when it differs from the last one sent. A
// failing state read is reported once until it recovers.
func (h *Handler) refresh(ctx context.Context, s *wsStream) error {
	snap, err := h.snapshot(ctx)
	if err != nil {
		if s.failing {
			return nil
		}
		if h.log != nil {
			h.log.Errorw("ws_get_state_failed", "err", err)
		}
		s.failing = true
		return s.write(wsEnvelope{Type: wsTypeError, Error: errGetState})
	}
	s.failing = false
	return s.push(snap)
}

func (h *Handler) snapshot(ctx context.Context) (wsSnapshot, error) {
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		return wsSnapshot{}, err
	}
	snap := wsSnapshot{Stove: st}
	if health, err := h.services.Monitoring.CronHealth(ctx); err == nil {
		snap.Cron = &health
	}
	if h.services.Scheduler != nil {
		if last, ok := h.services.Scheduler.LastResult(); ok {
			snap.LastResult = &last
		}
	}
	return snap, nil
}

func (s *wsStream) push(snap wsSnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if s.lastSent != nil && bytes.Equal(body, s.lastSent) {
		return nil
	}
	if err := s.write(wsEnvelope{Type: wsTypeState, Data: json.RawMessage(body)}); err != nil {
		return err
	}
	s.lastSent = body
	return nil
}

func (s *wsStream) write(env wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}

// drain reads until the peer goes away so control frames are processed.
func (h *Handler) drain(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// parsePollInterval reads a duration such as "5s", clamped to
// [minPollInterval, maxPollInterval]. Invalid input selects the default.
func parsePollInterval(s string) time.Duration {
	if s == "" {
		return defaultPollInterval
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultPollInterval
	}
	return min(max(d, minPollInterval), maxPollInterval)
}
