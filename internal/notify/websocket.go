package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"farewatch/internal/config"
	"farewatch/internal/model"
)

const maxBackoff = 16 * time.Second

// Event is the JSON message pushed to the operator dashboard.
type Event struct {
	Type    string       `json:"type"`
	SentAt  time.Time    `json:"sent_at"`
	Deals   []model.Deal `json:"deals,omitempty"`
	Summary *Summary     `json:"summary,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// WebSocketNotifier pushes events to an operator dashboard over a websocket.
type WebSocketNotifier struct {
	logger  *slog.Logger
	cfg     config.WebSocketConfig
	backoff time.Duration
}

// NewWebSocketNotifier creates a new WebSocketNotifier.
func NewWebSocketNotifier(cfg config.WebSocketConfig, logger *slog.Logger) *WebSocketNotifier {
	return &WebSocketNotifier{logger: logger, cfg: cfg, backoff: time.Second}
}

func (n *WebSocketNotifier) NotifyDeals(ctx context.Context, deals []model.Deal) error {
	if len(deals) == 0 {
		return nil
	}
	return n.send(ctx, Event{Type: "deals", SentAt: time.Now().UTC(), Deals: deals})
}

func (n *WebSocketNotifier) NotifySummary(ctx context.Context, s Summary) error {
	return n.send(ctx, Event{Type: "summary", SentAt: time.Now().UTC(), Summary: &s})
}

func (n *WebSocketNotifier) NotifyFailure(ctx context.Context, cause error) error {
	return n.send(ctx, Event{Type: "failure", SentAt: time.Now().UTC(), Error: cause.Error()})
}

// send connects, writes one event and closes the connection.
func (n *WebSocketNotifier) send(ctx context.Context, ev Event) error {
	c, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.WriteJSON(ev); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	n.logger.Info("WebSocketNotifier: event sent", "type", ev.Type)

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second)); err != nil {
		n.logger.Debug("WebSocketNotifier: close handshake failed", "error", err)
	}
	return nil
}

func (n *WebSocketNotifier) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: n.cfg.HandshakeTimeout}
	attempts := max(n.cfg.MaxAttempts, 1)
	backoff := n.backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		n.logger.Info("WebSocketNotifier: connecting", "url", n.cfg.URL, "attempt", attempt)
		c, _, err := dialer.DialContext(ctx, n.cfg.URL, nil)
		if err == nil {
			return c, nil
		}
		lastErr = err
		n.logger.Error("WebSocketNotifier: connection failed", "error", err)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
	return nil, fmt.Errorf("websocket dial %s after %d attempt(s): %w", n.cfg.URL, attempts, lastErr)
}
