package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"farewatch/internal/config"
	"farewatch/internal/model"
)

// Notifier defines the channel used to reach the operator.
type Notifier interface {
	NotifyDeals(ctx context.Context, deals []model.Deal) error
	NotifySummary(ctx context.Context, s Summary) error
	NotifyFailure(ctx context.Context, cause error) error
}

// Summary describes the outcome of one check run.
type Summary struct {
	RunID        string          `json:"run_id"`
	Checked      int             `json:"checked"`
	Skipped      int             `json:"skipped"`
	Failed       int             `json:"failed"`
	DealsFound   int             `json:"deals_found"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}

// New creates the notifier selected by cfg.Driver.
func New(cfg config.NotifierConfig, logger *slog.Logger) (Notifier, error) {
	switch cfg.Driver {
	case "telegram":
		if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
			return nil, fmt.Errorf("%w: TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set", config.ErrInvalidConfig)
		}
		return NewTelegramNotifier(cfg.Telegram, logger), nil
	case "websocket":
		if cfg.WebSocket.URL == "" {
			return nil, fmt.Errorf("%w: notifier.websocket.url is required", config.ErrInvalidConfig)
		}
		return NewWebSocketNotifier(cfg.WebSocket, logger), nil
	case "log":
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown notifier driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}
