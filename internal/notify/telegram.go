package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"farewatch/internal/config"
	"farewatch/internal/model"
)

// TelegramNotifier delivers messages through the Telegram Bot API.
type TelegramNotifier struct {
	logger     *slog.Logger
	cfg        config.TelegramConfig
	httpClient *http.Client
}

// NewTelegramNotifier creates a new TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts a Markdown message to the configured chat.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: n.cfg.ChatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.cfg.BaseURL, "/"), n.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram request: %w", unwrapURLError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of the error.
		return fmt.Errorf("telegram send: %w", unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("telegram send: unexpected status %d: %s", resp.StatusCode, excerpt)
	}
	n.logger.Debug("TelegramNotifier: message sent", "chars", len(text))
	return nil
}

func (n *TelegramNotifier) NotifyDeals(ctx context.Context, deals []model.Deal) error {
	if len(deals) == 0 {
		return nil
	}
	return n.Send(ctx, FormatDeals(deals))
}

func (n *TelegramNotifier) NotifySummary(ctx context.Context, s Summary) error {
	return n.Send(ctx, FormatSummary(s))
}

func (n *TelegramNotifier) NotifyFailure(ctx context.Context, cause error) error {
	return n.Send(ctx, FormatFailure(cause))
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
