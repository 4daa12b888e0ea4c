package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farewatch/internal/config"
	"farewatch/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func testDeals() []model.Deal {
	return []model.Deal{
		{
			Journey: model.Journey{
				Origin:       "Paris",
				Destination:  "Lyon",
				OutboundDate: "2026-11-20",
				OutboundTime: "08:18",
				ReturnDate:   "2026-11-23",
				ReturnTime:   "17:04",
				CurrentPrice: decimal.NewFromInt(90),
			},
			NewPrice: decimal.NewFromInt(65),
			Savings:  decimal.NewFromInt(25),
			Offer: model.BestOffer{
				Price:              decimal.NewFromInt(65),
				DepartureTime:      "08:20",
				TrainNumber:        "6603",
				Transporter:        "TGV INOUI",
				Duration:           "1h56",
				OriginStation:      "Paris Gare de Lyon",
				DestinationStation: "Lyon Part Dieu",
				ComfortClass:       model.ComfortClassSecond,
				FareName:           "Tarif Avantage",
			},
		},
		{
			Journey: model.Journey{
				Origin:       "Lille",
				Destination:  "Nantes",
				OutboundDate: "2026-12-10",
				OutboundTime: "10:45",
				ReturnDate:   "2026-12-12",
				ReturnTime:   "19:00",
				CurrentPrice: decimal.RequireFromString("75.25"),
			},
			NewPrice: decimal.RequireFromString("70"),
			Savings:  decimal.RequireFromString("5.25"),
			Offer: model.BestOffer{
				Price:         decimal.RequireFromString("70"),
				DepartureTime: "10:52",
				TrainNumber:   "N/A",
				Transporter:   "OUIGO",
				ComfortClass:  model.ComfortClassFirst,
				FareName:      "Tarif standard",
			},
		},
	}
}

func TestFormatDeals(t *testing.T) {
	msg := FormatDeals(testDeals())

	assert.True(t, strings.HasPrefix(msg, "🎉 *2 cheaper fare(s) found!*"))
	assert.Contains(t, msg, "*1.* Paris → Lyon")
	assert.Contains(t, msg, "📅 2026-11-20 ~08:18, return 2026-11-23 ~17:04")
	assert.Contains(t, msg, "🚄 TGV INOUI 6603, departs 08:20 (1h56)")
	assert.Contains(t, msg, "🚉 Paris Gare de Lyon → Lyon Part Dieu")
	assert.Contains(t, msg, "🎫 Tarif Avantage, 2nd class")
	assert.Contains(t, msg, "💰 65.00 € instead of 90.00 €")
	assert.Contains(t, msg, "✅ Savings: 25.00 €")
	assert.Contains(t, msg, "*2.* Lille → Nantes")
	assert.Contains(t, msg, "🎫 Tarif standard, 1st class")
	assert.True(t, strings.HasSuffix(msg, "💸 *Total savings: 30.25 €*"))
}

func TestFormatSummary(t *testing.T) {
	assert.Contains(t, FormatSummary(Summary{Checked: 3}), "😊 No cheaper fare this time")

	msg := FormatSummary(Summary{Checked: 3, Skipped: 1, Failed: 1, DealsFound: 2, TotalSavings: decimal.RequireFromString("30.25")})
	assert.Contains(t, msg, "✅ 3 journey(s) checked")
	assert.Contains(t, msg, "⏭️ 1 skipped, ⚠️ 1 failed")
	assert.Contains(t, msg, "🎉 2 cheaper fare(s) found, 30.25 € saved")
}

func TestFormatFailure(t *testing.T) {
	assert.Equal(t, "❌ Fare check failed:\n```\nboom\n```", FormatFailure(errors.New("boom")))
}

func TestTelegramNotifier(t *testing.T) {
	var (
		gotPath string
		got     sendMessageRequest
		calls   int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier(config.TelegramConfig{
		BotToken: "123:abc", ChatID: "42", BaseURL: server.URL + "/", Timeout: time.Second,
	}, testLogger())
	ctx := context.Background()

	require.NoError(t, n.NotifyDeals(ctx, testDeals()))
	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.Equal(t, FormatDeals(testDeals()), got.Text)

	require.NoError(t, n.NotifyDeals(ctx, nil))
	assert.Equal(t, 1, calls, "no message for an empty deal list")

	require.NoError(t, n.NotifyFailure(ctx, errors.New("registry down")))
	assert.Contains(t, got.Text, "registry down")

	require.NoError(t, n.NotifySummary(ctx, Summary{Checked: 2}))
	assert.Contains(t, got.Text, "2 journey(s) checked")
}

func TestTelegramNotifier_Errors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"ok": false, "description": "Unauthorized"}`))
		}))
		defer server.Close()

		n := NewTelegramNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c", BaseURL: server.URL, Timeout: time.Second}, testLogger())
		err := n.Send(context.Background(), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("network error hides token", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		base := server.URL
		server.Close()

		n := NewTelegramNotifier(config.TelegramConfig{BotToken: "secret-token", ChatID: "c", BaseURL: base, Timeout: time.Second}, testLogger())
		err := n.Send(context.Background(), "hello")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "secret-token")
	})
}

func TestWebSocketNotifier(t *testing.T) {
	upgrader := websocket.Upgrader{}
	events := make(chan Event, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer c.Close()

		var ev Event
		if assert.NoError(t, c.ReadJSON(&ev)) {
			events <- ev
		}
	}))
	defer server.Close()

	n := NewWebSocketNotifier(config.WebSocketConfig{
		URL:              "ws" + strings.TrimPrefix(server.URL, "http"),
		MaxAttempts:      1,
		HandshakeTimeout: time.Second,
	}, testLogger())
	ctx := context.Background()

	require.NoError(t, n.NotifyDeals(ctx, testDeals()))
	ev := <-events
	assert.Equal(t, "deals", ev.Type)
	require.Len(t, ev.Deals, 2)
	assert.Equal(t, "6603", ev.Deals[0].Offer.TrainNumber)
	assert.True(t, ev.Deals[0].Savings.Equal(decimal.NewFromInt(25)))

	require.NoError(t, n.NotifySummary(ctx, Summary{RunID: "run-1", Checked: 2, DealsFound: 2}))
	ev = <-events
	assert.Equal(t, "summary", ev.Type)
	require.NotNil(t, ev.Summary)
	assert.Equal(t, "run-1", ev.Summary.RunID)

	require.NoError(t, n.NotifyFailure(ctx, errors.New("boom")))
	ev = <-events
	assert.Equal(t, "failure", ev.Type)
	assert.Equal(t, "boom", ev.Error)
}

func TestWebSocketNotifier_DialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	n := NewWebSocketNotifier(config.WebSocketConfig{
		URL:              "ws" + strings.TrimPrefix(server.URL, "http"),
		MaxAttempts:      2,
		HandshakeTimeout: time.Second,
	}, testLogger())
	n.backoff = 10 * time.Millisecond

	err := n.NotifyFailure(context.Background(), errors.New("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()

	require.NoError(t, n.NotifyDeals(ctx, testDeals()))
	require.NoError(t, n.NotifySummary(ctx, Summary{Checked: 2, DealsFound: 2, TotalSavings: decimal.RequireFromString("30.25")}))
	require.NoError(t, n.NotifyFailure(ctx, errors.New("boom")))

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "\n"))
	assert.Contains(t, out, `"savings":"25.00"`)
	assert.Contains(t, out, `"totalSavings":"30.25"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestNew(t *testing.T) {
	logger := testLogger()

	n, err := New(config.NotifierConfig{Driver: "telegram", Telegram: config.TelegramConfig{BotToken: "t", ChatID: "c"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &TelegramNotifier{}, n)

	n, err = New(config.NotifierConfig{Driver: "websocket", WebSocket: config.WebSocketConfig{URL: "ws://localhost:1"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &WebSocketNotifier{}, n)

	n, err = New(config.NotifierConfig{Driver: "log"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	for _, cfg := range []config.NotifierConfig{
		{Driver: "telegram"},
		{Driver: "websocket"},
		{Driver: "carrier-pigeon"},
	} {
		_, err := New(cfg, logger)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	}
}
