package notify

import (
	"context"
	"log/slog"

	"farewatch/internal/model"
)

// LogNotifier writes notifications to the structured log only.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyDeals(_ context.Context, deals []model.Deal) error {
	for _, d := range deals {
		n.logger.Info("Cheaper fare found",
			"route", d.Journey.Route(),
			"outboundDate", d.Journey.OutboundDate,
			"currentPrice", d.Journey.CurrentPrice.StringFixed(2),
			"newPrice", d.NewPrice.StringFixed(2),
			"savings", d.Savings.StringFixed(2),
			"train", d.Offer.TrainNumber,
			"departure", d.Offer.DepartureTime,
			"comfortClass", d.Offer.ComfortClass,
		)
	}
	return nil
}

func (n *LogNotifier) NotifySummary(_ context.Context, s Summary) error {
	n.logger.Info("Check summary",
		"runID", s.RunID,
		"checked", s.Checked,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"dealsFound", s.DealsFound,
		"totalSavings", s.TotalSavings.StringFixed(2),
	)
	return nil
}

func (n *LogNotifier) NotifyFailure(_ context.Context, cause error) error {
	n.logger.Error("Fare check failed", "error", cause)
	return nil
}
