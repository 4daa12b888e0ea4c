package checker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"farewatch/internal/config"
	"farewatch/internal/deal"
	"farewatch/internal/fare"
	"farewatch/internal/model"
	"farewatch/internal/notify"
	"farewatch/internal/registry"
	"farewatch/internal/search"
)

// Report is the outcome of one check run. Deals are in journey-check order.
type Report struct {
	RunID     string
	StartedAt time.Time
	Checked   int
	Skipped   int
	Failed    int
	Deals     []model.Deal
}

// Summary converts the report for the notification channel.
func (r Report) Summary() notify.Summary {
	return notify.Summary{
		RunID:        r.RunID,
		Checked:      r.Checked,
		Skipped:      r.Skipped,
		Failed:       r.Failed,
		DealsFound:   len(r.Deals),
		TotalSavings: notify.TotalSavings(r.Deals),
	}
}

// Checker runs the fare check over every tracked journey, one at a time.
type Checker struct {
	logger   *slog.Logger
	registry registry.Registry
	client   search.Client
	profile  search.Profile
	throttle config.ThrottleConfig
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option customizes a Checker.
type Option func(*Checker)

// WithClock overrides the clock used to skip past journeys.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleeper overrides how throttling pauses are taken.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Checker) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a new Checker.
func New(logger *slog.Logger, reg registry.Registry, client search.Client, cfg *config.Config, opts ...Option) *Checker {
	c := &Checker{
		logger:   logger,
		registry: reg,
		client:   client,
		profile:  search.ProfileFromConfig(cfg.Search),
		throttle: cfg.Throttle,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every journey from the registry in order. Per-journey failures
// are logged and counted; only a registry failure or cancellation ends the
// run with an error. A journey is skipped as past only when its outbound date
// is before today, so journeys leaving today are still checked.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: c.now()}
	logger := c.logger.With("runID", report.RunID)

	journeys, err := c.registry.LoadJourneys(ctx)
	if err != nil {
		return report, fmt.Errorf("load journeys: %w", err)
	}
	if len(journeys) == 0 {
		logger.Info("No journeys to check")
		return report, nil
	}
	logger.Info("Checking journeys", "count", len(journeys))

	y, m, d := report.StartedAt.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for i, j := range journeys {
		log := logger.With("route", j.Route(), "position", i+1, "outboundDate", j.OutboundDate)

		outbound, err := search.ParseDate(j.OutboundDate)
		if err != nil {
			log.Warn("Skipping journey with invalid date", "error", err)
			report.Skipped++
			continue
		}
		if outbound.Before(today) {
			log.Info("Skipping past journey")
			report.Skipped++
			continue
		}
		req, err := search.BuildRequest(j, c.profile)
		if err != nil {
			log.Warn("Skipping journey with invalid date", "error", err)
			report.Skipped++
			continue
		}

		found, ok, err := c.checkJourney(ctx, log, j, req)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Warn("Fare search failed, journey skipped", "error", err)
			report.Failed++
		} else {
			report.Checked++
			if ok {
				report.Deals = append(report.Deals, found)
			}
		}

		if err := c.sleep(ctx, c.throttle.Pause); err != nil {
			return report, err
		}
	}

	logger.Info("Check finished",
		"checked", report.Checked,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"deals", len(report.Deals),
	)
	return report, nil
}

// checkJourney searches one journey and evaluates the best offer. Only a
// transport failure (or cancellation) is returned as an error.
func (c *Checker) checkJourney(ctx context.Context, log *slog.Logger, j model.Journey, req search.Request) (model.Deal, bool, error) {
	if err := c.sleep(ctx, randomJitter(c.throttle.MinJitter, c.throttle.MaxJitter)); err != nil {
		return model.Deal{}, false, err
	}

	raw, err := c.client.Search(ctx, req)
	if err != nil {
		return model.Deal{}, false, err
	}

	result, err := fare.Decode(raw)
	if err != nil {
		log.Warn("Unexpected search result shape, no offer extracted", "error", err)
	}
	for _, rerr := range result.Rejected() {
		log.Warn("Skipping malformed proposal", "error", rerr)
	}

	criteria := fare.Criteria{
		TargetOutbound: j.OutboundTime,
		TargetReturn:   j.ReturnTime,
		Flexibility:    j.Flexibility(),
	}
	if err := criteria.Validate(); err != nil {
		log.Warn("Target time will be matched as midnight", "error", err)
	}

	offer := fare.SelectBestOffer(result, criteria)
	if offer == nil {
		log.Info("No bookable fare within the time window", "proposals", len(result.Proposals()))
		return model.Deal{}, false, nil
	}

	found, ok := deal.Evaluate(j, offer)
	if !ok {
		log.Info("No cheaper fare",
			"currentPrice", j.CurrentPrice.StringFixed(2),
			"bestPrice", offer.Price.StringFixed(2),
		)
		return model.Deal{}, false, nil
	}

	log.Info("Cheaper fare found",
		"currentPrice", j.CurrentPrice.StringFixed(2),
		"newPrice", found.NewPrice.StringFixed(2),
		"savings", found.Savings.StringFixed(2),
		"train", offer.Transporter+" "+offer.TrainNumber,
		"departure", offer.DepartureTime,
		"comfortClass", offer.ComfortClass,
	)
	return found, true, nil
}

func randomJitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
