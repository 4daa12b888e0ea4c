package fare

import (
	"fmt"
	"time"

	"farewatch/internal/model"

	"github.com/shopspring/decimal"
)

// tierOrder is the per-departure class fallback: the first class with any
// offers is the only one considered for that departure.
var tierOrder = []model.ComfortClass{model.ComfortClassSecond, model.ComfortClassFirst}

// Criteria describes which departures qualify for a journey.
type Criteria struct {
	TargetOutbound string
	// TargetReturn is carried with the criteria but not used for selection.
	TargetReturn string
	Flexibility  time.Duration
}

// Validate reports target times that will be matched as midnight.
func (c Criteria) Validate() error {
	if _, ok := ParseClock(c.TargetOutbound); !ok {
		return fmt.Errorf("outbound time %q is not HH:MM, matching against 00:00", c.TargetOutbound)
	}
	return nil
}

// SelectBestOffer returns the cheapest bookable offer among departures within
// the flexibility window of the target outbound time, or nil when no offer
// qualifies.
func SelectBestOffer(result *SearchResult, c Criteria) *model.BestOffer {
	window := c.Flexibility.Minutes()

	var best *model.BestOffer
	for _, p := range result.Proposals() {
		if !p.Status.IsBookable {
			continue
		}
		departure := p.Departure.TimeLabel
		if departure == "" {
			continue
		}
		if float64(TimeDiffMinutes(departure, c.TargetOutbound)) > window {
			continue
		}

		class, offers := tierFor(p)
		for _, offer := range offers {
			price, _ := ParsePrice(offer.Price())
			if !price.IsPositive() {
				continue
			}
			if best != nil && !price.LessThan(best.Price) {
				continue
			}
			best = newBestOffer(p, offer, class, price)
		}
	}
	return best
}

func tierFor(p Proposal) (model.ComfortClass, []Offer) {
	for _, class := range tierOrder {
		if offers := p.Offers(class); len(offers) > 0 {
			return class, offers
		}
	}
	return "", nil
}

func newBestOffer(p Proposal, o Offer, class model.ComfortClass, price decimal.Decimal) *model.BestOffer {
	return &model.BestOffer{
		Price:              price,
		DepartureTime:      p.Departure.TimeLabel,
		TrainNumber:        p.TrainNumber(),
		Transporter:        p.TransporterDescription,
		Duration:           p.DurationLabel,
		OriginStation:      p.Departure.OriginStationLabel,
		DestinationStation: p.Arrival.DestinationStationLabel,
		ComfortClass:       class,
		FareName:           o.FareName(),
	}
}
