package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultFlexibilityHours is used when a journey does not set its own window.
const DefaultFlexibilityHours = 3.0

// Journey is a saved round trip whose fare is being watched.
type Journey struct {
	Origin           string          `json:"origin"`
	Destination      string          `json:"destination"`
	OutboundDate     string          `json:"outbound_date"`
	OutboundTime     string          `json:"outbound_time"`
	ReturnDate       string          `json:"return_date"`
	ReturnTime       string          `json:"return_time"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	FlexibilityHours *float64        `json:"flexibility_hours,omitempty"`
}

// maxFlexibilityHours is the largest window a time.Duration can hold.
var maxFlexibilityHours = float64(math.MaxInt64) / float64(time.Hour)

// Flexibility returns the allowed departure-time window, saturating at the
// largest representable duration.
func (j Journey) Flexibility() time.Duration {
	hours := DefaultFlexibilityHours
	if j.FlexibilityHours != nil {
		hours = *j.FlexibilityHours
	}
	if hours >= maxFlexibilityHours {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(hours * float64(time.Hour))
}

// Route returns a short label used in logs and messages.
func (j Journey) Route() string {
	return j.Origin + " → " + j.Destination
}

// ComfortClass is a fare category within one departure.
type ComfortClass string

const (
	ComfortClassSecond ComfortClass = "SECOND"
	ComfortClassFirst  ComfortClass = "FIRST"
)

// BestOffer is the cheapest qualifying fare found for a journey, with the
// descriptive fields of its departure copied onto it.
type BestOffer struct {
	Price              decimal.Decimal `json:"total_price"`
	DepartureTime      string          `json:"outbound_departure"`
	TrainNumber        string          `json:"train_number"`
	Transporter        string          `json:"transporter"`
	Duration           string          `json:"duration"`
	OriginStation      string          `json:"origin_station"`
	DestinationStation string          `json:"destination_station"`
	ComfortClass       ComfortClass    `json:"comfort_class"`
	FareName           string          `json:"fare_name"`
}

// Deal is a journey paired with an offer cheaper than its known price.
type Deal struct {
	Journey  Journey         `json:"trip"`
	NewPrice decimal.Decimal `json:"new_price"`
	Savings  decimal.Decimal `json:"savings"`
	Offer    BestOffer       `json:"details"`
}
