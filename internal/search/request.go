package search

import (
	"errors"
	"fmt"
	"time"

	"farewatch/internal/config"
	"farewatch/internal/model"
)

// ErrInvalidDate is returned when a journey date is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid journey date")

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// Profile is the fixed search context sent with every request.
type Profile struct {
	AnchorHour        int
	DiscountCardCode  string
	DiscountCardLabel string
}

// ProfileFromConfig builds the search profile from the search settings.
func ProfileFromConfig(cfg config.SearchConfig) Profile {
	return Profile{
		AnchorHour:        cfg.AnchorHour,
		DiscountCardCode:  cfg.DiscountCardCode,
		DiscountCardLabel: cfg.DiscountCardLabel,
	}
}

// Request is the itineraries search body.
type Request struct {
	Schedule          Schedule    `json:"schedule"`
	MainJourney       MainJourney `json:"mainJourney"`
	Passengers        []Passenger `json:"passengers"`
	Pets              []string    `json:"pets"`
	Branch            string      `json:"branch"`
	ForceDisplay      bool        `json:"forceDisplayResults"`
	TrainExpected     bool        `json:"trainExpected"`
	WishBike          bool        `json:"wishBike"`
	StrictMode        bool        `json:"strictMode"`
	DirectJourney     bool        `json:"directJourney"`
	TransporterLabels []string    `json:"transporterLabels"`
}

type Schedule struct {
	Outward ScheduleDate `json:"outward"`
	Inward  ScheduleDate `json:"inward"`
}

type ScheduleDate struct {
	Date      string `json:"date"`
	ArrivalAt *bool  `json:"arrivalAt,omitempty"`
}

type MainJourney struct {
	Origin      Place `json:"origin"`
	Destination Place `json:"destination"`
}

type Place struct {
	Label       string   `json:"label"`
	Codes       []string `json:"codes"`
	Geolocation bool     `json:"geolocation"`
}

type Passenger struct {
	ID                    string         `json:"id"`
	DiscountCards         []DiscountCard `json:"discountCards"`
	Typology              string         `json:"typology"`
	WithoutSeatAssignment bool           `json:"withoutSeatAssignment"`
	HasDisability         bool           `json:"hasDisability"`
	HasWheelchair         bool           `json:"hasWheelchair"`
}

type DiscountCard struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	IsChecked bool   `json:"isChecked"`
}

// BuildRequest shapes the search body for a journey. Both dates are sent at
// the profile's anchor hour; the traveler's preferred times are matched
// later, against the results.
func BuildRequest(j model.Journey, p Profile) (Request, error) {
	outward, err := anchoredTimestamp(j.OutboundDate, p.AnchorHour)
	if err != nil {
		return Request{}, fmt.Errorf("outbound date: %w", err)
	}
	inward, err := anchoredTimestamp(j.ReturnDate, p.AnchorHour)
	if err != nil {
		return Request{}, fmt.Errorf("return date: %w", err)
	}

	arrivalAt := false
	return Request{
		Schedule: Schedule{
			Outward: ScheduleDate{Date: outward, ArrivalAt: &arrivalAt},
			Inward:  ScheduleDate{Date: inward},
		},
		MainJourney: MainJourney{
			Origin:      Place{Label: j.Origin, Codes: []string{}},
			Destination: Place{Label: j.Destination, Codes: []string{}},
		},
		Passengers: []Passenger{{
			ID: "passenger-1",
			DiscountCards: []DiscountCard{{
				Code:      p.DiscountCardCode,
				Label:     p.DiscountCardLabel,
				IsChecked: true,
			}},
			Typology: "ADULT",
		}},
		Pets:              []string{},
		Branch:            "SHOP",
		ForceDisplay:      true,
		TrainExpected:     true,
		TransporterLabels: []string{},
	}, nil
}

// ParseDate parses a journey calendar date.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return d, nil
}

func anchoredTimestamp(date string, hour int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.Add(time.Duration(hour) * time.Hour).Format(timestampLayout), nil
}
