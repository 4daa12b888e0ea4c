package fare

import (
	"bytes"
	"encoding/json"
	"fmt"

	"farewatch/internal/model"
)

const (
	defaultPriceLabel  = "0 €"
	defaultFareName    = "Tarif standard"
	TrainNumberMissing = "N/A"
)

// SearchResult is the part of the itineraries response the selector reads.
// Fields absent from the payload decode to their zero value.
type SearchResult struct {
	LongDistance struct {
		Proposals struct {
			Proposals proposalList `json:"proposals"`
		} `json:"proposals"`
	} `json:"longDistance"`
}

// Proposals returns the candidate departures in API order.
func (r *SearchResult) Proposals() []Proposal {
	if r == nil {
		return nil
	}
	return r.LongDistance.Proposals.Proposals.items
}

// Rejected returns one error per proposal that could not be decoded.
func (r *SearchResult) Rejected() []error {
	if r == nil {
		return nil
	}
	return r.LongDistance.Proposals.Proposals.rejected
}

// proposalList decodes each proposal on its own, so a malformed candidate
// is set aside without losing the others.
type proposalList struct {
	items    []Proposal
	rejected []error
}

func (l *proposalList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	l.items = make([]Proposal, 0, len(raws))
	l.rejected = nil
	for i, raw := range raws {
		var p Proposal
		if err := json.Unmarshal(raw, &p); err != nil {
			l.rejected = append(l.rejected, fmt.Errorf("proposal %d: %w", i, err))
			continue
		}
		l.items = append(l.items, p)
	}
	return nil
}

// Proposal is one scheduled service returned by the search.
type Proposal struct {
	Status struct {
		IsBookable bool `json:"isBookable"`
	} `json:"status"`
	Departure struct {
		TimeLabel          string `json:"timeLabel"`
		OriginStationLabel string `json:"originStationLabel"`
	} `json:"departure"`
	Arrival struct {
		DestinationStationLabel string `json:"destinationStationLabel"`
	} `json:"arrival"`
	DurationLabel          string `json:"durationLabel"`
	TransporterDescription string `json:"transporterDescription"`
	GlobalTimeline         struct {
		Steps []TimelineStep `json:"steps"`
	} `json:"globalTimeline"`
	SecondComfortClassOffers ComfortClassOffers `json:"secondComfortClassOffers"`
	FirstComfortClassOffers  ComfortClassOffers `json:"firstComfortClassOffers"`
}

// ComfortClassOffers lists the fares of one comfort class.
type ComfortClassOffers struct {
	Offers []Offer `json:"offers"`
}

// Offer is a single fare of a proposal.
type Offer struct {
	PriceLabel *string `json:"priceLabel"`
	Header     struct {
		Subtitle *string `json:"subtitle"`
	} `json:"header"`
}

// Price returns the offer's price label, "0 €" when absent.
func (o Offer) Price() string {
	if o.PriceLabel == nil {
		return defaultPriceLabel
	}
	return *o.PriceLabel
}

// FareName returns the offer's fare subtitle, "Tarif standard" when absent.
func (o Offer) FareName() string {
	if o.Header.Subtitle == nil {
		return defaultFareName
	}
	return *o.Header.Subtitle
}

// TimelineStep is one leg of a proposal's itinerary.
type TimelineStep struct {
	Train *struct {
		Transporter *struct {
			Number *TrainNumber `json:"number"`
		} `json:"transporter"`
	} `json:"train"`
}

// TrainNumber accepts the number either as a JSON string or a JSON number.
type TrainNumber string

func (n *TrainNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = TrainNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("train number: %w", err)
	}
	*n = TrainNumber(num.String())
	return nil
}

// TrainNumber reads the number of the train on the second itinerary step.
func (p Proposal) TrainNumber() string {
	steps := p.GlobalTimeline.Steps
	if len(steps) < 2 {
		return TrainNumberMissing
	}
	step := steps[1]
	if step.Train == nil || step.Train.Transporter == nil || step.Train.Transporter.Number == nil {
		return TrainNumberMissing
	}
	return string(*step.Train.Transporter.Number)
}

// Offers returns the proposal's offer list for a comfort class.
func (p Proposal) Offers(class model.ComfortClass) []Offer {
	switch class {
	case model.ComfortClassSecond:
		return p.SecondComfortClassOffers.Offers
	case model.ComfortClassFirst:
		return p.FirstComfortClassOffers.Offers
	default:
		return nil
	}
}

// Decode parses a raw itineraries response. An error means the payload does
// not have the expected shape; missing fields are not errors, and proposals
// that fail to decode are reported by Rejected.
func Decode(raw []byte) (*SearchResult, error) {
	var result SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}
	return &result, nil
}

