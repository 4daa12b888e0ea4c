package search

import (
	"encoding/json"
	"testing"

	"farewatch/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProfile = Profile{AnchorHour: 5, DiscountCardCode: "WEEKEND_PASS", DiscountCardLabel: "Carte Avantage Adulte"}

func testJourney() model.Journey {
	return model.Journey{
		Origin:       "Paris",
		Destination:  "Marseille",
		OutboundDate: "2026-12-18",
		OutboundTime: "08:18",
		ReturnDate:   "2026-12-21",
		ReturnTime:   "17:04",
		CurrentPrice: decimal.NewFromInt(90),
	}
}

func TestBuildRequest(t *testing.T) {
	req, err := BuildRequest(testJourney(), testProfile)
	require.NoError(t, err)

	assert.Equal(t, "2026-12-18T05:00:00.000Z", req.Schedule.Outward.Date)
	assert.Equal(t, "2026-12-21T05:00:00.000Z", req.Schedule.Inward.Date)
	require.NotNil(t, req.Schedule.Outward.ArrivalAt)
	assert.False(t, *req.Schedule.Outward.ArrivalAt)
	assert.Nil(t, req.Schedule.Inward.ArrivalAt)
	assert.Equal(t, "Paris", req.MainJourney.Origin.Label)
	assert.Equal(t, "Marseille", req.MainJourney.Destination.Label)

	require.Len(t, req.Passengers, 1)
	p := req.Passengers[0]
	assert.Equal(t, "passenger-1", p.ID)
	assert.Equal(t, "ADULT", p.Typology)
	require.Len(t, p.DiscountCards, 1)
	assert.Equal(t, DiscountCard{Code: "WEEKEND_PASS", Label: "Carte Avantage Adulte", IsChecked: true}, p.DiscountCards[0])
	assert.Equal(t, "SHOP", req.Branch)
	assert.True(t, req.ForceDisplay)
	assert.True(t, req.TrainExpected)
}

func TestBuildRequest_IgnoresTargetTimes(t *testing.T) {
	j := testJourney()
	a, err := BuildRequest(j, testProfile)
	require.NoError(t, err)

	j.OutboundTime = "21:45"
	j.ReturnTime = "06:10"
	b, err := BuildRequest(j, testProfile)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestBuildRequest_AnchorHour(t *testing.T) {
	req, err := BuildRequest(testJourney(), Profile{AnchorHour: 7})
	require.NoError(t, err)
	assert.Equal(t, "2026-12-18T07:00:00.000Z", req.Schedule.Outward.Date)
}

func TestBuildRequest_InvalidDates(t *testing.T) {
	for _, mutate := range []func(*model.Journey){
		func(j *model.Journey) { j.OutboundDate = "18/12/2026" },
		func(j *model.Journey) { j.ReturnDate = "2026-02-30" },
		func(j *model.Journey) { j.ReturnDate = "" },
	} {
		j := testJourney()
		mutate(&j)
		_, err := BuildRequest(j, testProfile)
		assert.ErrorIs(t, err, ErrInvalidDate)
	}
}

func TestRequest_JSONShape(t *testing.T) {
	req, err := BuildRequest(testJourney(), testProfile)
	require.NoError(t, err)

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	schedule := doc["schedule"].(map[string]any)
	outward := schedule["outward"].(map[string]any)
	assert.Equal(t, false, outward["arrivalAt"])
	assert.NotContains(t, schedule["inward"].(map[string]any), "arrivalAt")
	assert.Equal(t, []any{}, doc["transporterLabels"])
	assert.Equal(t, []any{}, doc["pets"])
	origin := doc["mainJourney"].(map[string]any)["origin"].(map[string]any)
	assert.Equal(t, []any{}, origin["codes"])
	assert.Equal(t, false, origin["geolocation"])
}
