package deal

import "farewatch/internal/model"

// Evaluate returns a deal when the offer is strictly cheaper than the price
// the traveler already paid.
func Evaluate(j model.Journey, offer *model.BestOffer) (model.Deal, bool) {
	if offer == nil || !offer.Price.LessThan(j.CurrentPrice) {
		return model.Deal{}, false
	}
	return model.Deal{
		Journey:  j,
		NewPrice: offer.Price,
		Savings:  j.CurrentPrice.Sub(offer.Price),
		Offer:    *offer,
	}, true
}
