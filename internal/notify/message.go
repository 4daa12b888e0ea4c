package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"farewatch/internal/model"
)

func euros(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

// TotalSavings sums the savings of all deals.
func TotalSavings(deals []model.Deal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deals {
		total = total.Add(d.Savings)
	}
	return total
}

// FormatDeals renders the grouped deals message in Telegram Markdown.
func FormatDeals(deals []model.Deal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 *%d cheaper fare(s) found!*\n\n", len(deals))

	for i, d := range deals {
		j := d.Journey
		o := d.Offer
		fmt.Fprintf(&b, "*%d.* %s\n", i+1, j.Route())
		fmt.Fprintf(&b, "   📅 %s ~%s, return %s ~%s\n", j.OutboundDate, j.OutboundTime, j.ReturnDate, j.ReturnTime)
		fmt.Fprintf(&b, "   🚄 %s %s, departs %s (%s)\n", o.Transporter, o.TrainNumber, o.DepartureTime, o.Duration)
		if o.OriginStation != "" || o.DestinationStation != "" {
			fmt.Fprintf(&b, "   🚉 %s → %s\n", o.OriginStation, o.DestinationStation)
		}
		fmt.Fprintf(&b, "   🎫 %s, %s class\n", o.FareName, classLabel(o.ComfortClass))
		fmt.Fprintf(&b, "   💰 %s instead of %s\n", euros(d.NewPrice), euros(j.CurrentPrice))
		fmt.Fprintf(&b, "   ✅ Savings: %s\n\n", euros(d.Savings))
	}

	fmt.Fprintf(&b, "💸 *Total savings: %s*", euros(TotalSavings(deals)))
	return b.String()
}

// FormatSummary renders the end-of-run summary.
func FormatSummary(s Summary) string {
	deals := "😊 No cheaper fare this time"
	if s.DealsFound > 0 {
		deals = fmt.Sprintf("🎉 %d cheaper fare(s) found, %s saved", s.DealsFound, euros(s.TotalSavings))
	}
	return fmt.Sprintf("📊 *Check summary*\n\n✅ %d journey(s) checked\n⏭️ %d skipped, ⚠️ %d failed\n%s",
		s.Checked, s.Skipped, s.Failed, deals)
}

// FormatFailure renders an error notice.
func FormatFailure(cause error) string {
	return fmt.Sprintf("❌ Fare check failed:\n```\n%v\n```", cause)
}

func classLabel(c model.ComfortClass) string {
	switch c {
	case model.ComfortClassFirst:
		return "1st"
	case model.ComfortClassSecond:
		return "2nd"
	default:
		return string(c)
	}
}
