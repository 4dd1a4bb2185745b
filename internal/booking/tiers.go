package booking

import "strings"

// Tier is the ticket type a booking is made for.
type Tier string

const (
	TierNone     Tier = ""
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
	TierVIP      Tier = "vip"
)

// FeePerSeat is the booking fee charged for every seat, in dollars.
const FeePerSeat = 5

var tierPrices = map[Tier]int{
	TierStandard: 25,
	TierPremium:  35,
	TierVIP:      50,
}

// Tiers lists the selectable tiers in display order.
func Tiers() []Tier { return []Tier{TierStandard, TierPremium, TierVIP} }

// ParseTier maps a wire value to a Tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	_, ok := tierPrices[t]
	return t, ok
}

// Price is the per-seat price of the tier in dollars, 0 for TierNone.
func (t Tier) Price() int { return tierPrices[t] }

// Total is what n seats of the tier cost, booking fees included.
func (t Tier) Total(n int) int {
	if t == TierNone {
		return 0
	}
	return (t.Price() + FeePerSeat) * n
}

// Label is the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierStandard:
		return "Standard"
	case TierPremium:
		return "Premium"
	case TierVIP:
		return "VIP"
	}
	return "-"
}

// Summary is the price breakdown shown next to the seat map. Without a
// tier every amount is zero, whatever is selected.
type Summary struct {
	Tier      Tier
	Seats     int
	SeatCodes []string
	Subtotal  int
	Fee       int
	Total     int
}

// Summarize computes the summary for the seats with the given codes.
func Summarize(t Tier, codes []string) Summary {
	if t == TierNone {
		return Summary{}
	}
	n := len(codes)
	s := Summary{
		Tier:      t,
		Seats:     n,
		SeatCodes: codes,
		Subtotal:  t.Price() * n,
		Fee:       FeePerSeat * n,
	}
	s.Total = s.Subtotal + s.Fee
	return s
}
