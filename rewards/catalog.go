/*
Package rewards provides the feeding reward catalog and the redemption
engine that debits the weekly balance in exchange for a reward grant.

CATALOG:
  A small static tier list, ordered by ascending cost. Kibble is the
  zero-cost starter: it is what the cat eats by default, not a purchasable
  reward, so it never appears among affordable redemptions.

    Kibble        0 pt   🍚  (starter)
    Churu        30 pt   🍥
    Salmon       60 pt   🐟
    Premium Tuna 100 pt  🍣

  UnlockAt is the display threshold at which the tier stops rendering as
  locked in the weekly progress view; it is distinct from Cost, which is
  what a redemption actually debits.

SEE ALSO:
  - engine.go: redemption against the weekly balance
  - points/balance.go: the balance being debited
*/
package rewards

// Tier is one catalog entry. Immutable reference data, not user-owned.
type Tier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	UnlockAt int    `json:"unlock_at"`
	Glyph    string `json:"glyph"`
}

// Starter reports whether this is the free default tier.
func (t Tier) Starter() bool { return t.Cost == 0 }

// catalog is ordered by ascending cost.
var catalog = []Tier{
	{ID: "kibble", Name: "Kibble", Cost: 0, UnlockAt: 10, Glyph: "🍚"},
	{ID: "churu", Name: "Churu", Cost: 30, UnlockAt: 30, Glyph: "🍥"},
	{ID: "salmon", Name: "Salmon", Cost: 60, UnlockAt: 60, Glyph: "🐟"},
	{ID: "premium-tuna", Name: "Premium Tuna", Cost: 100, UnlockAt: 100, Glyph: "🍣"},
}

// Catalog returns all tiers, ascending by cost.
func Catalog() []Tier {
	out := make([]Tier, len(catalog))
	copy(out, catalog)
	return out
}

// TierByID looks up a tier.
func TierByID(id string) (Tier, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// AffordableTiers returns the tiers with 0 < cost <= balance, ascending by
// cost. The starter tier is excluded: it is the implicit default, not a
// paid reward.
func AffordableTiers(balance int) []Tier {
	var out []Tier
	for _, t := range catalog {
		if !t.Starter() && t.Cost <= balance {
			out = append(out, t)
		}
	}
	return out
}

// TierForPoints returns the highest tier whose cost fits in points. Used for
// displaying what this week's earning pace is on track for, which is
// distinct from what is redeemable now. Falls back to the starter tier.
func TierForPoints(pts int) Tier {
	best := catalog[0]
	for _, t := range catalog {
		if t.Cost <= pts {
			best = t
		}
	}
	return best
}
