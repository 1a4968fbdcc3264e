package pricing

import (
	"github.com/shopspring/decimal"

	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// Match returns the price point closest to target. On equal distance the
// lower price wins, so the result does not depend on input order.
// Non-positive points are ignored.
func Match(target decimal.Decimal, points []types.PricePoint) (types.PricePoint, error) {
	var (
		best     types.PricePoint
		bestDist decimal.Decimal
		found    bool
	)
	for _, p := range points {
		if !p.Price.IsPositive() {
			continue
		}
		dist := p.Price.Sub(target).Abs()
		switch {
		case !found:
		case dist.LessThan(bestDist):
		case dist.Equal(bestDist) && p.Price.LessThan(best.Price):
		default:
			continue
		}
		best, bestDist, found = p, dist, true
	}
	if !found {
		return types.PricePoint{}, errors.NoPricePoints("no usable price points").
			WithContext("candidates", len(points))
	}
	return best, nil
}

