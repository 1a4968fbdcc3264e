// Package pricing turns a reference price and a PPP ratio into a storefront
// price: the ideal target is computed exactly and then snapped to the
// nearest price point the storefront allows.
package pricing

import (
	"github.com/shopspring/decimal"

	"ppp-pricing/internal/errors"
)

// ComputeTargetPrice returns base * ratio. The result is not rounded;
// rounding happens only when a price point is matched.
func ComputeTargetPrice(base, ratio decimal.Decimal) (decimal.Decimal, error) {
	if !base.IsPositive() {
		return decimal.Zero, errors.InvalidInput("base price must be positive").
			WithContext("base", base.String())
	}
	if !ratio.IsPositive() {
		return decimal.Zero, errors.InvalidInput("ratio must be positive").
			WithContext("ratio", ratio.String())
	}
	return base.Mul(ratio), nil
}
