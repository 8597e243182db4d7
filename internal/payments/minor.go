package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a major-unit decimal amount to the integer minor units
// the provider charges. The conversion must be exact: an amount that does not
// map to a whole number of minor units is rejected rather than rounded, so
// the ledger amount and the charged amount can never drift apart.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", amount)
	}
	minor := amount.Mul(hundred)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s is not representable in minor units", amount)
	}
	return minor.IntPart(), nil
}
