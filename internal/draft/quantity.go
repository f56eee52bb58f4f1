package draft

import (
	"math"

	"github.com/shopspring/decimal"
)

// NormalizeQuantity clamps v to a finite value rounded to two decimal places.
// NaN and infinities collapse to zero. This is the sole arithmetic-safety
// boundary for every quantity mutation; nothing downstream re-checks.
func NormalizeQuantity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
