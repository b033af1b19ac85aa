package payment

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/jwalitptl/salon-api/internal/model"
)

// rateScale keeps four decimals of a percentage rate as an integer.
const rateScale = 10000

// Commission returns amount * ratePercent / 100 rounded half away from zero
// to the cent. The arithmetic is done on integers so the result does not
// depend on float rounding of the amount.
func Commission(amount model.Cents, ratePercent float64) (model.Cents, error) {
	if math.IsNaN(ratePercent) || ratePercent < 0 || ratePercent > 100 {
		return 0, fmt.Errorf("commission rate %v outside [0, 100]", ratePercent)
	}
	if amount < 0 || amount > model.MaxCents {
		return 0, fmt.Errorf("amount %s outside [0, %s]", amount, model.MaxCents)
	}
	rate := uint64(math.Round(ratePercent * rateScale))
	hi, lo := bits.Mul64(uint64(amount), rate)
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("commission on %s overflows", amount)
	}
	return model.Cents(divRound(int64(lo), 100*rateScale)), nil
}

// divRound divides rounding half away from zero. d must be positive.
func divRound(n, d int64) int64 {
	q, r := n/d, n%d
	if r < 0 {
		r = -r
	}
	if 2*r >= d {
		if n < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}
