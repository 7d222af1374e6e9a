package domain

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// round rounds v half to even to the given number of decimals. Ties are
// judged on the exact binary value of v, so 2.675 (stored just below the tie)
// rounds to 2.67 and 0.25 rounds to 0.2.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r := new(big.Rat).SetFloat64(v)
	// The denominator is a power of two 2^k, so k decimals represent r exactly.
	exact := decimal.NewFromBigRat(r, int32(r.Denom().BitLen()))
	return exact.RoundBank(places).InexactFloat64()
}

func round2(v float64) float64 { return round(v, 2) }

func round1(v float64) float64 { return round(v, 1) }

func ptr(v float64) *float64 { return &v }
