package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	gumbelMaxIter = 200
	gumbelTol     = 1e-12
)

// GumbelFit holds the parameters of a Gumbel (maxima) distribution.
type GumbelFit struct {
	Loc   float64
	Scale float64
}

// FitGumbel estimates Gumbel parameters by maximum likelihood.
//
// The scale solves β − x̄ + Σxᵢe^{−xᵢ/β} / Σe^{−xᵢ/β} = 0, which is increasing
// in β and has a single root whenever the sample has spread. The root is found
// with Newton steps kept inside a shrinking bracket; the location follows as
// −β·ln(mean(e^{−xᵢ/β})). Values are shifted by the sample minimum so the
// exponentials never overflow.
func FitGumbel(x []float64) (GumbelFit, error) {
	n := len(x)
	if n < 2 {
		return GumbelFit{}, fmt.Errorf("%w: %d values", ErrDegenerateSample, n)
	}
	xmin := math.Inf(1)
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return GumbelFit{}, fmt.Errorf("%w: non-finite value", ErrDegenerateSample)
		}
		xmin = math.Min(xmin, v)
	}
	_, sd := stat.MeanStdDev(x, nil)
	if sd == 0 || math.IsNaN(sd) {
		return GumbelFit{}, fmt.Errorf("%w: zero variance", ErrDegenerateSample)
	}

	z := make([]float64, n)
	var zbar float64
	for i, v := range x {
		z[i] = v - xmin
		zbar += z[i]
	}
	zbar /= float64(n)

	// f(β) < 0 near zero and f(z̄) > 0.
	lo, hi := zbar*1e-9, zbar
	beta := sd * math.Sqrt(6) / math.Pi
	if beta <= lo || beta >= hi {
		beta = 0.5 * (lo + hi)
	}

	converged := false
	for range gumbelMaxIter {
		a, b, c := weightedMoments(z, beta)
		f := beta - zbar + b/a
		if math.Abs(f) <= gumbelTol*math.Max(1, zbar) {
			converged = true
			break
		}
		if f < 0 {
			lo = beta
		} else {
			hi = beta
		}

		wmean := b / a
		fprime := 1 + (c/a-wmean*wmean)/(beta*beta)
		next := beta - f/fprime
		if math.IsNaN(next) || next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		if math.Abs(next-beta) <= gumbelTol*beta {
			beta = next
			converged = true
			break
		}
		beta = next
	}
	if !converged || beta <= 0 || math.IsNaN(beta) {
		return GumbelFit{}, ErrFitDiverged
	}

	a, _, _ := weightedMoments(z, beta)
	loc := xmin - beta*math.Log(a/float64(n))
	if math.IsNaN(loc) || math.IsInf(loc, 0) {
		return GumbelFit{}, ErrFitDiverged
	}
	return GumbelFit{Loc: loc, Scale: beta}, nil
}

// weightedMoments returns Σw, Σz·w and Σz²·w with w = e^{−z/β}.
func weightedMoments(z []float64, beta float64) (a, b, c float64) {
	for _, zi := range z {
		w := math.Exp(-zi / beta)
		a += w
		b += zi * w
		c += zi * zi * w
	}
	return a, b, c
}

// ReturnLevel returns the value exceeded on average once every T years, i.e. the
// Gumbel quantile at non-exceedance probability 1 − 1/T.
func (g GumbelFit) ReturnLevel(T float64) (float64, error) {
	if math.IsNaN(T) || math.IsInf(T, 0) || T <= 1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidReturnPeriod, T)
	}
	if !(g.Scale > 0) {
		return 0, fmt.Errorf("%w: scale %v", ErrDegenerateSample, g.Scale)
	}
	p := 1 - 1/T
	return distuv.GumbelRight{Mu: g.Loc, Beta: g.Scale}.Quantile(p), nil
}
