package indicator

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// Series helpers. Undefined values are NaN; a rolling window containing
// any NaN yields NaN, and a window is defined only once it is full.

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func isClean(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// windowed runs a ta-lib rolling function on a NaN-free input and
// masks the warm-up region ta-lib fills with zeros. Inputs with gaps
// fall back to a per-window evaluation.
func windowed(x []float64, n int, lib func([]float64, int) []float64, each func([]float64) float64) []float64 {
	if n < 1 || len(x) < n {
		return nans(len(x))
	}
	if n > 1 && isClean(x) {
		out := lib(x, n)
		for i := 0; i < n-1; i++ {
			out[i] = math.NaN()
		}
		return out
	}
	return rolling(x, n, each)
}

func rolling(x []float64, n int, fn func([]float64) float64) []float64 {
	out := nans(len(x))
outer:
	for i := n - 1; i < len(x); i++ {
		w := x[i-n+1 : i+1]
		for _, v := range w {
			if math.IsNaN(v) {
				continue outer
			}
		}
		out[i] = fn(w)
	}
	return out
}

func sma(x []float64, n int) []float64 {
	return windowed(x, n, talib.Sma, mean)
}

func wma(x []float64, n int) []float64 {
	return windowed(x, n, talib.Wma, weightedMean)
}

func rollingMax(x []float64, n int) []float64 {
	return windowed(x, n, talib.Max, maxOf)
}

func rollingMin(x []float64, n int) []float64 {
	return windowed(x, n, talib.Min, minOf)
}

func rollingSum(x []float64, n int) []float64 {
	return rolling(x, n, sum)
}

// momentum is x[t] - x[t-n]
func momentum(x []float64, n int) []float64 {
	if len(x) <= n || !isClean(x) {
		out := nans(len(x))
		for i := n; i < len(x); i++ {
			out[i] = x[i] - x[i-n]
		}
		return out
	}
	out := talib.Mom(x, n)
	for i := 0; i < n; i++ {
		out[i] = math.NaN()
	}
	return out
}

// ewm is an exponentially weighted mean with recursive weights, seeded
// with the first defined value and reported once minPeriods values
// have been observed.
func ewm(x []float64, alpha float64, minPeriods int) []float64 {
	out := nans(len(x))
	var y float64
	seen := 0
	for i, v := range x {
		if math.IsNaN(v) {
			if seen > 0 && seen >= minPeriods {
				out[i] = y
			}
			continue
		}
		if seen == 0 {
			y = v
		} else {
			y = alpha*v + (1-alpha)*y
		}
		seen++
		if seen >= minPeriods {
			out[i] = y
		}
	}
	return out
}

// ema uses span n, alpha = 2/(n+1)
func ema(x []float64, n int) []float64 {
	return ewm(x, 2/float64(n+1), n)
}

func shift(x []float64, k int) []float64 {
	out := nans(len(x))
	for i := k; i < len(x); i++ {
		out[i] = x[i-k]
	}
	return out
}

func zip(a, b []float64, fn func(a, b float64) float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = fn(a[i], b[i])
	}
	return out
}

func scale(x []float64, k float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * k
	}
	return out
}

func sum(w []float64) float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

func mean(w []float64) float64 {
	return sum(w) / float64(len(w))
}

func weightedMean(w []float64) float64 {
	var s, d float64
	for i, v := range w {
		s += v * float64(i+1)
		d += float64(i + 1)
	}
	return s / d
}

func meanAbsDev(w []float64) float64 {
	m := mean(w)
	var s float64
	for _, v := range w {
		s += math.Abs(v - m)
	}
	return s / float64(len(w))
}

func maxOf(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func sub(a, b float64) float64 { return a - b }

func div(a, b float64) float64 { return a / b }

func midpoint(a, b float64) float64 { return 0.5 * (a + b) }
