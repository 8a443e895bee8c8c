package indicator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"techtrack/pkg/model"
)

// ErrEmptySeries is returned when there are no bars to compute on
var ErrEmptySeries = errors.New("empty series")

// Frame is a daily series extended with indicator columns. Row i of
// every column is aligned with Bars()[i].
type Frame struct {
	bars           []model.Bar
	cols           [numColumns][]float64
	ma50AboveMA200 []bool
}

// Compute sorts a copy of bars by date, validates it and computes every
// indicator column. Rows without enough history hold NaN for the
// affected column. Malformed input is reported as one joined error.
func Compute(bars []model.Bar) (f *Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			f = nil
			err = fmt.Errorf("calculating indicators: %v", r)
		}
	}()

	sorted, err := prepare(bars)
	if err != nil {
		return nil, fmt.Errorf("calculating indicators: %w", err)
	}

	f = &Frame{bars: sorted}
	f.compute()
	return f, nil
}

func prepare(bars []model.Bar) ([]model.Bar, error) {
	if len(bars) == 0 {
		return nil, ErrEmptySeries
	}

	sorted := make([]model.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var errs []error
	for i, b := range sorted {
		day := b.Date.Format("2006-01-02")
		for _, p := range []struct {
			name string
			v    float64
		}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
			if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
				errs = append(errs, fmt.Errorf("%s: %s must be a positive number, got %v", day, p.name, p.v))
			}
		}
		if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
			errs = append(errs, fmt.Errorf("%s: volume must be non-negative, got %v", day, b.Volume))
		}
		if i > 0 && civil(sorted[i-1].Date) == civil(b.Date) {
			errs = append(errs, fmt.Errorf("%s: duplicate date", day))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return sorted, nil
}

func (f *Frame) compute() {
	n := len(f.bars)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	typical := make([]float64, n)
	median := make([]float64, n)
	for i, b := range f.bars {
		high[i], low[i], closes[i], volume[i] = b.High, b.Low, b.Close, b.Volume
		typical[i] = (b.High + b.Low + b.Close) / 3
		median[i] = (b.High + b.Low) / 2
	}

	c := &f.cols

	for col, w := range map[Column]int{SMA5: 5, SMA10: 10, SMA20: 20, SMA30: 30, SMA50: 50, SMA100: 100, SMA200: 200} {
		c[col] = sma(closes, w)
	}
	for col, w := range map[Column]int{EMA10: 10, EMA13: 13, EMA20: 20, EMA30: 30, EMA50: 50, EMA100: 100, EMA200: 200} {
		c[col] = ema(closes, w)
	}

	pv := zip(typical, volume, func(a, b float64) float64 { return a * b })
	c[VWMA20] = clean(zip(rollingSum(pv, 20), rollingSum(volume, 20), div))
	c[HullMA9] = hull(closes, 9)

	c[IchimokuConversion] = zip(rollingMax(high, 9), rollingMin(low, 9), midpoint)
	c[IchimokuBase] = zip(rollingMax(high, 26), rollingMin(low, 26), midpoint)
	c[IchimokuSpanA] = zip(c[IchimokuConversion], c[IchimokuBase], midpoint)
	c[IchimokuSpanB] = zip(rollingMax(high, 52), rollingMin(low, 52), midpoint)

	c[RSI14] = rsi(closes, 14)
	c[StochK], c[StochD] = stochastic(high, low, closes, 14, 3)
	c[CCI20] = cci(typical, 20)
	c[ADX14], c[DMIPlus], c[DMIMinus] = adx(high, low, closes, 14)
	c[AO] = zip(sma(median, 5), sma(median, 34), sub)
	c[Momentum10] = momentum(closes, 10)
	c[MACD], c[MACDSignal] = macd(closes, 12, 26, 9)
	c[StochRSIK], c[StochRSID] = stochRSI(c[RSI14], 14, 3, 3)
	c[WilliamsR] = williamsR(high, low, closes, 14)
	c[UO] = ultimate(high, low, closes, 7, 14, 28)

	c[BullPower] = scale(zip(high, c[EMA13], sub), 1000)
	c[BearPower] = scale(zip(low, c[EMA13], sub), 1000)

	deviation := func(ma []float64) []float64 {
		return clean(zip(closes, ma, func(p, m float64) float64 { return (p - m) / m * 100 }))
	}
	c[CloseVsMA5] = deviation(c[SMA5])
	c[CloseVsMA10] = deviation(c[SMA10])
	c[CloseVsMA20] = deviation(c[SMA20])
	c[CloseVsMA50] = deviation(c[SMA50])
	c[CloseVsMA200] = deviation(c[SMA200])

	c[StrengthST] = make([]float64, n)
	c[StrengthLT] = make([]float64, n)
	for i := 0; i < n; i++ {
		st := c[CloseVsMA5][i] + c[CloseVsMA10][i] + c[CloseVsMA20][i]
		c[StrengthST][i] = st / 3
		c[StrengthLT][i] = (st + c[CloseVsMA50][i] + c[CloseVsMA200][i]) / 5
	}

	for dst, src := range lagged {
		c[dst] = shift(c[src], 1)
	}

	for i := range c {
		clean(c[i])
	}

	f.ma50AboveMA200 = make([]bool, n)
	for i := 0; i < n; i++ {
		f.ma50AboveMA200[i] = c[SMA50][i] > c[SMA200][i]
	}
}

// clean turns infinities from zero divisors into NaN, in place
func clean(x []float64) []float64 {
	for i, v := range x {
		if math.IsInf(v, 0) {
			x[i] = math.NaN()
		}
	}
	return x
}

// hull is WMA(2*WMA(n/2) - WMA(n), round(sqrt(n)))
func hull(x []float64, n int) []float64 {
	half := wma(x, n/2)
	full := wma(x, n)
	raw := zip(half, full, func(h, f float64) float64 { return 2*h - f })
	return wma(raw, int(math.Round(math.Sqrt(float64(n)))))
}

// rsi uses Wilder smoothing (alpha 1/n) of up and down moves; a zero
// average loss reads as 100.
func rsi(closes []float64, n int) []float64 {
	up := make([]float64, len(closes))
	down := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			up[i] = d
		} else if d < 0 {
			down[i] = -d
		}
	}
	alpha := 1 / float64(n)
	avgUp := ewm(up, alpha, n)
	avgDown := ewm(down, alpha, n)

	out := nans(len(closes))
	for i := range out {
		if math.IsNaN(avgUp[i]) || math.IsNaN(avgDown[i]) {
			continue
		}
		if avgDown[i] == 0 {
			out[i] = 100
			continue
		}
		out[i] = 100 - 100/(1+avgUp[i]/avgDown[i])
	}
	return out
}

func stochastic(high, low, closes []float64, n, smooth int) (k, d []float64) {
	ll := rollingMin(low, n)
	hh := rollingMax(high, n)
	k = make([]float64, len(closes))
	for i := range closes {
		k[i] = 100 * (closes[i] - ll[i]) / (hh[i] - ll[i])
	}
	clean(k)
	return k, sma(k, smooth)
}

func cci(typical []float64, n int) []float64 {
	m := sma(typical, n)
	mad := rolling(typical, n, meanAbsDev)
	out := make([]float64, len(typical))
	for i := range typical {
		out[i] = (typical[i] - m[i]) / (0.015 * mad[i])
	}
	return clean(out)
}

// adx returns Wilder's ADX with the +DI and -DI lines
func adx(high, low, closes []float64, n int) (adxLine, plusDI, minusDI []float64) {
	size := len(closes)
	adxLine, plusDI, minusDI = nans(size), nans(size), nans(size)
	if size <= n {
		return adxLine, plusDI, minusDI
	}

	tr := make([]float64, size)
	plusDM := make([]float64, size)
	minusDM := make([]float64, size)
	for i := 1; i < size; i++ {
		tr[i] = math.Max(high[i], closes[i-1]) - math.Min(low[i], closes[i-1])
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	fn := float64(n)
	var str, spdm, smdm float64
	for i := 1; i <= n; i++ {
		str += tr[i]
		spdm += plusDM[i]
		smdm += minusDM[i]
	}

	dx := nans(size)
	for i := n; i < size; i++ {
		if i > n {
			str = str - str/fn + tr[i]
			spdm = spdm - spdm/fn + plusDM[i]
			smdm = smdm - smdm/fn + minusDM[i]
		}
		var p, m float64
		if str != 0 {
			p = 100 * spdm / str
			m = 100 * smdm / str
		}
		plusDI[i], minusDI[i] = p, m
		dx[i] = 0
		if p+m != 0 {
			dx[i] = 100 * math.Abs(p-m) / (p + m)
		}
	}

	first := 2*n - 1
	if size <= first {
		return adxLine, plusDI, minusDI
	}
	var s float64
	for i := n; i <= first; i++ {
		s += dx[i]
	}
	adxLine[first] = s / fn
	for i := first + 1; i < size; i++ {
		adxLine[i] = (adxLine[i-1]*(fn-1) + dx[i]) / fn
	}
	return adxLine, plusDI, minusDI
}

// macd returns the fast-slow EMA spread and its signal line, both x1000
func macd(closes []float64, fast, slow, signal int) (line, sig []float64) {
	spread := zip(ema(closes, fast), ema(closes, slow), sub)
	sig = ewm(spread, 2/float64(signal+1), signal)
	return scale(spread, 1000), scale(sig, 1000)
}

// stochRSI returns smoothed %K and %D of the stochastic RSI, x100
func stochRSI(r []float64, n, smoothK, smoothD int) (k, d []float64) {
	lo := rollingMin(r, n)
	hi := rollingMax(r, n)
	raw := make([]float64, len(r))
	for i := range r {
		raw[i] = (r[i] - lo[i]) / (hi[i] - lo[i])
	}
	clean(raw)
	smoothed := sma(raw, smoothK)
	return scale(smoothed, 100), scale(sma(smoothed, smoothD), 100)
}

func williamsR(high, low, closes []float64, n int) []float64 {
	hh := rollingMax(high, n)
	ll := rollingMin(low, n)
	out := make([]float64, len(closes))
	for i := range closes {
		out[i] = -100 * (hh[i] - closes[i]) / (hh[i] - ll[i])
	}
	return clean(out)
}

// ultimate is the Ultimate Oscillator with 4/2/1 weights
func ultimate(high, low, closes []float64, short, medium, long int) []float64 {
	size := len(closes)
	bp := nans(size)
	tr := nans(size)
	if size > 0 {
		tr[0] = high[0] - low[0]
	}
	for i := 1; i < size; i++ {
		prev := closes[i-1]
		bp[i] = closes[i] - math.Min(low[i], prev)
		tr[i] = math.Max(high[i], prev) - math.Min(low[i], prev)
	}
	avg := func(w int) []float64 {
		return clean(zip(rollingSum(bp, w), rollingSum(tr, w), div))
	}
	a, b, c := avg(short), avg(medium), avg(long)
	out := make([]float64, size)
	for i := range out {
		out[i] = 100 * (4*a[i] + 2*b[i] + c[i]) / 7
	}
	return out
}
