package indicator

import "math"

// ATR — средний истинный диапазон со сглаживанием Уайлдера.
// TR = max(high-low, |high-prevClose|, |low-prevClose|). Валидно с индекса window.
func ATR(highs, lows, closes []float64, window int) ([]float64, error) {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nil, insufficient("ATR", window+1, len(closes))
	}
	if window <= 0 || len(closes) < window+1 {
		return nil, insufficient("ATR", window+1, len(closes))
	}
	out := nans(len(closes))

	seed := 0.0
	for i := 1; i <= window; i++ {
		seed += trueRange(highs[i], lows[i], closes[i-1])
	}
	out[window] = seed / float64(window)

	p := float64(window)
	for i := window + 1; i < len(closes); i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1])
		out[i] = (out[i-1]*(p-1) + tr) / p
	}
	return out, nil
}

func trueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}
