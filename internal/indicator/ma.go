package indicator

// SMA — простое скользящее среднее. Валидно с индекса window-1.
func SMA(vals []float64, window int) ([]float64, error) {
	if window <= 0 || len(vals) < window {
		return nil, insufficient("SMA", window, len(vals))
	}
	out := nans(len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}

// EMA — экспоненциальное среднее, сид = SMA первых window значений,
// k = 2/(window+1). Валидно с индекса window-1.
func EMA(vals []float64, window int) ([]float64, error) {
	if window <= 0 || len(vals) < window {
		return nil, insufficient("EMA", window, len(vals))
	}
	out := nans(len(vals))
	k := 2.0 / float64(window+1)

	seed := 0.0
	for i := 0; i < window; i++ {
		seed += vals[i]
	}
	out[window-1] = seed / float64(window)

	for i := window; i < len(vals); i++ {
		out[i] = vals[i]*k + out[i-1]*(1-k)
	}
	return out, nil
}
