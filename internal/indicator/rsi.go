package indicator

// RSI — индекс относительной силы со сглаживанием Уайлдера, шкала 0-100.
// 100, когда средний убыток равен нулю. Валидно с индекса window.
func RSI(closes []float64, window int) ([]float64, error) {
	if window <= 0 || len(closes) < window+1 {
		return nil, insufficient("RSI", window+1, len(closes))
	}
	out := nans(len(closes))

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= window; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	p := float64(window)
	for i := window + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		// Wilder: avg = (prev*(n-1) + x) / n
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
