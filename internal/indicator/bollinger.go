package indicator

import "math"

// Bands — полосы Боллинджера, выровнены со входом, валидны с индекса window-1.
type Bands struct {
	Basis []float64
	Upper []float64
	Lower []float64
}

// Bollinger: basis = SMA(window), stdev — популяционное отклонение по тому же окну.
func Bollinger(closes []float64, window int, dev float64) (Bands, error) {
	if window <= 0 || len(closes) < window {
		return Bands{}, insufficient("Bollinger", window, len(closes))
	}
	basis, err := SMA(closes, window)
	if err != nil {
		return Bands{}, err
	}

	upper := nans(len(closes))
	lower := nans(len(closes))
	for i := window - 1; i < len(closes); i++ {
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - basis[i]
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(window))
		upper[i] = basis[i] + dev*sd
		lower[i] = basis[i] - dev*sd
	}
	return Bands{Basis: basis, Upper: upper, Lower: lower}, nil
}
