package indicator

// MACDResult — три выровненные с входом серии.
// Line валидна с индекса slow-1, Signal и Histogram — с slow+signalW-2.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD: line = EMA(fast) - EMA(slow); signal = EMA(line, signalW); hist = line - signal.
func MACD(closes []float64, fast, slow, signalW int) (MACDResult, error) {
	need := slow + signalW - 1
	if fast <= 0 || slow <= fast || signalW <= 0 || len(closes) < need {
		return MACDResult{}, insufficient("MACD", need, len(closes))
	}

	emaFast, err := EMA(closes, fast)
	if err != nil {
		return MACDResult{}, err
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return MACDResult{}, err
	}

	line := nans(len(closes))
	for i := slow - 1; i < len(closes); i++ {
		line[i] = emaFast[i] - emaSlow[i]
	}

	// сигнальная линия считается по валидному хвосту line и выравнивается обратно
	sigTail, err := EMA(line[slow-1:], signalW)
	if err != nil {
		return MACDResult{}, err
	}
	signal := nans(len(closes))
	copy(signal[slow-1:], sigTail)

	hist := nans(len(closes))
	for i := slow + signalW - 2; i < len(closes); i++ {
		hist[i] = line[i] - signal[i]
	}

	return MACDResult{Line: line, Signal: signal, Histogram: hist}, nil
}
