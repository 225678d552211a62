package models

import "time"

// Bar — одна OHLC свеча. Immutable после создания.
type Bar struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Time  time.Time
}

// BarSeries — свечи одного (symbol, interval), отсортированы по времени,
// без дублей по timestamp.
type BarSeries struct {
	Symbol   string
	Interval string
	Bars     []Bar
}

func (s BarSeries) Len() int { return len(s.Bars) }

func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].Close
	}
	return out
}

func (s BarSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].High
	}
	return out
}

func (s BarSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].Low
	}
	return out
}

// Last возвращает последнюю свечу; ok=false если серия пустая.
func (s BarSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
