package pattern

import "testing"

func TestBullishEngulfing(t *testing.T) {
	cases := []struct {
		name                               string
		prevOpen, prevClose, lastOpen, lastClose float64
		want                               bool
	}{
		{"engulfs bearish body", 10, 9, 8.5, 10.5, true},
		{"exact body match", 10, 9, 9, 10, true},
		{"last candle bearish", 10, 9, 10.5, 8.5, false},
		{"prev candle bullish", 9, 10, 8.5, 10.5, false},
		{"body not contained above", 10, 9, 9.5, 9.8, false},
		{"body not contained below", 10, 9, 9.5, 10.5, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := BullishEngulfing(c.prevOpen, c.prevClose, c.lastOpen, c.lastClose)
			if got != c.want {
				t.Errorf("BullishEngulfing(%v,%v,%v,%v) = %v, want %v",
					c.prevOpen, c.prevClose, c.lastOpen, c.lastClose, got, c.want)
			}
		})
	}
}

func TestBearishEngulfing(t *testing.T) {
	cases := []struct {
		name                               string
		prevOpen, prevClose, lastOpen, lastClose float64
		want                               bool
	}{
		{"engulfs bullish body", 9, 10, 10.5, 8.5, true},
		{"exact body match", 9, 10, 10, 9, true},
		{"last candle bullish", 9, 10, 8.5, 10.5, false},
		{"prev candle bearish", 10, 9, 10.5, 8.5, false},
		{"body not contained", 9, 10, 9.8, 9.2, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := BearishEngulfing(c.prevOpen, c.prevClose, c.lastOpen, c.lastClose)
			if got != c.want {
				t.Errorf("BearishEngulfing(%v,%v,%v,%v) = %v, want %v",
					c.prevOpen, c.prevClose, c.lastOpen, c.lastClose, got, c.want)
			}
		})
	}
}
