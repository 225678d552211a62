// Package pattern — свечные паттерны по двум соседним барам.
package pattern

// BullishEngulfing: последняя свеча бычья, предыдущая медвежья, и тело
// последней полностью накрывает тело предыдущей.
func BullishEngulfing(prevOpen, prevClose, lastOpen, lastClose float64) bool {
	return lastClose > lastOpen &&
		prevClose < prevOpen &&
		lastClose >= max(prevOpen, prevClose) &&
		lastOpen <= min(prevOpen, prevClose)
}

// BearishEngulfing — зеркальное условие.
func BearishEngulfing(prevOpen, prevClose, lastOpen, lastClose float64) bool {
	return lastClose < lastOpen &&
		prevClose > prevOpen &&
		lastOpen >= max(prevOpen, prevClose) &&
		lastClose <= min(prevOpen, prevClose)
}
