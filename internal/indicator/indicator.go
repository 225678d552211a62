// Package indicator считает технические индикаторы по сериям свечей.
//
// Все функции — чистые: принимают колонки []float64, возвращают слайс той же
// длины. Значения внутри warm-up региона — NaN, читать их нельзя; минимальная
// длина входа проверяется и при нехватке истории возвращается
// ErrInsufficientHistory, частичных расчётов нет.
package indicator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientHistory — в серии меньше баров, чем нужно индикатору.
var ErrInsufficientHistory = errors.New("insufficient history")

func insufficient(name string, need, got int) error {
	return fmt.Errorf("%s: need %d bars, got %d: %w", name, need, got, ErrInsufficientHistory)
}

// nans возвращает слайс, целиком заполненный NaN.
func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
