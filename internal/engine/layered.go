package engine

import (
	"errors"
	"fmt"
	"strings"

	"binary_bot/internal/indicator"
	"binary_bot/internal/models"
)

// Layered — активный вариант движка: двухтаймфреймовый фильтр
// Bollinger/RSI/MACD. Сетап ищется на медленном ТФ, подтверждение — на быстром.
type Layered struct {
	cfg Config
}

func (e *Layered) RequiredBars() (int, int) {
	setup := maxInt(
		2*e.cfg.TrendWindowSlow,
		e.cfg.MACDSlow+e.cfg.MACDSignal,
		e.cfg.BBWindow+1,
		e.cfg.RSIPeriod+2,
		e.cfg.ATRWindow+1,
	)
	confirm := maxInt(
		e.cfg.MACDSlow+e.cfg.MACDSignal,
		e.cfg.RSIPeriod+2,
	)
	return setup, confirm
}

// setupView — значения индикаторов сетап-таймфрейма на последнем баре.
type setupView struct {
	close float64
	trend string // up | down

	rsi float64

	upper, lower, width float64

	macd, macdPrev     float64
	signal, signalPrev float64
	hist, histPrev     float64

	atr float64 // диагностика, в решении не участвует
}

// confirmView — значения подтверждающего таймфрейма.
type confirmView struct {
	rsi, rsiPrev float64
	macd, signal float64
}

func (e *Layered) Evaluate(setup, confirm models.BarSeries) models.Evaluation {
	needSetup, needConfirm := e.RequiredBars()
	if setup.Len() < needSetup {
		return noSignal(setup.Symbol, reasonInsufficient(setup.Interval))
	}
	if confirm.Len() < needConfirm {
		return noSignal(setup.Symbol, reasonInsufficient(confirm.Interval))
	}

	sv, err := e.computeSetup(setup)
	if err != nil {
		// индикаторные отказы не пробрасываем наверх
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			return noSignal(setup.Symbol, reasonInsufficient(setup.Interval))
		}
		return noSignal(setup.Symbol, err.Error())
	}

	side, setupWhy := e.decideSetup(sv)
	if side == models.SideNone {
		return noSignal(setup.Symbol, fmt.Sprintf("%s: нет сетапа", setup.Interval))
	}

	cv, err := e.computeConfirm(confirm)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			return noSignal(setup.Symbol, reasonInsufficient(confirm.Interval))
		}
		return noSignal(setup.Symbol, err.Error())
	}

	ok, confirmWhy := e.decideConfirm(side, cv)
	if !ok {
		return noSignal(setup.Symbol, "сетап без подтверждения")
	}

	return models.Evaluation{
		Symbol: setup.Symbol,
		Side:   side,
		Reason: strings.Join(append(setupWhy, confirmWhy), ", "),
	}
}

func (e *Layered) computeSetup(s models.BarSeries) (setupView, error) {
	closes := s.Closes()
	last := len(closes) - 1

	emaFast, err := indicator.EMA(closes, e.cfg.TrendWindowFast)
	if err != nil {
		return setupView{}, err
	}
	emaSlow, err := indicator.EMA(closes, e.cfg.TrendWindowSlow)
	if err != nil {
		return setupView{}, err
	}
	rsi, err := indicator.RSI(closes, e.cfg.RSIPeriod)
	if err != nil {
		return setupView{}, err
	}
	bands, err := indicator.Bollinger(closes, e.cfg.BBWindow, e.cfg.BBDeviation)
	if err != nil {
		return setupView{}, err
	}
	macd, err := indicator.MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	if err != nil {
		return setupView{}, err
	}
	atr, err := indicator.ATR(s.Highs(), s.Lows(), closes, e.cfg.ATRWindow)
	if err != nil {
		return setupView{}, err
	}

	trend := "down"
	if emaFast[last] > emaSlow[last] {
		trend = "up"
	}

	return setupView{
		close:      closes[last],
		trend:      trend,
		rsi:        rsi[last],
		upper:      bands.Upper[last],
		lower:      bands.Lower[last],
		width:      bands.Upper[last] - bands.Lower[last],
		macd:       macd.Line[last],
		macdPrev:   macd.Line[last-1],
		signal:     macd.Signal[last],
		signalPrev: macd.Signal[last-1],
		hist:       macd.Histogram[last],
		histPrev:   macd.Histogram[last-1],
		atr:        atr[last],
	}, nil
}

func (e *Layered) computeConfirm(s models.BarSeries) (confirmView, error) {
	closes := s.Closes()
	last := len(closes) - 1

	rsi, err := indicator.RSI(closes, e.cfg.RSIPeriod)
	if err != nil {
		return confirmView{}, err
	}
	macd, err := indicator.MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	if err != nil {
		return confirmView{}, err
	}
	return confirmView{
		rsi:     rsi[last],
		rsiPrev: rsi[last-1],
		macd:    macd.Line[last],
		signal:  macd.Signal[last],
	}, nil
}

// decideSetup — шаги 2-3: зона у полосы, RSI-порог, MACD (кросс ИЛИ наклон
// гистограммы). Возвращает кандидата и список сработавших условий.
func (e *Layered) decideSetup(v setupView) (models.Side, []string) {
	// нулевая ширина канала (плоская серия) — зоны нет вообще
	if v.width <= 0 {
		return models.SideNone, nil
	}
	tol := e.cfg.BandToleranceFraction * v.width
	callZone := v.close <= v.lower+tol
	putZone := v.close >= v.upper-tol

	if callZone && v.rsi <= e.cfg.RSICallMax {
		crossUp := v.macd > v.signal && v.macdPrev <= v.signalPrev
		histUp := v.hist > v.histPrev
		if crossUp || histUp {
			why := []string{
				"тренд " + v.trend,
				"у нижней полосы BB",
				fmt.Sprintf("RSI=%.1f≤%.0f", v.rsi, e.cfg.RSICallMax),
			}
			if crossUp {
				why = append(why, "MACD: бычий кросс")
			} else {
				why = append(why, "MACD: гистограмма растёт")
			}
			why = append(why, fmt.Sprintf("ATR=%.5f", v.atr))
			return models.SideCall, why
		}
	}

	if putZone && v.rsi >= e.cfg.RSIPutMin {
		crossDown := v.macd < v.signal && v.macdPrev >= v.signalPrev
		histDown := v.hist < v.histPrev
		if crossDown || histDown {
			why := []string{
				"тренд " + v.trend,
				"у верхней полосы BB",
				fmt.Sprintf("RSI=%.1f≥%.0f", v.rsi, e.cfg.RSIPutMin),
			}
			if crossDown {
				why = append(why, "MACD: медвежий кросс")
			} else {
				why = append(why, "MACD: гистограмма падает")
			}
			why = append(why, fmt.Sprintf("ATR=%.5f", v.atr))
			return models.SidePut, why
		}
	}

	return models.SideNone, nil
}

// decideConfirm — шаг 5: MACD на нужной стороне сигнальной ИЛИ RSI пересёк
// подтверждающий порог в нужную сторону.
func (e *Layered) decideConfirm(side models.Side, v confirmView) (bool, string) {
	if side == models.SideCall {
		if v.macd > v.signal {
			return true, "1m: MACD выше сигнальной"
		}
		if v.rsi >= e.cfg.ConfirmRSICall && v.rsiPrev < e.cfg.ConfirmRSICall {
			return true, fmt.Sprintf("1m: RSI %.1f пересёк %.0f вверх", v.rsi, e.cfg.ConfirmRSICall)
		}
		return false, ""
	}
	if v.macd < v.signal {
		return true, "1m: MACD ниже сигнальной"
	}
	if v.rsi <= e.cfg.ConfirmRSIPut && v.rsiPrev > e.cfg.ConfirmRSIPut {
		return true, fmt.Sprintf("1m: RSI %.1f пересёк %.0f вниз", v.rsi, e.cfg.ConfirmRSIPut)
	}
	return false, ""
}

func noSignal(symbol, reason string) models.Evaluation {
	return models.Evaluation{Symbol: symbol, Side: models.SideNone, Reason: reason}
}

func reasonInsufficient(interval string) string {
	return fmt.Sprintf("недостаточно данных (%s)", interval)
}
