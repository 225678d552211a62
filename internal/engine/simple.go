package engine

import (
	"errors"
	"fmt"
	"strings"

	"binary_bot/internal/indicator"
	"binary_bot/internal/models"
	"binary_bot/internal/pattern"
)

// Simple — ранняя итерация движка: тренд EMA50/EMA200, один RSI-порог,
// фильтр волатильности по ATR и обязательное поглощение на быстром ТФ.
// Не дефолт; включается strategy: simple. Одновременно с layered не работает.
type Simple struct {
	cfg Config
}

func (e *Simple) RequiredBars() (int, int) {
	setup := maxInt(
		2*e.cfg.SimpleTrendSlow,
		e.cfg.RSIPeriod+1,
		e.cfg.ATRWindow+e.cfg.ATRMeanWindow,
	)
	return setup, 2
}

type simpleView struct {
	trend   string
	rsi     float64
	atr     float64
	atrMean float64
}

func (e *Simple) Evaluate(setup, confirm models.BarSeries) models.Evaluation {
	needSetup, needConfirm := e.RequiredBars()
	if setup.Len() < needSetup {
		return noSignal(setup.Symbol, reasonInsufficient(setup.Interval))
	}
	if confirm.Len() < needConfirm {
		return noSignal(setup.Symbol, reasonInsufficient(confirm.Interval))
	}

	v, err := e.computeSetup(setup)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			return noSignal(setup.Symbol, reasonInsufficient(setup.Interval))
		}
		return noSignal(setup.Symbol, err.Error())
	}

	side, why := e.decideSetup(v)
	if side == models.SideNone {
		return noSignal(setup.Symbol, fmt.Sprintf("%s: нет сетапа", setup.Interval))
	}

	prev := confirm.Bars[confirm.Len()-2]
	lastBar := confirm.Bars[confirm.Len()-1]
	engulf := false
	if side == models.SideCall {
		engulf = pattern.BullishEngulfing(prev.Open, prev.Close, lastBar.Open, lastBar.Close)
	} else {
		engulf = pattern.BearishEngulfing(prev.Open, prev.Close, lastBar.Open, lastBar.Close)
	}
	if !engulf {
		return noSignal(setup.Symbol, "сетап без подтверждения")
	}
	why = append(why, fmt.Sprintf("%s: поглощение", confirm.Interval))

	return models.Evaluation{
		Symbol: setup.Symbol,
		Side:   side,
		Reason: strings.Join(why, ", "),
	}
}

func (e *Simple) computeSetup(s models.BarSeries) (simpleView, error) {
	closes := s.Closes()
	last := len(closes) - 1

	emaFast, err := indicator.EMA(closes, e.cfg.SimpleTrendFast)
	if err != nil {
		return simpleView{}, err
	}
	emaSlow, err := indicator.EMA(closes, e.cfg.SimpleTrendSlow)
	if err != nil {
		return simpleView{}, err
	}
	rsi, err := indicator.RSI(closes, e.cfg.RSIPeriod)
	if err != nil {
		return simpleView{}, err
	}
	atr, err := indicator.ATR(s.Highs(), s.Lows(), closes, e.cfg.ATRWindow)
	if err != nil {
		return simpleView{}, err
	}

	mean := 0.0
	for i := last - e.cfg.ATRMeanWindow + 1; i <= last; i++ {
		mean += atr[i]
	}
	mean /= float64(e.cfg.ATRMeanWindow)

	trend := "down"
	if emaFast[last] > emaSlow[last] {
		trend = "up"
	}
	return simpleView{trend: trend, rsi: rsi[last], atr: atr[last], atrMean: mean}, nil
}

func (e *Simple) decideSetup(v simpleView) (models.Side, []string) {
	// рынок должен быть живой: текущий ATR выше своего среднего
	if v.atr <= v.atrMean {
		return models.SideNone, nil
	}
	if v.trend == "up" && v.rsi <= e.cfg.SimpleRSICallMax {
		return models.SideCall, []string{
			"тренд up (EMA50>EMA200)",
			fmt.Sprintf("RSI=%.1f≤%.0f", v.rsi, e.cfg.SimpleRSICallMax),
			"ATR выше среднего",
		}
	}
	if v.trend == "down" && v.rsi >= e.cfg.SimpleRSIPutMin {
		return models.SidePut, []string{
			"тренд down (EMA50<EMA200)",
			fmt.Sprintf("RSI=%.1f≥%.0f", v.rsi, e.cfg.SimpleRSIPutMin),
			"ATR выше среднего",
		}
	}
	return models.SideNone, nil
}
