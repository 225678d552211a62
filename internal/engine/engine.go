// Package engine — движок решений: превращает серии свечей двух таймфреймов
// в CALL / PUT / "нет сигнала" с человекочитаемым объяснением.
package engine

import (
	"errors"
	"fmt"

	"binary_bot/internal/models"
)

// Engine — то, что дергает Runner по каждому символу.
type Engine interface {
	// Evaluate принимает сетап-серию (медленный ТФ) и подтверждающую серию
	// (быстрый ТФ) одного символа. Нехватка истории — это не ошибка,
	// а Evaluation без сигнала с причиной.
	Evaluate(setup, confirm models.BarSeries) models.Evaluation

	// RequiredBars — сколько баров нужно каждой серии.
	RequiredBars() (setupBars, confirmBars int)
}

const (
	StrategyLayered = "layered"
	StrategySimple  = "simple"
)

// ErrMisconfigured — пороги несовместимы; фатально на старте, не per-request.
var ErrMisconfigured = errors.New("misconfigured thresholds")

// Config — пороги движка. Все опции независимы друг от друга.
type Config struct {
	Strategy string `yaml:"strategy"` // layered | simple

	TrendWindowFast int `yaml:"trend_window_fast"`
	TrendWindowSlow int `yaml:"trend_window_slow"`

	RSIPeriod  int     `yaml:"rsi_period"`
	RSICallMax float64 `yaml:"rsi_call_max"`
	RSIPutMin  float64 `yaml:"rsi_put_min"`

	ConfirmRSICall float64 `yaml:"confirm_rsi_call"`
	ConfirmRSIPut  float64 `yaml:"confirm_rsi_put"`

	BBWindow    int     `yaml:"bb_window"`
	BBDeviation float64 `yaml:"bb_deviation"`
	// Доля ширины канала, в пределах которой close считается "у полосы".
	// Предусловие конфигурации: < 0.5, иначе зоны CALL и PUT пересекаются.
	BandToleranceFraction float64 `yaml:"band_tolerance_fraction"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	ATRWindow int `yaml:"atr_window"`

	// Пороги simple-варианта (ранняя итерация стратегии).
	SimpleTrendFast  int     `yaml:"simple_trend_fast"`
	SimpleTrendSlow  int     `yaml:"simple_trend_slow"`
	SimpleRSICallMax float64 `yaml:"simple_rsi_call_max"`
	SimpleRSIPutMin  float64 `yaml:"simple_rsi_put_min"`
	ATRMeanWindow    int     `yaml:"atr_mean_window"`
}

// DefaultConfig — рабочие дефолты активного layered-варианта.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategyLayered,

		TrendWindowFast: 9,
		TrendWindowSlow: 21,

		RSIPeriod:  14,
		RSICallMax: 38,
		RSIPutMin:  62,

		ConfirmRSICall: 50,
		ConfirmRSIPut:  50,

		BBWindow:              20,
		BBDeviation:           2.0,
		BandToleranceFraction: 0.15,

		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,

		ATRWindow: 14,

		SimpleTrendFast:  50,
		SimpleTrendSlow:  200,
		SimpleRSICallMax: 38,
		SimpleRSIPutMin:  62,
		ATRMeanWindow:    20,
	}
}

// Validate отбраковывает несовместимые пороги. Зовётся при загрузке конфига.
func (c Config) Validate() error {
	if c.Strategy != StrategyLayered && c.Strategy != StrategySimple {
		return fmt.Errorf("unknown strategy %q: %w", c.Strategy, ErrMisconfigured)
	}
	if c.TrendWindowFast <= 0 || c.TrendWindowSlow <= 0 || c.TrendWindowFast >= c.TrendWindowSlow {
		return fmt.Errorf("trend windows: fast=%d must be < slow=%d: %w",
			c.TrendWindowFast, c.TrendWindowSlow, ErrMisconfigured)
	}
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("rsi_period=%d: %w", c.RSIPeriod, ErrMisconfigured)
	}
	if c.BandToleranceFraction <= 0 || c.BandToleranceFraction >= 0.5 {
		return fmt.Errorf("band_tolerance_fraction=%.3f must be in (0, 0.5): %w",
			c.BandToleranceFraction, ErrMisconfigured)
	}
	if c.BBWindow <= 0 || c.BBDeviation <= 0 {
		return fmt.Errorf("bollinger window=%d dev=%.2f: %w", c.BBWindow, c.BBDeviation, ErrMisconfigured)
	}
	if c.MACDFast <= 0 || c.MACDSlow <= c.MACDFast || c.MACDSignal <= 0 {
		return fmt.Errorf("macd %d/%d/%d: %w", c.MACDFast, c.MACDSlow, c.MACDSignal, ErrMisconfigured)
	}
	if c.ATRWindow <= 0 {
		return fmt.Errorf("atr_window=%d: %w", c.ATRWindow, ErrMisconfigured)
	}
	if c.Strategy == StrategySimple {
		if c.SimpleTrendFast <= 0 || c.SimpleTrendFast >= c.SimpleTrendSlow {
			return fmt.Errorf("simple trend windows %d/%d: %w",
				c.SimpleTrendFast, c.SimpleTrendSlow, ErrMisconfigured)
		}
		if c.ATRMeanWindow <= 1 {
			return fmt.Errorf("atr_mean_window=%d: %w", c.ATRMeanWindow, ErrMisconfigured)
		}
	}
	return nil
}

// New — фабрика по конфигу, как у стратегий: один вариант на деплой.
func New(cfg Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Strategy {
	case StrategySimple:
		return &Simple{cfg: cfg}, nil
	default:
		return &Layered{cfg: cfg}, nil
	}
}

func maxInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
