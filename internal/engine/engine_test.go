package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"binary_bot/internal/models"
)

func series(symbol, interval string, closes []float64) models.BarSeries {
	bars := make([]models.Bar, len(closes))
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.Bar{
			Open:  c,
			High:  c + 0.0005,
			Low:   c - 0.0005,
			Close: c,
			Time:  base.Add(time.Duration(i) * time.Minute),
		}
	}
	return models.BarSeries{Symbol: symbol, Interval: interval, Bars: bars}
}

func flatSeries(symbol, interval string, n int) models.BarSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 1.1000
	}
	return series(symbol, interval, closes)
}

func newLayered(t *testing.T) *Layered {
	t.Helper()
	eng, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng.(*Layered)
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must be valid: %v", err)
	}

	overlap := DefaultConfig()
	overlap.BandToleranceFraction = 0.6 // зоны CALL и PUT пересеклись бы
	if err := overlap.Validate(); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("band tolerance 0.6: want ErrMisconfigured, got %v", err)
	}

	inverted := DefaultConfig()
	inverted.TrendWindowFast = 30
	inverted.TrendWindowSlow = 10
	if err := inverted.Validate(); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("fast>=slow: want ErrMisconfigured, got %v", err)
	}

	badStrategy := DefaultConfig()
	badStrategy.Strategy = "merged"
	if err := badStrategy.Validate(); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("unknown strategy: want ErrMisconfigured, got %v", err)
	}
}

func TestNewPicksVariant(t *testing.T) {
	cfg := DefaultConfig()
	eng, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := eng.(*Layered); !ok {
		t.Errorf("default strategy: want *Layered, got %T", eng)
	}

	cfg.Strategy = StrategySimple
	eng, err = New(cfg)
	if err != nil {
		t.Fatalf("New simple: %v", err)
	}
	if _, ok := eng.(*Simple); !ok {
		t.Errorf("strategy=simple: want *Simple, got %T", eng)
	}
}

func TestLayeredEvaluate_InsufficientSetupData(t *testing.T) {
	e := newLayered(t)
	ev := e.Evaluate(flatSeries("EUR-USD", "15m", 10), flatSeries("EUR-USD", "1m", 100))
	if ev.Side != models.SideNone {
		t.Fatalf("want no signal, got %s", ev.Side)
	}
	if !strings.Contains(ev.Reason, "недостаточно данных") || !strings.Contains(ev.Reason, "15m") {
		t.Errorf("reason must name the short series: %q", ev.Reason)
	}
}

func TestLayeredEvaluate_InsufficientConfirmData(t *testing.T) {
	e := newLayered(t)
	ev := e.Evaluate(flatSeries("EUR-USD", "15m", 100), flatSeries("EUR-USD", "1m", 5))
	if ev.Side != models.SideNone {
		t.Fatalf("want no signal, got %s", ev.Side)
	}
	if !strings.Contains(ev.Reason, "1m") {
		t.Errorf("reason must name the confirm series: %q", ev.Reason)
	}
}

func TestLayeredEvaluate_FlatSeriesHasNoSetup(t *testing.T) {
	// плоская серия: нулевая ширина канала, зоны нет
	e := newLayered(t)
	ev := e.Evaluate(flatSeries("EUR-USD", "15m", 100), flatSeries("EUR-USD", "1m", 100))
	if ev.Side != models.SideNone {
		t.Fatalf("want no signal, got %s", ev.Side)
	}
	if !strings.Contains(ev.Reason, "нет сетапа") {
		t.Errorf("reason: %q", ev.Reason)
	}
}

func TestLayeredDecideSetup_CallFixture(t *testing.T) {
	// цена у нижней полосы, RSI15=25 (<=38), свежий бычий кросс MACD
	e := newLayered(t)
	v := setupView{
		close: 1.0010, trend: "down",
		rsi:   25,
		upper: 1.0200, lower: 1.0000, width: 0.0200,
		macd: 0.0002, macdPrev: -0.0010,
		signal: 0.0001, signalPrev: -0.0005,
		hist: 0.0001, histPrev: -0.0005,
	}
	side, why := e.decideSetup(v)
	if side != models.SideCall {
		t.Fatalf("want CALL, got %q", side)
	}
	joined := strings.Join(why, ", ")
	if !strings.Contains(joined, "бычий кросс") {
		t.Errorf("rationale must name the MACD cross: %q", joined)
	}
}

func TestLayeredDecideSetup_PutFixture(t *testing.T) {
	// зеркально: у верхней полосы, RSI15=75, медвежий кросс
	e := newLayered(t)
	v := setupView{
		close: 1.0190, trend: "up",
		rsi:   75,
		upper: 1.0200, lower: 1.0000, width: 0.0200,
		macd: -0.0002, macdPrev: 0.0010,
		signal: 0.0001, signalPrev: 0.0005,
		hist: -0.0003, histPrev: 0.0005,
	}
	side, _ := e.decideSetup(v)
	if side != models.SidePut {
		t.Fatalf("want PUT, got %q", side)
	}
}

func TestLayeredDecideSetup_RejectsNeutralRSI(t *testing.T) {
	e := newLayered(t)
	v := setupView{
		close: 1.0010, trend: "down",
		rsi:   45, // выше rsi_call_max=38
		upper: 1.0200, lower: 1.0000, width: 0.0200,
		macd: 0.0002, macdPrev: -0.0010,
		signal: 0.0001, signalPrev: -0.0005,
		hist: 0.0001, histPrev: -0.0005,
	}
	if side, _ := e.decideSetup(v); side != models.SideNone {
		t.Fatalf("want no candidate, got %q", side)
	}
}

func TestLayeredDecideSetup_HistogramSlopeAloneSuffices(t *testing.T) {
	// кросса нет, но гистограмма растёт — MACD-условие это OR
	e := newLayered(t)
	v := setupView{
		close: 1.0010, trend: "down",
		rsi:   25,
		upper: 1.0200, lower: 1.0000, width: 0.0200,
		macd: -0.0004, macdPrev: -0.0006,
		signal: -0.0001, signalPrev: -0.0001,
		hist: -0.0003, histPrev: -0.0005,
	}
	side, why := e.decideSetup(v)
	if side != models.SideCall {
		t.Fatalf("want CALL, got %q", side)
	}
	if !strings.Contains(strings.Join(why, ", "), "гистограмма растёт") {
		t.Errorf("rationale must name the histogram condition: %v", why)
	}
}

func TestLayeredDecideSetup_ZonesAreExclusive(t *testing.T) {
	e := newLayered(t)
	v := setupView{
		close: 1.0010, // только зона CALL при tol=0.15
		rsi:   75, trend: "down",
		upper: 1.0200, lower: 1.0000, width: 0.0200,
		macd: -0.0002, macdPrev: 0.0010,
		signal: 0.0001, signalPrev: 0.0005,
		hist: -0.0003, histPrev: 0.0005,
	}
	// RSI и MACD говорят PUT, но цена у нижней полосы — PUT-зоны нет
	if side, _ := e.decideSetup(v); side != models.SideNone {
		t.Fatalf("want no candidate, got %q", side)
	}
}

func TestLayeredDecideConfirm(t *testing.T) {
	e := newLayered(t)

	// CALL: MACD выше сигнальной — достаточно
	if ok, _ := e.decideConfirm(models.SideCall, confirmView{rsi: 40, rsiPrev: 40, macd: 0.2, signal: 0.1}); !ok {
		t.Error("macd above signal must confirm CALL")
	}
	// CALL: RSI пересёк 50 вверх — достаточно
	if ok, _ := e.decideConfirm(models.SideCall, confirmView{rsi: 55, rsiPrev: 45, macd: -0.2, signal: 0.1}); !ok {
		t.Error("rsi cross up must confirm CALL")
	}
	// CALL: ни то ни другое
	if ok, _ := e.decideConfirm(models.SideCall, confirmView{rsi: 45, rsiPrev: 46, macd: -0.2, signal: 0.1}); ok {
		t.Error("nothing fired, must not confirm")
	}
	// PUT: MACD ниже сигнальной
	if ok, _ := e.decideConfirm(models.SidePut, confirmView{rsi: 60, rsiPrev: 60, macd: -0.2, signal: 0.1}); !ok {
		t.Error("macd below signal must confirm PUT")
	}
	// PUT: RSI пересёк 50 вниз
	if ok, _ := e.decideConfirm(models.SidePut, confirmView{rsi: 45, rsiPrev: 55, macd: 0.2, signal: 0.1}); !ok {
		t.Error("rsi cross down must confirm PUT")
	}
}

func TestSimpleDecideSetup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategySimple
	eng, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := eng.(*Simple)

	// тренд вверх + низкий RSI + живой ATR -> CALL
	if side, _ := e.decideSetup(simpleView{trend: "up", rsi: 30, atr: 2, atrMean: 1}); side != models.SideCall {
		t.Errorf("want CALL, got %q", side)
	}
	// мёртвый рынок: ATR не выше среднего
	if side, _ := e.decideSetup(simpleView{trend: "up", rsi: 30, atr: 1, atrMean: 1}); side != models.SideNone {
		t.Errorf("flat ATR: want no candidate, got %q", side)
	}
	// тренд вниз + высокий RSI -> PUT
	if side, _ := e.decideSetup(simpleView{trend: "down", rsi: 70, atr: 2, atrMean: 1}); side != models.SidePut {
		t.Errorf("want PUT, got %q", side)
	}
	// нейтральный RSI — нет кандидата
	if side, _ := e.decideSetup(simpleView{trend: "up", rsi: 50, atr: 2, atrMean: 1}); side != models.SideNone {
		t.Errorf("neutral RSI: want no candidate, got %q", side)
	}
}

func TestSimpleEvaluate_TrendingSeriesWithoutPullbackHasNoSetup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategySimple
	eng, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// монотонный рост: RSI=100, отката нет — сетапа нет
	closes := make([]float64, 450)
	for i := range closes {
		closes[i] = 1.0 + float64(i)*0.001
	}
	ev := eng.Evaluate(series("EUR-USD", "15m", closes), flatSeries("EUR-USD", "1m", 10))
	if ev.Side != models.SideNone {
		t.Fatalf("want no signal, got %s", ev.Side)
	}
}
