// Package runner — оркестрация анализа: выкачать бары, прогнать движок,
// собрать результаты по всем парам. Никаких сделок здесь: открытие идёт
// строго после того, как решение вернулось вызывающему.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"binary_bot/internal/engine"
	"binary_bot/internal/models"
	"binary_bot/pkg/logger"
)

// BarSource — то, что умеет отдавать серию свечей. Реализуется marketdata.
type BarSource interface {
	FetchBars(ctx context.Context, symbol, interval string, limit int) (models.BarSeries, error)
}

type Config struct {
	SetupInterval   string        // медленный ТФ, обычно 15m
	ConfirmInterval string        // быстрый ТФ, обычно 1m
	TaskTimeout     time.Duration // на один символ в батче
}

// Runner — один на процесс, каждый анализ независим, общего мутабельного
// состояния между конкурентными задачами нет.
type Runner struct {
	src  BarSource
	eng  engine.Engine
	pool *Pool
	cfg  Config
}

func New(src BarSource, eng engine.Engine, pool *Pool, cfg Config) *Runner {
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 25 * time.Second
	}
	return &Runner{src: src, eng: eng, pool: pool, cfg: cfg}
}

// Analyze — полный цикл по одному символу: fetch -> индикаторы -> решение.
// Ошибка здесь — только отказ провайдера; "нет сигнала" ошибкой не является.
func (r *Runner) Analyze(ctx context.Context, symbol string) (ev models.Evaluation, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.Analyze")
	span.SetTag("symbol", symbol)
	defer span.Finish()

	needSetup, needConfirm := r.eng.RequiredBars()

	setup, err := r.src.FetchBars(ctx, symbol, r.cfg.SetupInterval, needSetup)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("runner.Analyze %s: %w", symbol, err)
	}
	confirm, err := r.src.FetchBars(ctx, symbol, r.cfg.ConfirmInterval, needConfirm)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("runner.Analyze %s: %w", symbol, err)
	}

	ev = r.eng.Evaluate(setup, confirm)
	logger.Info("runner: %s -> %s (%s)", symbol, sideLabel(ev.Side), ev.Reason)
	return ev, nil
}

// AnalyzeAll — фан-аут по парам через общий пул. Задачи, не уложившиеся в
// таймаут или упавшие на провайдере, выпадают из агрегата, батч не валят.
// Порядок результатов — порядок подачи, не порядок завершения.
func (r *Runner) AnalyzeAll(ctx context.Context, symbols []string) []models.Evaluation {
	type slot struct {
		ev models.Evaluation
		ok bool
	}
	slots := make([]slot, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		i, symbol := i, symbol
		wg.Add(1)
		submitted := r.pool.Submit(ctx, func() {
			defer wg.Done()

			taskCtx, cancel := context.WithTimeout(ctx, r.cfg.TaskTimeout)
			defer cancel()

			ev, err := r.Analyze(taskCtx, symbol)
			if err != nil {
				logger.Error("runner: batch task %s dropped: %v", symbol, err)
				return
			}
			slots[i] = slot{ev: ev, ok: true}
		})
		if !submitted {
			wg.Done()
		}
	}
	wg.Wait()

	out := make([]models.Evaluation, 0, len(symbols))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.ev)
		}
	}
	return out
}

func sideLabel(s models.Side) string {
	if s == models.SideNone {
		return "no-signal"
	}
	return string(s)
}
