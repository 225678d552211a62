// Package ledger — баланс, риск и жизненный цикл сделок per-account.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"binary_bot/internal/models"
	"binary_bot/pkg/logger"
)

// Service — операции леджера поверх Store. Пауза аккаунта проверяется
// оркестратором (Telegram-шеллом), не здесь: read-only операции доступны всегда.
type Service struct {
	store        Store
	defaultPairs []string
	riskPct      float64
	payout       float64
}

func NewService(store Store, defaultPairs []string, riskPct, payout float64) *Service {
	if riskPct <= 0 {
		riskPct = models.DefaultRiskPct
	}
	if payout <= 0 {
		payout = models.DefaultPayout
	}
	return &Service{store: store, defaultPairs: defaultPairs, riskPct: riskPct, payout: payout}
}

// GetOrCreateAccount создаёт аккаунт лениво при первом обращении:
// баланс 0, риск 1%, без паузы. Повторные вызовы возвращают тот же аккаунт.
func (s *Service) GetOrCreateAccount(ctx context.Context, id int64) (acc *models.Account, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("ledger.GetOrCreateAccount: %w", err)
		}
	}()

	acc, err = s.store.GetAccount(ctx, id)
	if err == nil {
		return acc, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	acc = models.NewAccount(id, s.defaultPairs)
	acc.RiskPct = s.riskPct
	acc.Settings.Payout = s.payout
	if err = s.store.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}
	logger.Info("ledger: created account %d", id)
	return acc, nil
}

// SetConfig безусловно перезаписывает баланс и риск (не аддитивно).
// Значения обязаны быть конечными числами.
func (s *Service) SetConfig(ctx context.Context, id int64, balance, riskPct float64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("ledger.SetConfig: %w", err)
		}
	}()

	if math.IsNaN(balance) || math.IsInf(balance, 0) {
		return &ValidationError{Field: "balance", Value: formatFloat(balance)}
	}
	if math.IsNaN(riskPct) || math.IsInf(riskPct, 0) {
		return &ValidationError{Field: "riskPct", Value: formatFloat(riskPct)}
	}

	acc, err := s.GetOrCreateAccount(ctx, id)
	if err != nil {
		return err
	}
	acc.Balance = balance
	acc.RiskPct = riskPct
	return s.store.SaveAccount(ctx, acc)
}

// SetPaused ставит/снимает паузу. Сам леджер сделки не блокирует.
func (s *Service) SetPaused(ctx context.Context, id int64, paused bool) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("ledger.SetPaused: %w", err)
		}
	}()

	acc, err := s.GetOrCreateAccount(ctx, id)
	if err != nil {
		return err
	}
	acc.Paused = paused
	return s.store.SaveAccount(ctx, acc)
}

// OpenTrade считает ставку от ТЕКУЩИХ баланса/риска и пишет сделку с
// result=OPEN. Нулевая ставка (баланс 0) — валидна: сигнал есть, входа нет.
func (s *Service) OpenTrade(
	ctx context.Context,
	accountID int64,
	side models.Side,
	asset, expiryLabel string,
	payout float64,
	note string,
) (tradeID int64, stake float64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("ledger.OpenTrade: %w", err)
		}
	}()

	acc, err := s.GetOrCreateAccount(ctx, accountID)
	if err != nil {
		return 0, 0, err
	}

	stake = round2(acc.Balance * acc.RiskPct / 100.0)
	tr := &models.Trade{
		AccountID:   accountID,
		OpenedAt:    time.Now().UTC(),
		Side:        side,
		Asset:       asset,
		ExpiryLabel: expiryLabel,
		Payout:      payout,
		Stake:       stake,
		Note:        note,
		Result:      models.ResultOpen,
	}
	tradeID, err = s.store.InsertTrade(ctx, tr)
	if err != nil {
		return 0, 0, err
	}
	logger.Info("ledger: opened trade %d acc=%d %s %s stake=%.2f", tradeID, accountID, side, asset, stake)
	return tradeID, stake, nil
}

// SettleTrade закрывает сделку: WIN -> +stake*payout, LOSS -> -stake.
// Ошибки закрытия наверх не глотаются — это целостность финансового состояния.
func (s *Service) SettleTrade(
	ctx context.Context,
	accountID, tradeID int64,
	outcome models.TradeResult,
) (delta, newBalance float64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("ledger.SettleTrade: %w", err)
		}
	}()

	if outcome != models.ResultWin && outcome != models.ResultLoss {
		return 0, 0, &ValidationError{Field: "outcome", Value: string(outcome)}
	}

	_, delta, newBalance, err = s.store.SettleTrade(ctx, accountID, tradeID, outcome)
	if err != nil {
		return 0, 0, err
	}
	logger.Info("ledger: settled trade %d acc=%d %s delta=%+.2f balance=%.2f",
		tradeID, accountID, outcome, delta, newBalance)
	return delta, newBalance, nil
}

// DailyStats — агрегаты по закрытым сделкам с момента since;
// нулевой since означает начало текущих суток UTC. Чистое чтение.
func (s *Service) DailyStats(ctx context.Context, accountID int64, since time.Time) (st models.DailyStats, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("ledger.DailyStats: %w", err)
		}
	}()

	if since.IsZero() {
		since = StartOfUTCDay(time.Now())
	}
	trades, err := s.store.SettledSince(ctx, accountID, since)
	if err != nil {
		return models.DailyStats{}, err
	}

	for _, tr := range trades {
		switch tr.Result {
		case models.ResultWin:
			st.Wins++
			st.NetPnl += tr.Stake * tr.Payout
		case models.ResultLoss:
			st.Losses++
			st.NetPnl -= tr.Stake
		}
	}
	if total := st.Wins + st.Losses; total > 0 {
		st.WinRate = float64(st.Wins) / float64(total) * 100.0
	}
	return st, nil
}

// StartOfUTCDay — полночь UTC тех же суток.
func StartOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
