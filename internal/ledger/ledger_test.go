package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"binary_bot/internal/models"
	"binary_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InfoLogger = zap.NewNop()
	logger.FatalLogger = zap.NewNop()
	m.Run()
}

func newService() *Service {
	return NewService(NewMemoryStore(), []string{"EUR-USD", "GBP-USD"}, 1.0, 0.80)
}

func TestGetOrCreateAccount_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	first, err := svc.GetOrCreateAccount(ctx, 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Balance != 0 || first.RiskPct != 1.0 || first.Paused {
		t.Errorf("defaults: balance=%.2f risk=%.2f paused=%v", first.Balance, first.RiskPct, first.Paused)
	}

	second, err := svc.GetOrCreateAccount(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.ID != first.ID || second.Balance != first.Balance || second.RiskPct != first.RiskPct {
		t.Errorf("second call must return the same account: %+v vs %+v", first, second)
	}
}

func TestSetConfig(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if err := svc.SetConfig(ctx, 1, 500, 2.5); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	acc, _ := svc.GetOrCreateAccount(ctx, 1)
	if acc.Balance != 500 || acc.RiskPct != 2.5 {
		t.Errorf("got balance=%.2f risk=%.2f", acc.Balance, acc.RiskPct)
	}

	// перезапись безусловная, не аддитивная
	if err := svc.SetConfig(ctx, 1, 100, 1.0); err != nil {
		t.Fatalf("SetConfig overwrite: %v", err)
	}
	acc, _ = svc.GetOrCreateAccount(ctx, 1)
	if acc.Balance != 100 {
		t.Errorf("overwrite: balance=%.2f, want 100", acc.Balance)
	}
}

func TestSetConfig_RejectsNonFinite(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	var verr *ValidationError
	err := svc.SetConfig(ctx, 1, math.NaN(), 1.0)
	if !errors.As(err, &verr) || verr.Field != "balance" {
		t.Errorf("NaN balance: want ValidationError{balance}, got %v", err)
	}

	err = svc.SetConfig(ctx, 1, 100, math.Inf(1))
	if !errors.As(err, &verr) || verr.Field != "riskPct" {
		t.Errorf("Inf riskPct: want ValidationError{riskPct}, got %v", err)
	}

	// состояние не изменилось
	acc, _ := svc.GetOrCreateAccount(ctx, 1)
	if acc.Balance != 0 || acc.RiskPct != 1.0 {
		t.Errorf("state must be untouched: %+v", acc)
	}
}

func TestOpenTrade_StakeFromCurrentRisk(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if err := svc.SetConfig(ctx, 7, 200, 1.5); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	id, stake, err := svc.OpenTrade(ctx, 7, models.SideCall, "EUR-USD", "5m", 0.80, "test")
	if err != nil {
		t.Fatalf("OpenTrade: %v", err)
	}
	if id == 0 {
		t.Error("trade id must be assigned")
	}
	if stake != 3.00 {
		t.Errorf("stake = %.2f, want 3.00", stake)
	}
}

func TestOpenTrade_ZeroBalanceIsValid(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, stake, err := svc.OpenTrade(ctx, 8, models.SidePut, "GBP-USD", "5m", 0.80, "")
	if err != nil {
		t.Fatalf("zero-balance OpenTrade must not fail: %v", err)
	}
	if stake != 0 {
		t.Errorf("stake = %.2f, want 0", stake)
	}
}

func TestSettleTrade(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_ = svc.SetConfig(ctx, 7, 200, 1.5)
	id, _, _ := svc.OpenTrade(ctx, 7, models.SideCall, "EUR-USD", "5m", 0.80, "")

	delta, balance, err := svc.SettleTrade(ctx, 7, id, models.ResultWin)
	if err != nil {
		t.Fatalf("settle WIN: %v", err)
	}
	if math.Abs(delta-2.40) > 1e-9 {
		t.Errorf("WIN delta = %.2f, want +2.40", delta)
	}
	if math.Abs(balance-202.40) > 1e-9 {
		t.Errorf("balance = %.2f, want 202.40", balance)
	}

	// повторное закрытие — жёсткая ошибка, баланс не трогаем
	_, _, err = svc.SettleTrade(ctx, 7, id, models.ResultLoss)
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("double settle: want ErrAlreadySettled, got %v", err)
	}
	acc, _ := svc.GetOrCreateAccount(ctx, 7)
	if math.Abs(acc.Balance-202.40) > 1e-9 {
		t.Errorf("balance changed on rejected settle: %.2f", acc.Balance)
	}

	// LOSS списывает stake, снятый при открытии
	id2, _, _ := svc.OpenTrade(ctx, 7, models.SidePut, "EUR-USD", "5m", 0.80, "")
	delta, _, err = svc.SettleTrade(ctx, 7, id2, models.ResultLoss)
	if err != nil {
		t.Fatalf("settle LOSS: %v", err)
	}
	if math.Abs(delta+3.04) > 1e-9 { // 202.40 * 1.5% = 3.04 (округление до копеек)
		t.Errorf("LOSS delta = %.2f, want -3.04", delta)
	}
}

func TestSettleTrade_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, _, err := svc.SettleTrade(ctx, 1, 999, models.ResultWin)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	// сделка чужого аккаунта тоже NotFound
	_ = svc.SetConfig(ctx, 2, 100, 1)
	id, _, _ := svc.OpenTrade(ctx, 2, models.SideCall, "EUR-USD", "5m", 0.80, "")
	_, _, err = svc.SettleTrade(ctx, 3, id, models.ResultWin)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign trade: want ErrNotFound, got %v", err)
	}
}

func TestSettleTrade_RejectsBadOutcome(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	var verr *ValidationError
	_, _, err := svc.SettleTrade(ctx, 1, 1, models.ResultOpen)
	if !errors.As(err, &verr) || verr.Field != "outcome" {
		t.Fatalf("want ValidationError{outcome}, got %v", err)
	}
}

func TestSettleTrade_ConcurrentExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_ = svc.SetConfig(ctx, 7, 200, 1.5)
	id, _, _ := svc.OpenTrade(ctx, 7, models.SideCall, "EUR-USD", "5m", 0.80, "")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.SettleTrade(ctx, 7, id, models.ResultWin)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadySettled):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("exactly one settle must win, got %d", won)
	}
	acc, _ := svc.GetOrCreateAccount(ctx, 7)
	if math.Abs(acc.Balance-202.40) > 1e-9 {
		t.Errorf("balance = %.2f, want 202.40 (delta applied once)", acc.Balance)
	}
}

func TestDailyStats(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	// stake 10: баланс 1000, риск 1%; payout 0.8
	_ = svc.SetConfig(ctx, 5, 1000, 1.0)
	for i := 0; i < 2; i++ {
		id, stake, _ := svc.OpenTrade(ctx, 5, models.SideCall, "EUR-USD", "5m", 0.80, "")
		if stake != 10 {
			t.Fatalf("stake = %.2f, want 10", stake)
		}
		_ = svc.SetConfig(ctx, 5, 1000, 1.0) // держим stake=10 для следующей сделки
		if _, _, err := svc.SettleTrade(ctx, 5, id, models.ResultWin); err != nil {
			t.Fatalf("settle: %v", err)
		}
		_ = svc.SetConfig(ctx, 5, 1000, 1.0)
	}
	id, _, _ := svc.OpenTrade(ctx, 5, models.SidePut, "EUR-USD", "5m", 0.80, "")
	if _, _, err := svc.SettleTrade(ctx, 5, id, models.ResultLoss); err != nil {
		t.Fatalf("settle loss: %v", err)
	}
	// открытая сделка в статистику не входит
	_ = svc.SetConfig(ctx, 5, 1000, 1.0)
	_, _, _ = svc.OpenTrade(ctx, 5, models.SideCall, "EUR-USD", "5m", 0.80, "")

	st, err := svc.DailyStats(ctx, 5, time.Time{})
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if st.Wins != 2 || st.Losses != 1 {
		t.Errorf("wins=%d losses=%d, want 2/1", st.Wins, st.Losses)
	}
	if math.Abs(st.WinRate-200.0/3.0) > 1e-6 {
		t.Errorf("winRate = %.2f, want ~66.67", st.WinRate)
	}
	if math.Abs(st.NetPnl-6.0) > 1e-9 {
		t.Errorf("netPnl = %.2f, want 6.00", st.NetPnl)
	}
}

func TestDailyStats_EmptyIsZero(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	st, err := svc.DailyStats(ctx, 9, time.Time{})
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if st.Wins != 0 || st.Losses != 0 || st.WinRate != 0 || st.NetPnl != 0 {
		t.Errorf("empty stats must be zero: %+v", st)
	}
}

func TestStartOfUTCDay(t *testing.T) {
	in := time.Date(2024, 3, 5, 17, 42, 11, 0, time.FixedZone("MSK", 3*3600))
	got := StartOfUTCDay(in)
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfUTCDay = %v, want %v", got, want)
	}
}
