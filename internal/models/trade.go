package models

import "time"

// Side — направление сигнала.
type Side string

const (
	SideNone Side = ""
	SideCall Side = "CALL"
	SidePut  Side = "PUT"
)

// TradeResult — состояние сделки. OPEN -> WIN|LOSS ровно один раз,
// обратных переходов нет.
type TradeResult string

const (
	ResultOpen TradeResult = "OPEN"
	ResultWin  TradeResult = "WIN"
	ResultLoss TradeResult = "LOSS"
)

// Trade — append-only запись в журнале сделок. Stake и Payout снапшотятся
// при открытии и больше не меняются: расчёт при закрытии идёт только по ним.
type Trade struct {
	ID          int64
	AccountID   int64
	OpenedAt    time.Time
	Side        Side
	Asset       string
	ExpiryLabel string
	Payout      float64
	Stake       float64
	Note        string
	Result      TradeResult
}

// Delta — изменение баланса при закрытии с данным исходом.
func (t Trade) Delta(outcome TradeResult) float64 {
	if outcome == ResultWin {
		return t.Stake * t.Payout
	}
	return -t.Stake
}
