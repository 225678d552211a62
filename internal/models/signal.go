package models

// Evaluation — ответ движка по одному символу.
// Side == SideNone означает "нет сигнала", Reason объясняет почему.
type Evaluation struct {
	Symbol string
	Side   Side
	Reason string
}

// Actionable — есть ли направленное решение.
func (e Evaluation) Actionable() bool { return e.Side != SideNone }

// DailyStats — агрегаты по закрытым сделкам с начала суток (UTC).
type DailyStats struct {
	Wins    int
	Losses  int
	WinRate float64 // 0 если закрытых сделок нет
	NetPnl  float64
}
