package service

import (
	"fmt"
	"strconv"
	"strings"

	"binary_bot/internal/models"
)

func sideEmoji(s models.Side) string {
	switch s {
	case models.SideCall:
		return "🟢 CALL"
	case models.SidePut:
		return "🔴 PUT"
	}
	return "⚪️ нет сигнала"
}

func formatEvaluation(ev models.Evaluation) string {
	if !ev.Actionable() {
		return fmt.Sprintf("⚪️ %s: %s", ev.Symbol, ev.Reason)
	}
	return fmt.Sprintf("%s %s\n%s", sideEmoji(ev.Side), ev.Symbol, ev.Reason)
}

func formatEvaluations(evs []models.Evaluation, requested int) string {
	var b strings.Builder
	b.WriteString("📡 Обзор пар:\n")
	signals := 0
	for _, ev := range evs {
		if ev.Actionable() {
			signals++
			fmt.Fprintf(&b, "%s %s — %s\n", sideEmoji(ev.Side), ev.Symbol, ev.Reason)
			continue
		}
		fmt.Fprintf(&b, "⚪️ %s — %s\n", ev.Symbol, ev.Reason)
	}
	if dropped := requested - len(evs); dropped > 0 {
		fmt.Fprintf(&b, "\n⚠️ Без ответа: %d (провайдер/таймаут)", dropped)
	}
	if signals == 0 {
		b.WriteString("\nВходов нет, ждём сетап")
	}
	return b.String()
}

func formatSignalTrade(ev models.Evaluation, tradeID int64, stake float64, expiry string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, экспирация %s\n%s\n\n", sideEmoji(ev.Side), ev.Symbol, expiry, ev.Reason)
	if stake <= 0 {
		fmt.Fprintf(&b, "Сделка #%d, ставка 0.00 — задай депозит: /config", tradeID)
		return b.String()
	}
	fmt.Fprintf(&b, "Сделка #%d, ставка %s\nОтметь исход кнопкой или /gane, /perdi", tradeID, f2(stake))
	return b.String()
}

func formatSettlement(tradeID int64, outcome models.TradeResult, delta, balance float64) string {
	if outcome == models.ResultWin {
		return fmt.Sprintf("✅ Сделка #%d: победа %+.2f\n💰 Баланс: %s", tradeID, delta, f2(balance))
	}
	return fmt.Sprintf("❌ Сделка #%d: минус %.2f\n💰 Баланс: %s", tradeID, -delta, f2(balance))
}

func formatDailyStats(st models.DailyStats) string {
	if st.Wins+st.Losses == 0 {
		return "📊 Сегодня закрытых сделок нет"
	}
	return fmt.Sprintf(
		"📊 Статистика за сегодня (UTC):\n"+
			"Побед: %d, поражений: %d\n"+
			"Winrate: %.2f%%\n"+
			"PnL: %+.2f",
		st.Wins, st.Losses, st.WinRate, st.NetPnl,
	)
}

func formatAccountStatus(acc *models.Account, prices map[string]float64) string {
	mode := "работает"
	if acc.Paused {
		mode = "на паузе ⏸"
	}
	var b strings.Builder
	fmt.Fprintf(&b,
		"*ℹ️ Состояние аккаунта*\n\n"+
			"Режим: %s\n"+
			"Депозит: `%s`\n"+
			"Риск: `%s%%` (ставка `%s`)\n"+
			"Выплата: `%.0f%%`, экспирация: `%s`\n\n"+
			"*Пары:*\n",
		mode,
		f2(acc.Balance),
		f2(acc.RiskPct), f2(stake(acc.Balance, acc.RiskPct)),
		acc.Settings.Payout*100, acc.Settings.ExpiryLabel,
	)
	for _, p := range acc.Settings.Pairs {
		if px := prices[p]; px > 0 {
			fmt.Fprintf(&b, "  %s — `%.5f`\n", p, px)
			continue
		}
		fmt.Fprintf(&b, "  %s — нет цены\n", p)
	}
	return b.String()
}

func f2(v float64) string { // для красивого вывода
	return fmt.Sprintf("%.2f", v)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func stake(balance, riskPct float64) float64 {
	return balance * riskPct / 100.0
}
