package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"binary_bot/internal/ledger"
	"binary_bot/internal/models"
	"binary_bot/pkg/logger"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// 1) Обычные сообщения
	if msg := update.Message; msg != nil {
		chatID := msg.Chat.ID

		if msg.IsCommand() {
			args := strings.Fields(msg.CommandArguments())
			switch msg.Command() {
			case "start":
				if err := t.handleStart(ctx, chatID); err != nil {
					logger.Error("handleStart error: %v", err)
				}
			case "config":
				t.handleConfig(ctx, chatID, args)
			case "senal":
				t.handleSignal(ctx, chatID, args)
			case "todas":
				t.handleSignalAll(ctx, chatID)
			case "gane":
				t.handleSettle(ctx, chatID, args, models.ResultWin)
			case "perdi":
				t.handleSettle(ctx, chatID, args, models.ResultLoss)
			case "pausa":
				t.handlePause(ctx, chatID, true)
			case "reanudar":
				t.handlePause(ctx, chatID, false)
			case "stats":
				t.handleStats(ctx, chatID)
			case "estado":
				t.handleStatus(ctx, chatID)
			default:
				_, _ = t.Send(ctx, chatID, "Не знаю такой команды, смотри /start")
			}
			return
		}

		// Кнопки главного меню
		t.handleTextMessage(ctx, msg)
		return
	}

	// 2) Inline-кнопки (CallbackQuery)
	if cb := update.CallbackQuery; cb != nil {
		// у callback всегда свой message
		if cb.Message == nil || cb.Message.Chat == nil {
			return
		}
		chatID := cb.Message.Chat.ID
		t.handleCallback(ctx, chatID, cb)
		return
	}
}

func (t *Telegram) handleStart(ctx context.Context, chatID int64) error {
	acc, err := t.ledger.GetOrCreateAccount(ctx, chatID)
	if err != nil {
		_, _ = t.Send(ctx, chatID, "Не получилось создать аккаунт, попробуй ещё раз /start")
		return err
	}

	// Главное меню
	replyKb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📡 Все сигналы"),
			tgbotapi.NewKeyboardButton("📊 Статистика"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("⏸ Пауза"),
			tgbotapi.NewKeyboardButton("ℹ️ Статус"),
		),
	)

	msgText := "Привет! Я сигнальный бот для бинарных опционов.\n\n" +
		"1️⃣ Задай депозит и риск: `/config 200 1.5`\n" +
		"2️⃣ Сигнал по паре: `/senal EUR-USD`\n" +
		"3️⃣ По всем парам сразу: /todas\n\n" +
		"После сделки отметь исход: /gane или /perdi\n" +
		"Статистика за день: /stats, состояние: /estado\n" +
		"Пауза: /pausa, продолжить: /reanudar\n\n" +
		"Пары на аккаунте: `" + strings.Join(acc.Settings.Pairs, ", ") + "`"

	msg := tgbotapi.NewMessage(chatID, msgText)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = replyKb

	_, err = t.SendMessage(ctx, msg)
	return err
}

func (t *Telegram) handleTextMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch strings.TrimSpace(msg.Text) {
	case "📡 Все сигналы":
		t.handleSignalAll(ctx, chatID)
	case "📊 Статистика":
		t.handleStats(ctx, chatID)
	case "⏸ Пауза":
		t.handlePause(ctx, chatID, true)
	case "ℹ️ Статус":
		t.handleStatus(ctx, chatID)
	}
}

// /config <balance> <riskPct> — безусловная перезапись, не пополнение.
func (t *Telegram) handleConfig(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		_, _ = t.Send(ctx, chatID, "Формат: /config <депозит> <риск%>\nНапример: /config 200 1.5")
		return
	}
	balance, err1 := parseFloat(args[0])
	riskPct, err2 := parseFloat(args[1])
	if err1 != nil || err2 != nil {
		_, _ = t.Send(ctx, chatID, "Не понял числа. Например: /config 200 1.5")
		return
	}

	if err := t.ledger.SetConfig(ctx, chatID, balance, riskPct); err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			_, _ = t.SendF(ctx, chatID, "❗️ Некорректное значение %s: %s", verr.Field, verr.Value)
			return
		}
		logger.Error("handleConfig: %v", err)
		_, _ = t.Send(ctx, chatID, "⚠️ Не удалось сохранить настройки, попробуй позже")
		return
	}

	_, _ = t.SendF(ctx, chatID, "✅ Депозит: %.2f, риск: %.2f%% на сделку.\nСтавка сейчас: %.2f",
		balance, riskPct, stake(balance, riskPct))
}

// /senal <PAR> — анализ одной пары; при сигнале открываем сделку.
func (t *Telegram) handleSignal(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		_, _ = t.Send(ctx, chatID, "Формат: /senal <ПАРА>\nНапример: /senal EUR-USD")
		return
	}
	symbol := strings.ToUpper(args[0])

	acc, err := t.ledger.GetOrCreateAccount(ctx, chatID)
	if err != nil {
		logger.Error("handleSignal account: %v", err)
		_, _ = t.Send(ctx, chatID, "⚠️ Ошибка аккаунта, попробуй /start")
		return
	}
	if acc.Paused {
		_, _ = t.Send(ctx, chatID, "⏸ Бот на паузе. Продолжить: /reanudar")
		return
	}

	ev, err := t.runner.Analyze(ctx, symbol)
	if err != nil {
		logger.Error("handleSignal analyze %s: %v", symbol, err)
		_, _ = t.SendF(ctx, chatID, "⚠️ Не удалось получить котировки по %s", symbol)
		return
	}

	if !ev.Actionable() {
		_, _ = t.Send(ctx, chatID, formatEvaluation(ev))
		return
	}

	t.openSignalTrade(ctx, chatID, acc, ev)
}

// /todas — пробег по всем парам аккаунта, только отчёт, без входов.
func (t *Telegram) handleSignalAll(ctx context.Context, chatID int64) {
	acc, err := t.ledger.GetOrCreateAccount(ctx, chatID)
	if err != nil {
		logger.Error("handleSignalAll account: %v", err)
		_, _ = t.Send(ctx, chatID, "⚠️ Ошибка аккаунта, попробуй /start")
		return
	}
	if acc.Paused {
		_, _ = t.Send(ctx, chatID, "⏸ Бот на паузе. Продолжить: /reanudar")
		return
	}
	if len(acc.Settings.Pairs) == 0 {
		_, _ = t.Send(ctx, chatID, "Список пар пуст")
		return
	}

	evs := t.runner.AnalyzeAll(ctx, acc.Settings.Pairs)
	if len(evs) == 0 {
		_, _ = t.Send(ctx, chatID, "⚠️ Котировки недоступны, попробуй позже")
		return
	}

	_, _ = t.Send(ctx, chatID, formatEvaluations(evs, len(acc.Settings.Pairs)))
}

func (t *Telegram) openSignalTrade(ctx context.Context, chatID int64, acc *models.Account, ev models.Evaluation) {
	tradeID, stake, err := t.ledger.OpenTrade(ctx, chatID,
		ev.Side, ev.Symbol, acc.Settings.ExpiryLabel, acc.Settings.Payout, ev.Reason)
	if err != nil {
		logger.Error("openSignalTrade: %v", err)
		_, _ = t.Send(ctx, chatID, "⚠️ Сигнал есть, но сделку записать не удалось")
		return
	}
	t.setLastTrade(chatID, tradeID)

	text := formatSignalTrade(ev, tradeID, stake, acc.Settings.ExpiryLabel)

	// кнопки исхода — тот же леджер, что /gane и /perdi
	btnWin := tgbotapi.NewInlineKeyboardButtonData("✅ Gané", "WIN::"+strconv.FormatInt(tradeID, 10))
	btnLoss := tgbotapi.NewInlineKeyboardButtonData("❌ Perdí", "LOSS::"+strconv.FormatInt(tradeID, 10))
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btnWin, btnLoss))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, _ = t.SendMessage(ctx, msg)
}

// /gane [id] и /perdi [id]; без id закрываем последнюю открытую сделку чата.
func (t *Telegram) handleSettle(ctx context.Context, chatID int64, args []string, outcome models.TradeResult) {
	var tradeID int64
	switch {
	case len(args) >= 1:
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			_, _ = t.Send(ctx, chatID, "Не понял номер сделки. Формат: /gane 12")
			return
		}
		tradeID = id
	default:
		id, ok := t.peekLastTrade(chatID)
		if !ok {
			_, _ = t.Send(ctx, chatID, "Нет открытой сделки. Укажи номер: /gane <id>")
			return
		}
		tradeID = id
	}

	delta, balance, err := t.ledger.SettleTrade(ctx, chatID, tradeID, outcome)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAlreadySettled):
			_, _ = t.SendF(ctx, chatID, "Сделка #%d уже закрыта", tradeID)
		case errors.Is(err, ledger.ErrNotFound):
			_, _ = t.SendF(ctx, chatID, "Сделка #%d не найдена", tradeID)
		default:
			logger.Error("handleSettle: %v", err)
			_, _ = t.Send(ctx, chatID, "⚠️ Не удалось закрыть сделку, попробуй позже")
		}
		return
	}
	t.clearLastTrade(chatID, tradeID)

	_, _ = t.Send(ctx, chatID, formatSettlement(tradeID, outcome, delta, balance))
}

func (t *Telegram) handlePause(ctx context.Context, chatID int64, paused bool) {
	if err := t.ledger.SetPaused(ctx, chatID, paused); err != nil {
		logger.Error("handlePause: %v", err)
		_, _ = t.Send(ctx, chatID, "⚠️ Не удалось изменить режим, попробуй позже")
		return
	}
	if paused {
		_, _ = t.Send(ctx, chatID, "⏸ Пауза. Сигналы не анализируем, /stats и /estado доступны.")
		return
	}
	_, _ = t.Send(ctx, chatID, "▶️ Продолжаем. Сигнал: /senal <ПАРА> или /todas")
}

func (t *Telegram) handleStats(ctx context.Context, chatID int64) {
	st, err := t.ledger.DailyStats(ctx, chatID, time.Time{})
	if err != nil {
		logger.Error("handleStats: %v", err)
		_, _ = t.Send(ctx, chatID, "⚠️ Статистика недоступна, попробуй позже")
		return
	}
	_, _ = t.Send(ctx, chatID, formatDailyStats(st))
}

func (t *Telegram) handleStatus(ctx context.Context, chatID int64) {
	acc, err := t.ledger.GetOrCreateAccount(ctx, chatID)
	if err != nil {
		logger.Error("handleStatus: %v", err)
		_, _ = t.Send(ctx, chatID, "⚠️ Ошибка аккаунта, попробуй /start")
		return
	}

	prices := make(map[string]float64, len(acc.Settings.Pairs))
	for _, p := range acc.Settings.Pairs {
		prices[p] = t.market.GetPrice(p)
	}

	msg := tgbotapi.NewMessage(chatID, formatAccountStatus(acc, prices))
	msg.ParseMode = "Markdown"
	_, _ = t.SendMessage(ctx, msg)
}

// handleCallback обрабатывает кнопки исхода вида WIN::id / LOSS::id.
func (t *Telegram) handleCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	// отвечаем ТГ, чтобы убрать "часики" на кнопке
	_, _ = t.bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	verb, rawID := parseCallbackData(cb.Data)
	if verb == "" || rawID == "" {
		return
	}
	tradeID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	var outcome models.TradeResult
	switch verb {
	case "WIN":
		outcome = models.ResultWin
	case "LOSS":
		outcome = models.ResultLoss
	default:
		return
	}

	delta, balance, err := t.ledger.SettleTrade(ctx, chatID, tradeID, outcome)
	if err != nil {
		if errors.Is(err, ledger.ErrAlreadySettled) {
			_ = t.editReplyMarkupRemove(chatID, cb.Message.MessageID)
			return
		}
		logger.Error("handleCallback settle: %v", err)
		return
	}
	t.clearLastTrade(chatID, tradeID)

	_ = t.editReplyMarkupRemove(chatID, cb.Message.MessageID)
	_ = t.editText(chatID, cb.Message.MessageID,
		cb.Message.Text+"\n\n"+formatSettlement(tradeID, outcome, delta, balance))
}

func parseCallbackData(data string) (verb, payload string) {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == ':' && data[i+1] == ':' {
			return data[:i], data[i+2:]
		}
	}
	return "", ""
}
