package ledger

import (
	"context"
	"time"

	"binary_bot/internal/models"
)

// Store — хранилище аккаунтов и журнала сделок. Инжектится в Service при
// старте и закрывается при остановке; никаких глобальных коннектов.
type Store interface {
	// GetAccount возвращает ErrNotFound, если аккаунта нет.
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	CreateAccount(ctx context.Context, acc *models.Account) error
	SaveAccount(ctx context.Context, acc *models.Account) error

	// InsertTrade пишет сделку с result=OPEN и возвращает её id.
	InsertTrade(ctx context.Context, tr *models.Trade) (int64, error)

	// SettleTrade атомарно относительно конкурентных закрытий той же сделки:
	// ровно один вызов применяет дельту, остальные получают ErrAlreadySettled.
	// Дельта считается по stake/payout, снятым при открытии.
	SettleTrade(ctx context.Context, accountID, tradeID int64, outcome models.TradeResult) (tr *models.Trade, delta, newBalance float64, err error)

	// SettledSince — закрытые сделки аккаунта с момента since.
	SettledSince(ctx context.Context, accountID int64, since time.Time) ([]models.Trade, error)

	Close()
}
