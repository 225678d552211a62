package ledger

import (
	"context"
	"sync"
	"time"

	"binary_bot/internal/models"
)

// MemoryStore — хранилище в памяти. Используется в тестах и когда DSN
// не задан. Один мьютекс сериализует open/settle, как того требует
// инвариант "ровно один победитель" при гонке закрытий.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[int64]*models.Account
	trades   map[int64]*models.Trade
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[int64]*models.Account),
		trades:   make(map[int64]*models.Trade),
	}
}

func (m *MemoryStore) GetAccount(_ context.Context, id int64) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *MemoryStore) CreateAccount(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[acc.ID]; exists {
		return nil // уже создан конкурентным вызовом — это не ошибка
	}
	cp := *acc
	m.accounts[acc.ID] = &cp
	return nil
}

func (m *MemoryStore) SaveAccount(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *acc
	m.accounts[acc.ID] = &cp
	return nil
}

func (m *MemoryStore) InsertTrade(_ context.Context, tr *models.Trade) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *tr
	cp.ID = m.nextID
	m.trades[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MemoryStore) SettleTrade(
	_ context.Context,
	accountID, tradeID int64,
	outcome models.TradeResult,
) (*models.Trade, float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tr, ok := m.trades[tradeID]
	if !ok || tr.AccountID != accountID {
		return nil, 0, 0, ErrNotFound
	}
	if tr.Result != models.ResultOpen {
		return nil, 0, 0, ErrAlreadySettled
	}
	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, 0, 0, ErrNotFound
	}

	delta := tr.Delta(outcome)
	tr.Result = outcome
	acc.Balance += delta

	cp := *tr
	return &cp, delta, acc.Balance, nil
}

func (m *MemoryStore) SettledSince(_ context.Context, accountID int64, since time.Time) ([]models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Trade
	for _, tr := range m.trades {
		if tr.AccountID != accountID || tr.Result == models.ResultOpen {
			continue
		}
		if tr.OpenedAt.Before(since) {
			continue
		}
		out = append(out, *tr)
	}
	return out, nil
}

func (m *MemoryStore) Close() {}
