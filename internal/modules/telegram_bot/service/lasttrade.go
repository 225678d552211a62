package service

import "sync"

// lastTradeStore помнит последнюю ОТКРЫТУЮ сделку чата,
// чтобы /gane и /perdi работали без явного id.
type lastTradeStore struct {
	mu sync.Mutex
	m  map[int64]int64 // chatID -> tradeID
}

func newLastTradeStore() *lastTradeStore {
	return &lastTradeStore{m: make(map[int64]int64)}
}

func (t *Telegram) setLastTrade(chatID, tradeID int64) {
	t.last.mu.Lock()
	defer t.last.mu.Unlock()
	t.last.m[chatID] = tradeID
}

func (t *Telegram) peekLastTrade(chatID int64) (int64, bool) {
	t.last.mu.Lock()
	defer t.last.mu.Unlock()
	id, ok := t.last.m[chatID]
	return id, ok
}

func (t *Telegram) clearLastTrade(chatID, tradeID int64) {
	t.last.mu.Lock()
	defer t.last.mu.Unlock()
	if t.last.m[chatID] == tradeID {
		delete(t.last.m, chatID)
	}
}
