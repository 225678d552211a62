package models

// Account — состояние аккаунта (один на chat ID).
// Баланс и риск мутируются на месте, история изменений — только через Trade-лог.
type Account struct {
	ID      int64   `json:"id"` // Telegram chat/user ID
	Balance float64 `json:"balance"`
	RiskPct float64 `json:"risk_pct"` // % от баланса на одну сделку
	Paused  bool    `json:"paused"`

	Settings AccountSettings `json:"settings"`
}

// AccountSettings — пользовательские предпочтения, хранятся в JSONB.
type AccountSettings struct {
	Payout      float64  `json:"payout"`       // доля выплаты при выигрыше, 0.80 = 80%
	ExpiryLabel string   `json:"expiry_label"` // только для отображения, таймеров нет
	Pairs       []string `json:"pairs"`        // watchlist для /todas
}

const (
	DefaultRiskPct     = 1.0
	DefaultPayout      = 0.80
	DefaultExpiryLabel = "5m"
)

// NewAccount создаёт аккаунт с дефолтами: баланс 0, риск 1%, не на паузе.
func NewAccount(id int64, pairs []string) *Account {
	return &Account{
		ID:      id,
		Balance: 0,
		RiskPct: DefaultRiskPct,
		Paused:  false,
		Settings: AccountSettings{
			Payout:      DefaultPayout,
			ExpiryLabel: DefaultExpiryLabel,
			Pairs:       pairs,
		},
	}
}
