package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"binary_bot/internal/models"
	"binary_bot/pkg/db"
)

// PgStore — леджер в Postgres. Закрытие сделки идёт в одной транзакции с
// блокировкой строки, так что из конкурентных settle выигрывает ровно один.
type PgStore struct {
	db db.TxManager
}

func NewPgStore(txm db.TxManager) *PgStore {
	return &PgStore{db: txm}
}

func (s *PgStore) Close() {
	s.db.Close()
}

func (s *PgStore) GetAccount(ctx context.Context, id int64) (acc *models.Account, err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("pg.GetAccount: %w", err)
		}
	}()

	row := s.db.Conn().QueryRow(ctx,
		`SELECT id, balance, risk_pct, paused, settings FROM accounts WHERE id = $1`, id)

	acc = &models.Account{}
	var settings []byte
	if err = row.Scan(&acc.ID, &acc.Balance, &acc.RiskPct, &acc.Paused, &settings); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(settings) > 0 {
		if err = sonic.Unmarshal(settings, &acc.Settings); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (s *PgStore) CreateAccount(ctx context.Context, acc *models.Account) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.CreateAccount: %w", err)
		}
	}()

	settings, err := sonic.Marshal(acc.Settings)
	if err != nil {
		return err
	}
	_, err = s.db.Conn().Exec(ctx,
		`INSERT INTO accounts (id, balance, risk_pct, paused, settings)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		acc.ID, acc.Balance, acc.RiskPct, acc.Paused, settings)
	return err
}

func (s *PgStore) SaveAccount(ctx context.Context, acc *models.Account) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SaveAccount: %w", err)
		}
	}()

	settings, err := sonic.Marshal(acc.Settings)
	if err != nil {
		return err
	}
	_, err = s.db.Conn().Exec(ctx,
		`UPDATE accounts SET balance = $2, risk_pct = $3, paused = $4, settings = $5 WHERE id = $1`,
		acc.ID, acc.Balance, acc.RiskPct, acc.Paused, settings)
	return err
}

func (s *PgStore) InsertTrade(ctx context.Context, tr *models.Trade) (id int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.InsertTrade: %w", err)
		}
	}()

	row := s.db.Conn().QueryRow(ctx,
		`INSERT INTO trades (account_id, opened_at, side, asset, expiry_label, payout, stake, note, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		tr.AccountID, tr.OpenedAt, string(tr.Side), tr.Asset, tr.ExpiryLabel,
		tr.Payout, tr.Stake, tr.Note, string(tr.Result))
	if err = row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PgStore) SettleTrade(
	ctx context.Context,
	accountID, tradeID int64,
	outcome models.TradeResult,
) (tr *models.Trade, delta, newBalance float64, err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrAlreadySettled) {
			err = fmt.Errorf("pg.SettleTrade: %w", err)
		}
	}()

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx,
			`SELECT id, account_id, opened_at, side, asset, expiry_label, payout, stake, note, result
			 FROM trades WHERE id = $1 AND account_id = $2 FOR UPDATE`,
			tradeID, accountID)

		tr = &models.Trade{}
		var side, result string
		if scanErr := row.Scan(&tr.ID, &tr.AccountID, &tr.OpenedAt, &side, &tr.Asset,
			&tr.ExpiryLabel, &tr.Payout, &tr.Stake, &tr.Note, &result); scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return scanErr
		}
		tr.Side = models.Side(side)
		tr.Result = models.TradeResult(result)

		if tr.Result != models.ResultOpen {
			return ErrAlreadySettled
		}

		delta = tr.Delta(outcome)
		if _, execErr := tx.Exec(ctxTx,
			`UPDATE trades SET result = $2 WHERE id = $1`, tradeID, string(outcome)); execErr != nil {
			return execErr
		}
		balRow := tx.QueryRow(ctxTx,
			`UPDATE accounts SET balance = balance + $2 WHERE id = $1 RETURNING balance`,
			accountID, delta)
		if balErr := balRow.Scan(&newBalance); balErr != nil {
			return balErr
		}

		tr.Result = outcome
		return nil
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return tr, delta, newBalance, nil
}

func (s *PgStore) SettledSince(ctx context.Context, accountID int64, since time.Time) (out []models.Trade, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SettledSince: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx,
		`SELECT id, account_id, opened_at, side, asset, expiry_label, payout, stake, note, result
		 FROM trades
		 WHERE account_id = $1 AND opened_at >= $2 AND result <> 'OPEN'
		 ORDER BY id`,
		accountID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tr models.Trade
		var side, result string
		if err = rows.Scan(&tr.ID, &tr.AccountID, &tr.OpenedAt, &side, &tr.Asset,
			&tr.ExpiryLabel, &tr.Payout, &tr.Stake, &tr.Note, &result); err != nil {
			return nil, err
		}
		tr.Side = models.Side(side)
		tr.Result = models.TradeResult(result)
		out = append(out, tr)
	}
	return out, rows.Err()
}
