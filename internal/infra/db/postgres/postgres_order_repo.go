package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, user_id, tariff_id, provider, provider_ref, amount, currency, promo_code_id, status, created_at, paid_at, telegram_message_id`

func scanOrder(row pgx.Row) (*model.PaymentOrder, error) {
	o := &model.PaymentOrder{}
	if err := row.Scan(&o.ID, &o.UserID, &o.TariffID, &o.Provider, &o.ProviderRef, &o.Amount, &o.Currency, &o.PromoCodeID, &o.Status, &o.CreatedAt, &o.PaidAt, &o.TelegramMessageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.PaymentOrder) error {
	const q = `
INSERT INTO payment_orders (` + orderColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`

	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.UserID, o.TariffID, o.Provider, o.ProviderRef, o.Amount, o.Currency, o.PromoCodeID, o.Status, o.CreatedAt, o.PaidAt, o.TelegramMessageID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentOrder, error) {
	const q = `SELECT ` + orderColumns + ` FROM payment_orders WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) FindByProviderRef(ctx context.Context, tx repository.Tx, provider model.Provider, ref string) (*model.PaymentOrder, error) {
	const q = `SELECT ` + orderColumns + ` FROM payment_orders WHERE provider=$1 AND provider_ref=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, provider, ref)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

// MarkPaidIfPending is the settlement idempotency gate: the conditional
// UPDATE serializes concurrent deliveries for the same order, and zero
// affected rows tells the caller the order was already paid or expired.
func (r *orderRepo) MarkPaidIfPending(ctx context.Context, tx repository.Tx, id string, paidAt time.Time) (bool, error) {
	const q = `
UPDATE payment_orders
   SET status = 'paid',
       paid_at = $2
 WHERE id = $1
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *orderRepo) SetTelegramMessageID(ctx context.Context, tx repository.Tx, id string, messageID int) error {
	const q = `UPDATE payment_orders SET telegram_message_id=$2 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, messageID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) ExpirePendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `UPDATE payment_orders SET status='expired' WHERE status='pending' AND created_at < $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return cmd.RowsAffected(), nil
}
