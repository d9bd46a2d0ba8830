package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
)

var _ repository.TariffRepository = (*tariffRepo)(nil)

type tariffRepo struct{ pool *pgxpool.Pool }

func NewTariffRepo(pool *pgxpool.Pool) *tariffRepo {
	return &tariffRepo{pool: pool}
}

const tariffColumns = `id, name, duration_days, prices, squad_ids, traffic_limit_bytes`

// prices is jsonb ({"RUB": 10000, "USD": 150}); squad_ids is text[].
func scanTariff(row pgx.Row) (*model.Tariff, error) {
	t := &model.Tariff{}
	var prices []byte
	if err := row.Scan(&t.ID, &t.Name, &t.DurationDays, &prices, &t.SquadIDs, &t.TrafficLimitBytes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if err := json.Unmarshal(prices, &t.PriceByCurrency); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *tariffRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error) {
	const q = `SELECT ` + tariffColumns + ` FROM tariffs WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTariff(row)
}

func (r *tariffRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Tariff, error) {
	const q = `SELECT ` + tariffColumns + ` FROM tariffs WHERE active ORDER BY duration_days;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Tariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
