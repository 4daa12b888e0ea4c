package registry

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"farewatch/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// PostgresRegistry reads active journeys from the tracked_journeys table.
type PostgresRegistry struct {
	Pool *pgxpool.Pool
}

// NewPostgresRegistry connects to the database and checks it is reachable.
func NewPostgresRegistry(ctx context.Context, dsn string) (*PostgresRegistry, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &PostgresRegistry{Pool: pool}, nil
}

// EnsureSchema creates the tracked_journeys table when it does not exist.
func (r *PostgresRegistry) EnsureSchema(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *PostgresRegistry) Close() {
	r.Pool.Close()
}

// LoadJourneys returns active journeys ordered by id.
func (r *PostgresRegistry) LoadJourneys(ctx context.Context) ([]model.Journey, error) {
	const query = `
SELECT origin, destination,
       to_char(outbound_date, 'YYYY-MM-DD'), outbound_time,
       to_char(return_date, 'YYYY-MM-DD'), return_time,
       current_price::text, flexibility_hours
FROM tracked_journeys
WHERE active
ORDER BY id`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query journeys: %w", err)
	}
	defer rows.Close()

	var journeys []model.Journey
	for rows.Next() {
		var (
			j     model.Journey
			price string
		)
		if err := rows.Scan(&j.Origin, &j.Destination, &j.OutboundDate, &j.OutboundTime,
			&j.ReturnDate, &j.ReturnTime, &price, &j.FlexibilityHours); err != nil {
			return nil, fmt.Errorf("scan journey: %w", err)
		}
		if j.CurrentPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse current price %q: %w", price, err)
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journeys: %w", err)
	}
	return journeys, nil
}
