// Package storage journals confirmed bookings to Postgres.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smarterdog/grooming/libs/db"
	"github.com/smarterdog/grooming/services/grooming-service/internal/ledger"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Insert stores a confirmed record. Re-inserting the same ID is a no-op.
func (r *BookingRepository) Insert(ctx context.Context, rec model.BookingRecord) error {
	requested, err := time.Parse(model.DateLayout, rec.RequestedDate)
	if err != nil {
		return err
	}
	operating, err := time.Parse(model.DateLayout, rec.Date)
	if err != nil {
		return err
	}
	notes := rec.Notes
	if notes == nil {
		notes = []string{}
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO bookings
			(id, dog_name, dog_size, units, requested_date, operating_date, slot, customer_name, contact_number, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.DogName, string(rec.DogSize), rec.DogSize.Units(), requested, operating, rec.Time,
		rec.CustomerName, rec.ContactNumber, string(rec.Status), notes, rec.CreatedAt)
	return err
}

func (r *BookingRepository) ListRecent(ctx context.Context, limit int) ([]model.BookingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, dog_name, dog_size, requested_date, operating_date, slot,
			customer_name, contact_number, status, notes, created_at
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookingRecord
	for rows.Next() {
		var rec model.BookingRecord
		var size, status string
		var requested, operating time.Time
		if err := rows.Scan(
			&rec.ID,
			&rec.DogName,
			&size,
			&requested,
			&operating,
			&rec.Time,
			&rec.CustomerName,
			&rec.ContactNumber,
			&status,
			&rec.Notes,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.DogSize = model.DogSize(size)
		rec.Status = model.Status(status)
		rec.RequestedDate = model.FormatDate(requested)
		rec.Date = model.FormatDate(operating)
		out = append(out, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// LedgerUsage sums the units booked per (operating date, slot) from the given day onward.
func (r *BookingRepository) LedgerUsage(ctx context.Context, from time.Time) ([]ledger.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT operating_date, slot, SUM(units)::int
		FROM bookings
		WHERE status = 'Booked' AND operating_date >= $1
		GROUP BY operating_date, slot
		ORDER BY operating_date, slot
	`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.Date, &e.Slot, &e.Units); err != nil {
			return nil, err
		}
		e.Date = time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC)
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
