package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/parcours-backend-go/internal/database"
	"github.com/jengzang/parcours-backend-go/internal/models"
)

const sampleColumns = `id, lat, lon, timestamp, acc, alt, vel, city, address, timezone`

// LocationRepository reads GPS samples from the locations table
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// LoadOrdered returns the samples inside the filter, ascending by timestamp
func (r *LocationRepository) LoadOrdered(ctx context.Context, filter models.SampleFilter) (models.Window, error) {
	query := `SELECT ` + sampleColumns + ` FROM locations`

	var conditions []string
	var args []interface{}
	if filter.From != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	window := models.Window{}
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		window = append(window, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}
	return window, nil
}

// Last returns the most recent sample, or nil when the table is empty
func (r *LocationRepository) Last(ctx context.Context) (*models.Sample, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sampleColumns+` FROM locations ORDER BY timestamp DESC, id DESC LIMIT 1`)
	s, err := scanSample(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LatestTimestamp returns the newest sample timestamp in the filter; ok is
// false when there are no samples
func (r *LocationRepository) LatestTimestamp(ctx context.Context, filter models.SampleFilter) (ts int64, ok bool, err error) {
	query := `SELECT MAX(timestamp) FROM locations`
	var conditions []string
	var args []interface{}
	if filter.From != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to query latest timestamp: %w", err)
	}
	return max.Int64, max.Valid, nil
}

// InsertBatch inserts samples in one transaction and returns how many were written
func (r *LocationRepository) InsertBatch(ctx context.Context, samples []models.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	inserted := 0
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO locations (lat, lon, timestamp, acc, alt, vel, city, address, timezone)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range samples {
			s.Normalize()
			if !s.HasCoordinates() {
				continue
			}
			if _, err := stmt.ExecContext(ctx, s.Lat, s.Lon, s.Timestamp,
				nullFloat(s.Accuracy), nullFloat(s.Altitude), nullFloat(s.Velocity),
				nullString(s.City), nullString(s.Address), nullString(s.Timezone)); err != nil {
				return fmt.Errorf("failed to insert location: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSample(row rowScanner) (models.Sample, error) {
	var s models.Sample
	var acc, alt, vel sql.NullFloat64
	var city, address, tz sql.NullString
	err := row.Scan(&s.ID, &s.Lat, &s.Lon, &s.Timestamp, &acc, &alt, &vel, &city, &address, &tz)
	if errors.Is(err, sql.ErrNoRows) {
		return s, err
	}
	if err != nil {
		return s, fmt.Errorf("failed to scan location: %w", err)
	}
	if acc.Valid {
		s.Accuracy = models.Float(acc.Float64)
	}
	if alt.Valid {
		s.Altitude = models.Float(alt.Float64)
	}
	if vel.Valid {
		s.Velocity = models.Float(vel.Float64)
	}
	s.City, s.Address, s.Timezone = city.String, address.String, tz.String
	return s, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
