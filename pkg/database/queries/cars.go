package queries

import (
	"context"
	"database/sql"

	"github.com/OldStager01/car-analytics/pkg/models"
)

// CarRepository reads and bulk-loads the cars table.
type CarRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

// All scans the whole table in insertion order.
func (r *CarRepository) All(ctx context.Context) ([]models.Record, error) {
	query := `
		SELECT country, car_brand, car_model, car_color, year_of_manufacture, credit_card_type
		FROM cars
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		var rec models.Record
		err := rows.Scan(
			&rec.Country,
			&rec.CarBrand,
			&rec.CarModel,
			&rec.CarColor,
			&rec.YearOfManufacture,
			&rec.CreditCardType,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *CarRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars`).Scan(&count)
	return count, err
}

// InsertBatch writes records in one transaction; any failure rolls back
// the whole batch.
func (r *CarRepository) InsertBatch(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cars (country, car_brand, car_model, car_color, year_of_manufacture, credit_card_type)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Country,
			rec.CarBrand,
			rec.CarModel,
			rec.CarColor,
			rec.YearOfManufacture,
			rec.CreditCardType,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
