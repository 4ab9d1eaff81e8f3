package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecolens/ecolens/internal/model"
)

// ErrNoSeriesData indicates the requested country has no stored records.
var ErrNoSeriesData = errors.New("no CO2 data for country")

// InsertCO2Records bulk-inserts emission records, replacing any existing
// row for the same (country_code, year) pair. Used by the seeder.
func (r *Repository) InsertCO2Records(ctx context.Context, records []model.CO2Record) error {
	query := `
		INSERT INTO co2_data (country, country_code, year, emissions, source, data_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (country_code, year) DO UPDATE
		SET country = EXCLUDED.country,
		    emissions = EXCLUDED.emissions,
		    source = EXCLUDED.source,
		    data_type = EXCLUDED.data_type
	`

	for _, rec := range records {
		_, err := r.pool.Exec(ctx, query,
			rec.Country,
			strings.ToUpper(rec.CountryCode),
			rec.Year,
			rec.Emissions,
			rec.Source,
			rec.DataType,
		)
		if err != nil {
			return fmt.Errorf("failed to insert CO2 record %s/%d: %w", rec.CountryCode, rec.Year, err)
		}
	}

	return nil
}

// GetGlobalSeries returns the worldwide emission series ordered by year.
func (r *Repository) GetGlobalSeries(ctx context.Context) (*model.CO2Series, error) {
	return r.getSeries(ctx, model.GlobalCode)
}

// GetCountrySeries returns the emission series for a country code,
// ordered by year. Returns ErrNoSeriesData when nothing is stored.
func (r *Repository) GetCountrySeries(ctx context.Context, countryCode string) (*model.CO2Series, error) {
	series, err := r.getSeries(ctx, strings.ToUpper(countryCode))
	if err != nil {
		return nil, err
	}
	if len(series.Years) == 0 {
		return nil, ErrNoSeriesData
	}
	return series, nil
}

func (r *Repository) getSeries(ctx context.Context, countryCode string) (*model.CO2Series, error) {
	query := `
		SELECT country, year, emissions
		FROM co2_data
		WHERE country_code = $1
		ORDER BY year ASC
	`

	rows, err := r.pool.Query(ctx, query, countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query CO2 series: %w", err)
	}
	defer rows.Close()

	series := &model.CO2Series{}
	for rows.Next() {
		var (
			country   string
			year      int
			emissions float64
		)
		if err := rows.Scan(&country, &year, &emissions); err != nil {
			return nil, fmt.Errorf("failed to scan CO2 row: %w", err)
		}
		series.Country = country
		series.Years = append(series.Years, year)
		series.Emissions = append(series.Emissions, emissions)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate CO2 rows: %w", err)
	}

	return series, nil
}
