package storage

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// ErrRunNotFound is returned by GetRun for unknown IDs
var ErrRunNotFound = errors.New("run not found")

// PostgresStore implements Store interface using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	store := &PostgresStore{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return store, nil
}

// migrate runs database migrations
func (s *PostgresStore) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read schema")
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return errors.Wrap(err, "failed to execute schema")
	}

	return nil
}

// SaveRun archives a report and its recommendations in one transaction
func (s *PostgresStore) SaveRun(ctx context.Context, report *models.AggregateReport) (*models.Run, error) {
	run := NewRun(uuid.New().String(), report)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, generated_at, regions, analysis_days, table_count,
			recommendation_count, error_count, total_monthly_savings_usd
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		run.ID, run.GeneratedAt, pq.Array(run.Regions), run.AnalysisDays, run.TableCount,
		run.RecommendationCount, run.ErrorCount, run.TotalMonthlySavings,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert run")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendations (
			id, run_id, position, region, table_name, type, label,
			resource, change, savings_monthly_usd, impact, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, rec := range flatten(report) {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = run.GeneratedAt
		}
		_, err := stmt.ExecContext(ctx,
			rec.ID, run.ID, i, rec.Region, rec.TableName, rec.Type, rec.Label,
			sql.NullString{String: rec.Resource, Valid: rec.Resource != ""},
			rec.Change, rec.SavingsMonthly, rec.Impact, rec.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to insert recommendation for %s", rec.TableName)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit run")
	}
	return &run, nil
}

const runColumns = `id, generated_at, regions, analysis_days, table_count,
	recommendation_count, error_count, total_monthly_savings_usd`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (models.Run, error) {
	var run models.Run
	err := row.Scan(
		&run.ID, &run.GeneratedAt, pq.Array(&run.Regions), &run.AnalysisDays, &run.TableCount,
		&run.RecommendationCount, &run.ErrorCount, &run.TotalMonthlySavings,
	)
	return run, err
}

// ListRuns returns the newest runs first
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY generated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run and its recommendations in report order
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*models.Run, []models.Recommendation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, errors.Wrapf(ErrRunNotFound, "invalid run id %q", id)
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil, errors.Wrap(ErrRunNotFound, id)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load run")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, region, table_name, type, label, resource, change,
			savings_monthly_usd, impact, created_at
		FROM recommendations
		WHERE run_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load recommendations")
	}
	defer rows.Close()

	var recs []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		var resource sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.Region, &rec.TableName, &rec.Type, &rec.Label, &resource, &rec.Change,
			&rec.SavingsMonthly, &rec.Impact, &rec.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}
		rec.Resource = resource.String
		recs = append(recs, rec)
	}

	return &run, recs, rows.Err()
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
