package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/vehicle"
)

type PostgresService struct {
	pool *pgxpool.Pool
}

func NewPostgresService(ctx context.Context, dsn string) (*PostgresService, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	svc := &PostgresService{pool: pool}
	if err := svc.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return svc, nil
}

func (s *PostgresService) Close() {
	s.pool.Close()
}

func (s *PostgresService) Create(ctx context.Context, rec vehicle.Record) (Run, error) {
	if len(rec) == 0 {
		return Run{}, errors.New("vehicle payload is required")
	}

	vehicleJSON, err := json.Marshal(rec)
	if err != nil {
		return Run{}, fmt.Errorf("marshal vehicle: %w", err)
	}

	runID := "run_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	now := time.Now().UTC()

	row := s.pool.QueryRow(ctx, `
INSERT INTO listing_runs (
	id, status, vehicle, images, report, error_message, created_at, completed_at
) VALUES (
	$1, $2, $3::jsonb, '[]'::jsonb, '{}'::jsonb, NULL, $4, NULL
)
RETURNING `+runColumns, runID, StatusPending, vehicleJSON, now)

	return scanRun(row)
}

func (s *PostgresService) MarkSkipped(ctx context.Context, id string) (Run, error) {
	row := s.pool.QueryRow(ctx, `
UPDATE listing_runs
SET status = $2, completed_at = $3
WHERE id = $1
RETURNING `+runColumns, id, StatusSkipped, time.Now().UTC())

	return scanUpdated(row)
}

func (s *PostgresService) MarkCompleted(ctx context.Context, id string, images []string, report form.Report) (Run, error) {
	imagesJSON, reportJSON, err := marshalOutcome(images, report)
	if err != nil {
		return Run{}, err
	}

	row := s.pool.QueryRow(ctx, `
UPDATE listing_runs
SET status = $2, images = $3::jsonb, report = $4::jsonb, error_message = NULL, completed_at = $5
WHERE id = $1
RETURNING `+runColumns, id, StatusCompleted, imagesJSON, reportJSON, time.Now().UTC())

	return scanUpdated(row)
}

func (s *PostgresService) MarkFailed(ctx context.Context, id string, images []string, report form.Report, runErr string) (Run, error) {
	imagesJSON, reportJSON, err := marshalOutcome(images, report)
	if err != nil {
		return Run{}, err
	}

	row := s.pool.QueryRow(ctx, `
UPDATE listing_runs
SET status = $2, images = $3::jsonb, report = $4::jsonb, error_message = $5, completed_at = $6
WHERE id = $1
RETURNING `+runColumns, id, StatusFailed, imagesJSON, reportJSON, runErr, time.Now().UTC())

	return scanUpdated(row)
}

func (s *PostgresService) Get(ctx context.Context, id string) (Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM listing_runs WHERE id = $1`, id)
	return scanUpdated(row)
}

func (s *PostgresService) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
SELECT `+runColumns+`
FROM listing_runs
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Run, 0, limit)
	for rows.Next() {
		item, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresService) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS listing_runs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	vehicle JSONB NOT NULL,
	images JSONB NOT NULL DEFAULT '[]'::jsonb,
	report JSONB NOT NULL DEFAULT '{}'::jsonb,
	error_message TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NULL
);

CREATE INDEX IF NOT EXISTS idx_listing_runs_created
ON listing_runs (created_at DESC);
`)
	if err != nil {
		return fmt.Errorf("initialize listing_runs schema: %w", err)
	}
	return nil
}

func marshalOutcome(images []string, report form.Report) ([]byte, []byte, error) {
	if images == nil {
		images = []string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal report: %w", err)
	}
	return imagesJSON, reportJSON, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const runColumns = `
id,
status,
vehicle,
images,
report,
error_message,
created_at,
completed_at`

func scanRun(row rowScanner) (Run, error) {
	var item Run
	var vehicleJSON []byte
	var imagesJSON []byte
	var reportJSON []byte
	var errorMessage *string
	var completedAt *time.Time

	err := row.Scan(
		&item.ID,
		&item.Status,
		&vehicleJSON,
		&imagesJSON,
		&reportJSON,
		&errorMessage,
		&item.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return Run{}, err
	}

	if len(vehicleJSON) > 0 {
		if err := json.Unmarshal(vehicleJSON, &item.Vehicle); err != nil {
			return Run{}, fmt.Errorf("decode run vehicle: %w", err)
		}
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &item.Images); err != nil {
			return Run{}, fmt.Errorf("decode run images: %w", err)
		}
	}
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &item.Report); err != nil {
			return Run{}, fmt.Errorf("decode run report: %w", err)
		}
	}

	item.CreatedAt = item.CreatedAt.UTC()
	if completedAt != nil {
		v := completedAt.UTC()
		item.CompletedAt = &v
	}
	if errorMessage != nil {
		item.Error = *errorMessage
	}

	return item, nil
}

func scanUpdated(row rowScanner) (Run, error) {
	updated, err := scanRun(row)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return Run{}, err
}
