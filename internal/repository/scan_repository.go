// internal/repository/scan_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"serial-discovery/internal/database"
	"serial-discovery/internal/model"
)

// scanRunRepository implements ScanRunRepository on PostgreSQL
type scanRunRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewScanRunRepository creates a new PostgreSQL scan history repository
func NewScanRunRepository(db *database.DB, logger *zap.Logger) ScanRunRepository {
	return &scanRunRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a finished scan run
func (r *scanRunRepository) Create(ctx context.Context, run *model.ScanRun) error {
	query := `
		INSERT INTO scan_runs (
			id, scan_type, started_at, duration_ms, devices_found,
			error, devices, port_paths
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.ScanType, run.StartedAt, run.DurationMs,
		run.DevicesFound, run.Error, run.Devices, pq.Array(portPaths(run)),
	)

	if err != nil {
		r.logger.Error("Failed to create scan run", zap.Error(err), zap.String("run_id", run.ID.String()))
		return fmt.Errorf("failed to create scan run: %w", err)
	}

	r.logger.Debug("Scan run stored", zap.String("run_id", run.ID.String()))
	return nil
}

// GetByID retrieves a scan run by its UUID
func (r *scanRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScanRun, error) {
	query := `
		SELECT id, scan_type, started_at, duration_ms, devices_found, error, devices
		FROM scan_runs WHERE id = $1
	`

	run := &model.ScanRun{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.ScanType, &run.StartedAt, &run.DurationMs,
		&run.DevicesFound, &run.Error, &run.Devices,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrScanRunNotFound, id)
		}
		r.logger.Error("Failed to get scan run", zap.Error(err), zap.String("run_id", id.String()))
		return nil, fmt.Errorf("failed to get scan run: %w", err)
	}

	return run, nil
}

// List retrieves scan runs, newest first
func (r *scanRunRepository) List(ctx context.Context, filter *ScanRunFilter) ([]*model.ScanRun, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list scan runs", zap.Error(err))
		return nil, fmt.Errorf("failed to list scan runs: %w", err)
	}
	defer rows.Close()

	runs := []*model.ScanRun{}
	for rows.Next() {
		run := &model.ScanRun{}
		if err := rows.Scan(
			&run.ID, &run.ScanType, &run.StartedAt, &run.DurationMs,
			&run.DevicesFound, &run.Error, &run.Devices,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan runs: %w", err)
	}

	return runs, nil
}

// buildListQuery renders the history listing for a filter
func buildListQuery(filter *ScanRunFilter) (string, []interface{}) {
	if filter == nil {
		filter = &ScanRunFilter{}
	}

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.ScanType != nil {
		conditions = append(conditions, fmt.Sprintf("scan_type = $%d", argIndex))
		args = append(args, *filter.ScanType)
		argIndex++
	}

	if filter.PortPath != nil {
		conditions = append(conditions, fmt.Sprintf("port_paths @> $%d", argIndex))
		args = append(args, pq.Array([]string{*filter.PortPath}))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, scan_type, started_at, duration_ms, devices_found, error, devices
		FROM scan_runs %s
		ORDER BY started_at DESC
	`, whereClause)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	return query, args

}

// DeleteOlderThan removes runs started before the cutoff
func (r *scanRunRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scan_runs WHERE started_at < $1`, olderThan)
	if err != nil {
		r.logger.Error("Failed to delete old scan runs", zap.Error(err))
		return 0, fmt.Errorf("failed to delete old scan runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		r.logger.Info("Old scan runs deleted", zap.Int64("count", deleted))
	}

	return deleted, nil
}
