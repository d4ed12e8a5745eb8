package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"surveydq/internal/domain"
	"surveydq/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.ValidationRun) error {
	run.CreatedAt = time.Now().UTC()
	if len(run.Groups) == 0 {
		run.Groups = []byte("[]")
	}
	if len(run.Sheets) == 0 {
		run.Sheets = []byte("[]")
	}

	query := `INSERT INTO validation_runs
		(id, country, language, key_file_name, data_file_name, status,
		 sheet_count, issue_count, group_count, groups, sheets, report_key, error,
		 started_at, finished_at, created_at)
		VALUES (:id, :country, :language, :key_file_name, :data_file_name, :status,
		 :sheet_count, :issue_count, :group_count, :groups, :sheets, :report_key, :error,
		 :started_at, :finished_at, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRun, error) {
	var run domain.ValidationRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM validation_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM validation_runs"); err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	var runs []domain.ValidationRun
	err := r.db.SelectContext(ctx, &runs,
		`SELECT * FROM validation_runs
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	return runs, total, nil
}

func (r *runRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
