package port

import (
	"context"

	"github.com/google/uuid"

	"surveydq/internal/domain"
)

// RunRepository persists the history of validation runs.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ValidationRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error)
	Ping(ctx context.Context) error
}
