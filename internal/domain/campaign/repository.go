package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
)

// Repository defines the interface for campaign persistence
type Repository interface {
	// FindByID finds a campaign by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// FindByCode finds a campaign by its year code (e.g. "2024")
	FindByCode(ctx context.Context, code string) (*Campaign, error)

	// FindCurrent finds the active campaign covering the given date
	FindCurrent(ctx context.Context, now time.Time) (*Campaign, error)

	// FindAll lists campaigns with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Campaign, error)

	// Save creates or updates a campaign
	Save(ctx context.Context, c *Campaign) error

	// Delete removes a campaign
	Delete(ctx context.Context, id uuid.UUID) error
}
