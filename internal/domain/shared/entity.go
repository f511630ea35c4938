package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by every persisted domain object, from campaigns
// down to individual containers.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and audit timestamps shared by all
// domain entities. Embed it, do not construct it directly.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }

func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// NewBaseEntity assigns a fresh UUID and stamps both timestamps with the
// same instant so a never-modified row is recognisable.
func NewBaseEntity() BaseEntity {
	ts := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}
