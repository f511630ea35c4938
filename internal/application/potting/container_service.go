package potting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ContainerService handles container business operations
type ContainerService struct {
	repo   potting.ContainerRepository
	params ParameterProvider
	logger *zap.Logger
}

// NewContainerService creates a new ContainerService
func NewContainerService(repo potting.ContainerRepository, params ParameterProvider, logger *zap.Logger) *ContainerService {
	return &ContainerService{repo: repo, params: params, logger: logger}
}

// Create registers a container. An explicit capacity wins over the
// parameterised one, which wins over the canonical per-type capacity.
func (s *ContainerService) Create(ctx context.Context, req CreateContainerRequest) (*ContainerResponse, error) {
	if existing, err := s.repo.FindByNumber(ctx, req.Name); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"A container with number "+req.Name+" already exists")
	}

	ctype := potting.ContainerType(req.Type)
	capacity := decimal.Zero
	if req.Capacity != nil {
		capacity = *req.Capacity
	} else if s.params != nil {
		capacity = s.params.ContainerCapacity(ctype)
	}

	container, err := potting.NewContainer(req.Name, ctype, capacity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, container); err != nil {
		return nil, err
	}
	resp := ToContainerResponse(container)
	return &resp, nil
}

// GetByID retrieves a container by ID
func (s *ContainerService) GetByID(ctx context.Context, id uuid.UUID) (*ContainerResponse, error) {
	container, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToContainerResponse(container)
	return &resp, nil
}

// List retrieves containers with filtering and pagination
func (s *ContainerService) List(ctx context.Context, filter ContainerListFilter) ([]ContainerResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.Type != "" {
		f.Filters["type"] = filter.Type
	}

	containers, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	responses := make([]ContainerResponse, 0, len(containers))
	for i := range containers {
		responses = append(responses, ToContainerResponse(&containers[i]))
	}
	return responses, nil
}

// StartLoading opens the container for potting
func (s *ContainerService) StartLoading(ctx context.Context, id uuid.UUID) (*ContainerResponse, error) {
	return s.mutate(ctx, id, func(c *potting.Container) error {
		return c.StartLoading(time.Now())
	})
}

// FinishLoading closes a loading container
func (s *ContainerService) FinishLoading(ctx context.Context, id uuid.UUID) (*ContainerResponse, error) {
	return s.mutate(ctx, id, func(c *potting.Container) error {
		return c.FinishLoading()
	})
}

// SetSeal records the seal number
func (s *ContainerService) SetSeal(ctx context.Context, id uuid.UUID, req SetSealRequest) (*ContainerResponse, error) {
	return s.mutate(ctx, id, func(c *potting.Container) error {
		return c.SetSeal(req.SealNumber)
	})
}

// Ship marks a sealed, loaded container as shipped
func (s *ContainerService) Ship(ctx context.Context, id uuid.UUID) (*ContainerResponse, error) {
	return s.mutate(ctx, id, func(c *potting.Container) error {
		return c.Ship(time.Now())
	})
}

// Reopen returns a loaded container to loading
func (s *ContainerService) Reopen(ctx context.Context, id uuid.UUID) (*ContainerResponse, error) {
	return s.mutate(ctx, id, func(c *potting.Container) error {
		return c.Reopen()
	})
}

// Delete removes an empty, unshipped container
func (s *ContainerService) Delete(ctx context.Context, id uuid.UUID) error {
	container, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := container.CanDelete(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// mutate applies a state change under optimistic locking
func (s *ContainerService) mutate(ctx context.Context, id uuid.UUID, op func(*potting.Container) error) (*ContainerResponse, error) {
	container, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := op(container); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, container); err != nil {
		return nil, err
	}
	resp := ToContainerResponse(container)
	return &resp, nil
}
