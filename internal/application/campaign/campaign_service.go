package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/campaign"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Service handles campaign business operations
type Service struct {
	repo campaign.Repository
}

// NewService creates a new campaign Service
func NewService(repo campaign.Repository) *Service {
	return &Service{repo: repo}
}

// CreateForYear creates the campaign for a crop year (Oct 1 to Sep 30)
func (s *Service) CreateForYear(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error) {
	if existing, err := s.repo.FindByCode(ctx, fmt.Sprintf("%d", req.Year)); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Campaign %s already exists", existing.Name))
	}

	c, err := campaign.NewForYear(req.Year)
	if err != nil {
		return nil, err
	}
	if req.ExportDutyRate != nil {
		if err := c.SetExportDutyRate(*req.ExportDutyRate); err != nil {
			return nil, err
		}
	}
	c.Note = req.Note

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// GetByID retrieves a campaign by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// GetCurrent retrieves the active campaign covering today
func (s *Service) GetCurrent(ctx context.Context, now time.Time) (*CampaignResponse, error) {
	c, err := s.repo.FindCurrent(ctx, now)
	if err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// List retrieves campaigns with filtering and pagination
func (s *Service) List(ctx context.Context, filter CampaignListFilter) ([]CampaignResponse, error) {
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

	campaigns, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	responses := make([]CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		responses = append(responses, ToCampaignResponse(&campaigns[i]))
	}
	return responses, nil
}

// SetExportDutyRate updates the campaign's export duty rate
func (s *Service) SetExportDutyRate(ctx context.Context, id uuid.UUID, rate decimal.Decimal) (*CampaignResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.SetExportDutyRate(rate); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// SetOfficialPrice records one council price on the campaign
func (s *Service) SetOfficialPrice(ctx context.Context, id uuid.UUID, req SetOfficialPriceRequest) (*CampaignResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.SetOfficialPrice(valueobject.ProductType(req.ProductType), req.PricePerTon); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// Activate transitions a campaign to active
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Activate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// Close transitions a campaign to closed
func (s *Service) Close(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Close()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// ResetToDraft returns a campaign to draft
func (s *Service) ResetToDraft(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.ResetToDraft(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// Delete removes a draft campaign
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != campaign.StatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Campaign %s can only be deleted in draft state", c.Name))
	}
	return s.repo.Delete(ctx, id)
}
