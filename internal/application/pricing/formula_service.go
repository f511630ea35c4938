package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FormulaService handles price formula business operations
type FormulaService struct {
	repo           pricing.FormulaRepository
	cvRepo         sales.ConfirmationRepository
	sequences      shared.SequenceGenerator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewFormulaService creates a new FormulaService
func NewFormulaService(repo pricing.FormulaRepository, cvRepo sales.ConfirmationRepository,
	sequences shared.SequenceGenerator, logger *zap.Logger) *FormulaService {
	return &FormulaService{repo: repo, cvRepo: cvRepo, sequences: sequences, logger: logger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *FormulaService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a price formula in draft state. The formula tonnage is
// checked against the confirmation envelope net of sibling formulas.
func (s *FormulaService) Create(ctx context.Context, req CreateFormulaRequest) (*FormulaResponse, error) {
	cv, err := s.cvRepo.FindByID(ctx, req.ConfirmationID)
	if err != nil {
		return nil, err
	}

	product := valueobject.ProductType(req.ProductType)
	if !cv.ProductType.Accepts(product) {
		return nil, shared.NewDomainError("PRODUCT_TYPE_MISMATCH",
			fmt.Sprintf("Confirmation %s covers %s products, a %s formula cannot draw on it",
				cv.Reference, cv.ProductType, product))
	}

	if err := s.checkEnvelope(ctx, cv, req.Tonnage, uuid.Nil); err != nil {
		return nil, err
	}

	reference, err := s.nextReference(ctx)
	if err != nil {
		return nil, err
	}

	f, err := pricing.NewFormula(reference, req.NumeroFO1, cv.ID, product,
		req.Tonnage, req.PrixTonnage, req.PourcentageAvantVente)
	if err != nil {
		return nil, err
	}
	if req.DifferentielType != "" && req.DifferentielQualite != nil {
		if err := f.SetQualityDifferential(pricing.DifferentialType(req.DifferentielType), *req.DifferentielQualite); err != nil {
			return nil, err
		}
	}
	for _, line := range req.TaxLines {
		if _, err := addTaxLine(f, line); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, f); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, f)

	resp := ToFormulaResponse(f)
	return &resp, nil
}

// checkEnvelope verifies that the formula tonnage fits in the confirmation
// envelope once every non-cancelled sibling formula is accounted for.
func (s *FormulaService) checkEnvelope(ctx context.Context, cv *sales.SalesConfirmation,
	tonnage decimal.Decimal, excludeID uuid.UUID) error {

	reserved, err := s.repo.SumActiveTonnageByConfirmation(ctx, cv.ID, excludeID)
	if err != nil {
		return err
	}
	if reserved.Add(tonnage).GreaterThan(cv.TonnageAutorise) {
		available := cv.TonnageAutorise.Sub(reserved)
		return shared.NewDomainError("INSUFFICIENT_TONNAGE",
			fmt.Sprintf("Formula tonnage (%s T) exceeds the envelope of confirmation %s: %s T already reserved by other formulas, only %s T of %s T available",
				tonnage, cv.Reference, reserved, available, cv.TonnageAutorise))
	}
	return nil
}

// nextReference allocates the next formula number
func (s *FormulaService) nextReference(ctx context.Context) (string, error) {
	seq, err := s.sequences.NextByCode(ctx, "formula")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FO-%05d", seq), nil
}

// GetByID retrieves a formula by ID
func (s *FormulaService) GetByID(ctx context.Context, id uuid.UUID) (*FormulaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToFormulaResponse(f)
	return &resp, nil
}

// List retrieves formulas with filtering and pagination
func (s *FormulaService) List(ctx context.Context, filter FormulaListFilter) ([]FormulaResponse, error) {
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
	if filter.ConfirmationID != nil {
		f.Filters["confirmation_id"] = *filter.ConfirmationID
	}

	formulas, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	responses := make([]FormulaResponse, 0, len(formulas))
	for i := range formulas {
		responses = append(responses, ToFormulaResponse(&formulas[i]))
	}
	return responses, nil
}

// AddTaxLine attaches a tax line to a draft formula
func (s *FormulaService) AddTaxLine(ctx context.Context, id uuid.UUID, req TaxLineInput) (*FormulaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := addTaxLine(f, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}
	resp := ToFormulaResponse(f)
	return &resp, nil
}

// RemoveTaxLine detaches a tax line from a draft formula
func (s *FormulaService) RemoveTaxLine(ctx context.Context, id, lineID uuid.UUID) (*FormulaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.RemoveTaxLine(lineID); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}
	resp := ToFormulaResponse(f)
	return &resp, nil
}

// Validate submits a draft formula. The envelope is re-checked at validation
// time since sibling formulas may have been created since.
func (s *FormulaService) Validate(ctx context.Context, id uuid.UUID) (*FormulaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cv, err := s.cvRepo.FindByID(ctx, f.ConfirmationID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEnvelope(ctx, cv, f.Tonnage, f.ID); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, f)

	resp := ToFormulaResponse(f)
	return &resp, nil
}

// MarkAvantVentePaid records the pre-sale installment payment. The emitted
// event carries the bound transit order so the potting context can flag its
// council taxes as paid.
func (s *FormulaService) MarkAvantVentePaid(ctx context.Context, id uuid.UUID) (*FormulaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.MarkAvantVentePaid(time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, f)

	resp := ToFormulaResponse(f)
	return &resp, nil
}

// MarkApresVentePaid records the post-sale installment payment
func (s *FormulaService) MarkApresVentePaid(ctx context.Context, id uuid.UUID) (*FormulaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.MarkApresVentePaid(time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, f)

	resp := ToFormulaResponse(f)
	return &resp, nil
}

// Cancel cancels a formula, releasing its share of the confirmation envelope
func (s *FormulaService) Cancel(ctx context.Context, id uuid.UUID) (*FormulaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}
	resp := ToFormulaResponse(f)
	return &resp, nil
}

// Delete removes a draft or cancelled formula
func (s *FormulaService) Delete(ctx context.Context, id uuid.UUID) error {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := f.CanDelete(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// RemindUnpaidFormulas scans validated and partially paid formulas with an
// outstanding installment and logs a reminder for each. Per-record failures
// are logged and never abort the batch.
func (s *FormulaService) RemindUnpaidFormulas(ctx context.Context, now time.Time) (int, error) {
	formulas, err := s.repo.FindUnpaidValidated(ctx)
	if err != nil {
		return 0, err
	}
	reminded := 0
	for i := range formulas {
		f := &formulas[i]
		installment := "pre-sale"
		if f.AvantVentePaye {
			installment = "post-sale"
		}
		s.logger.Warn("formula installment outstanding",
			zap.String("reference", f.Reference),
			zap.String("status", f.Status.String()),
			zap.String("installment", installment),
			zap.String("reste_a_payer", f.ResteAPayer().String()),
			zap.Time("checked_at", now))
		reminded++
	}
	s.logger.Info("payment reminder sweep done", zap.Int("reminded", reminded))
	return reminded, nil
}

// addTaxLine maps a tax line request onto the formula
func addTaxLine(f *pricing.Formula, req TaxLineInput) (*pricing.FormulaTax, error) {
	return f.AddTaxLine(req.Label, pricing.TaxCategory(req.Category), req.IsPreleve,
		func(line *pricing.FormulaTax) {
			line.MontantFixe = req.MontantFixe
			line.TauxPourcentage = req.TauxPourcentage
			line.TauxParKg = req.TauxParKg
			line.MontantUnitaire = req.MontantUnitaire
			line.Taux = req.Taux
		})
}

// publishEvents publishes accumulated domain events
func (s *FormulaService) publishEvents(ctx context.Context, f *pricing.Formula) {
	if s.eventPublisher == nil {
		f.ClearDomainEvents()
		return
	}
	for _, event := range f.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	f.ClearDomainEvents()
}
