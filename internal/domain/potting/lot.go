package potting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Lot fill thresholds, in percent of the target tonnage
var (
	// FillTolerance is the fill percentage from which a lot counts as full
	FillTolerance = decimal.NewFromInt(95)
	// OverfillWarning is the fill percentage above which overfill is flagged
	OverfillWarning = decimal.NewFromInt(105)
	// SingleAdditionCap bounds the fill reachable by one production addition
	SingleAdditionCap = decimal.NewFromFloat(1.10)
	// LotMaxTargetTonnage is the hard ceiling on a lot's target tonnage
	LotMaxTargetTonnage = decimal.NewFromInt(50)
)

// LotStatus represents the fill lifecycle of a lot
type LotStatus string

const (
	LotStatusDraft        LotStatus = "draft"
	LotStatusInProduction LotStatus = "in_production"
	LotStatusReady        LotStatus = "ready"
	LotStatusPotted       LotStatus = "potted"
)

// IsValid checks if the status is a valid LotStatus
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusDraft, LotStatusInProduction, LotStatusReady, LotStatusPotted:
		return true
	}
	return false
}

// String returns the string representation
func (s LotStatus) String() string {
	return string(s)
}

// ProductionLine records one production addition into a lot
type ProductionLine struct {
	ID       uuid.UUID
	LotID    uuid.UUID
	Tonnage  decimal.Decimal
	Date     time.Time
	Operator string
	Remark   string
}

// Lot is a fill-unit of product inside a transit order. Production lines
// accumulate tonnage towards the target; at 95% fill the lot counts as full
// and can be marked ready, then potted into a container. Potted is terminal.
type Lot struct {
	shared.BaseAggregateRoot
	Name           string // sequence with product-type prefix
	TransitOrderID uuid.UUID
	ProductType    valueobject.ProductType
	TargetTonnage  decimal.Decimal // (0, 50]
	CurrentTonnage decimal.Decimal // sum of production lines
	Status         LotStatus
	ContainerID    *uuid.UUID // required once potted
	ProductionLine []ProductionLine
	PottedBy       string
	DatePotted     *time.Time
}

// NewLot creates a lot in draft state
func NewLot(name string, transitOrderID uuid.UUID, product valueobject.ProductType, targetTonnage decimal.Decimal) (*Lot, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Lot name cannot be empty")
	}
	if transitOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRANSIT_ORDER", "A lot belongs to a transit order")
	}
	if !product.IsConcrete() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE",
			fmt.Sprintf("A lot requires a concrete product type, got %q", product))
	}
	if targetTonnage.LessThanOrEqual(decimal.Zero) || targetTonnage.GreaterThan(LotMaxTargetTonnage) {
		return nil, shared.NewDomainError("INVALID_TONNAGE",
			fmt.Sprintf("Lot target tonnage must be between 0 and %s T, got %s", LotMaxTargetTonnage, targetTonnage))
	}

	return &Lot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		TransitOrderID:    transitOrderID,
		ProductType:       product,
		TargetTonnage:     targetTonnage,
		CurrentTonnage:    decimal.Zero,
		Status:            LotStatusDraft,
		ProductionLine:    make([]ProductionLine, 0),
	}, nil
}

// FillPercentage returns current/target x 100
func (l *Lot) FillPercentage() decimal.Decimal {
	if !l.TargetTonnage.IsPositive() {
		return decimal.Zero
	}
	return l.CurrentTonnage.Div(l.TargetTonnage).Mul(decimal.NewFromInt(100))
}

// IsFull reports whether the lot has reached the fill tolerance (95%)
func (l *Lot) IsFull() bool {
	return l.FillPercentage().GreaterThanOrEqual(FillTolerance)
}

// IsOverfilled reports whether the fill passed the overfill warning level (105%)
func (l *Lot) IsOverfilled() bool {
	return l.FillPercentage().GreaterThan(OverfillWarning)
}

// AddProduction records a production addition. Allowed from draft or
// in_production only; a single addition can never push the lot beyond 110%
// of its target tonnage.
func (l *Lot) AddProduction(tonnage decimal.Decimal, date time.Time, operator, remark string) (*ProductionLine, error) {
	if l.Status != LotStatusDraft && l.Status != LotStatusInProduction {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Lot %s: production can only be added in draft or in_production state (state: %s)", l.Name, l.Status))
	}
	if tonnage.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_TONNAGE", "Production tonnage must be greater than 0")
	}
	newTotal := l.CurrentTonnage.Add(tonnage)
	ceiling := l.TargetTonnage.Mul(SingleAdditionCap)
	if newTotal.GreaterThan(ceiling) {
		return nil, shared.NewDomainError("OVERFILL",
			fmt.Sprintf("Lot %s: adding %s T would reach %s T, beyond the %s T ceiling (110%% of target)",
				l.Name, tonnage, newTotal, ceiling))
	}

	line := ProductionLine{
		ID:       uuid.New(),
		LotID:    l.ID,
		Tonnage:  tonnage,
		Date:     date,
		Operator: operator,
		Remark:   remark,
	}
	l.ProductionLine = append(l.ProductionLine, line)
	l.CurrentTonnage = newTotal
	if l.Status == LotStatusDraft {
		l.Status = LotStatusInProduction
	}
	l.UpdatedAt = time.Now()
	return &line, nil
}

// MarkReady flags a full lot as ready for potting (fill >= 95%)
func (l *Lot) MarkReady() error {
	if l.Status != LotStatusInProduction {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Lot %s must be in production to be marked ready (state: %s)", l.Name, l.Status))
	}
	if !l.IsFull() {
		return shared.NewDomainError("LOT_NOT_FULL",
			fmt.Sprintf("Lot %s is only %s%% filled; %s%% is required", l.Name, l.FillPercentage().Round(2), FillTolerance))
	}
	l.Status = LotStatusReady
	l.UpdatedAt = time.Now()
	return nil
}

// ForceReady bypasses the fill gate on manager override. The lot still needs
// some production in it.
func (l *Lot) ForceReady() error {
	if l.Status != LotStatusInProduction {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Lot %s must be in production to be marked ready (state: %s)", l.Name, l.Status))
	}
	if !l.CurrentTonnage.IsPositive() {
		return shared.NewDomainError("LOT_EMPTY",
			fmt.Sprintf("Lot %s holds no production and cannot be forced ready", l.Name))
	}
	l.Status = LotStatusReady
	l.UpdatedAt = time.Now()
	return nil
}

// ConfirmPotting pots the lot into a container. Terminal.
func (l *Lot) ConfirmPotting(containerID uuid.UUID, pottedBy string, when time.Time) error {
	if l.Status != LotStatusReady {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Lot %s must be ready before potting (state: %s)", l.Name, l.Status))
	}
	if containerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CONTAINER", "A container is required for potting")
	}
	l.ContainerID = &containerID
	l.PottedBy = pottedBy
	l.DatePotted = &when
	l.Status = LotStatusPotted
	l.UpdatedAt = time.Now()
	l.AddDomainEvent(NewLotPottedEvent(l))
	return nil
}

// ResetToDraft reverses the lot state. Potted lots never reset; a lot holding
// production returns to in_production so the work is not discarded.
func (l *Lot) ResetToDraft() error {
	if l.Status == LotStatusPotted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Lot %s is potted and cannot be reset", l.Name))
	}
	if l.CurrentTonnage.IsPositive() {
		l.Status = LotStatusInProduction
	} else {
		l.Status = LotStatusDraft
	}
	l.UpdatedAt = time.Now()
	return nil
}

// HasProduction reports whether any production has been recorded
func (l *Lot) HasProduction() bool {
	return l.CurrentTonnage.IsPositive()
}
