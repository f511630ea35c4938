package campaign

import (
	"fmt"
	"time"

	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a campaign
type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// IsValid checks if the status is a valid campaign Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusClosed:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// Campaign is the annual cocoa trading period. It carries the official
// reference prices and the export-duty rate, and serves as a read-only
// reference for confirmations, formulas and transit orders.
type Campaign struct {
	shared.BaseAggregateRoot
	Name           string // derived "YYYY-YYYY"
	Code           string // derived "YYYY"
	DateStart      time.Time
	DateEnd        time.Time
	Status         Status
	ExportDutyRate decimal.Decimal // percent, [0,100]
	OfficialPrices map[valueobject.ProductType]decimal.Decimal
	Note           string
}

// New creates a campaign over an explicit period
func New(dateStart, dateEnd time.Time) (*Campaign, error) {
	if !dateEnd.After(dateStart) {
		return nil, shared.NewDomainError("INVALID_DATES", "Campaign end date must be after start date")
	}

	c := &Campaign{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              fmt.Sprintf("%d-%d", dateStart.Year(), dateEnd.Year()),
		Code:              fmt.Sprintf("%d", dateStart.Year()),
		DateStart:         dateStart,
		DateEnd:           dateEnd,
		Status:            StatusDraft,
		ExportDutyRate:    decimal.Zero,
		OfficialPrices:    make(map[valueobject.ProductType]decimal.Decimal),
	}
	return c, nil
}

// NewForYear creates the campaign for a crop year. The cocoa campaign runs
// from October 1st of the given year to September 30th of the next.
func NewForYear(year int) (*Campaign, error) {
	if year < 2000 || year > 2100 {
		return nil, shared.NewDomainError("INVALID_YEAR", fmt.Sprintf("Invalid campaign year: %d", year))
	}
	start := time.Date(year, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.September, 30, 0, 0, 0, 0, time.UTC)
	return New(start, end)
}

// SetExportDutyRate sets the export duty rate in percent.
// Closed campaigns are immutable.
func (c *Campaign) SetExportDutyRate(rate decimal.Decimal) error {
	if c.Status == StatusClosed {
		return shared.NewDomainError("INVALID_STATE", "A closed campaign cannot be modified")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_DUTY_RATE",
			fmt.Sprintf("Export duty rate must be between 0 and 100, got %s", rate))
	}
	c.ExportDutyRate = rate
	c.UpdatedAt = time.Now()
	return nil
}

// SetOfficialPrice records the council price per tonne for one product type
func (c *Campaign) SetOfficialPrice(product valueobject.ProductType, pricePerTon decimal.Decimal) error {
	if c.Status == StatusClosed {
		return shared.NewDomainError("INVALID_STATE", "A closed campaign cannot be modified")
	}
	if !product.IsConcrete() {
		return shared.NewDomainError("INVALID_PRODUCT_TYPE",
			fmt.Sprintf("Official prices apply to concrete product types, got %q", product))
	}
	if pricePerTon.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Official price cannot be negative")
	}
	if c.OfficialPrices == nil {
		c.OfficialPrices = make(map[valueobject.ProductType]decimal.Decimal)
	}
	c.OfficialPrices[product] = pricePerTon
	c.UpdatedAt = time.Now()
	return nil
}

// OfficialPriceFor returns the official price per tonne, if recorded
func (c *Campaign) OfficialPriceFor(product valueobject.ProductType) (decimal.Decimal, bool) {
	p, ok := c.OfficialPrices[product]
	return p, ok
}

// Activate transitions the campaign to active. Closed campaigns cannot reactivate.
func (c *Campaign) Activate() error {
	if c.Status == StatusClosed {
		return shared.NewDomainError("INVALID_STATE", "A closed campaign cannot be reactivated")
	}
	c.Status = StatusActive
	c.UpdatedAt = time.Now()
	return nil
}

// Close transitions the campaign to closed
func (c *Campaign) Close() {
	c.Status = StatusClosed
	c.UpdatedAt = time.Now()
}

// ResetToDraft returns an active campaign to draft. Blocked for closed campaigns.
func (c *Campaign) ResetToDraft() error {
	if c.Status == StatusClosed {
		return shared.NewDomainError("INVALID_STATE", "A closed campaign cannot be reset to draft")
	}
	c.Status = StatusDraft
	c.UpdatedAt = time.Now()
	return nil
}

// IsCurrent reports whether the campaign period covers the given date
func (c *Campaign) IsCurrent(now time.Time) bool {
	return !now.Before(c.DateStart) && !now.After(c.DateEnd)
}

// Covers reports whether the given period falls within the campaign period
func (c *Campaign) Covers(start, end time.Time) bool {
	return !start.Before(c.DateStart) && !end.After(c.DateEnd)
}
