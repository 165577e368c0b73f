package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/meridianbi/revenue-mart/internal/domain"
)

// RevenueFact represents the revenue_facts table - the append-only ledger of
// revenue events. Facts are never updated or deleted; corrections are
// recorded as new facts. Each fact references exactly one customer version,
// fixing forever which territory the revenue was attributed to.
type RevenueFact struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BusinessEventID is the stable identifier of the originating revenue event
	BusinessEventID string `gorm:"column:business_event_id;not null;uniqueIndex;type:text"`
	// CustomerVersionID references the customer version the fact was recorded against
	CustomerVersionID uint64 `gorm:"column:customer_version_id;not null;index"`
	// ActualAmount is the realized revenue, non-negative
	ActualAmount decimal.Decimal `gorm:"column:actual_amount;not null;type:decimal(20,4)"`
	// ForecastAmount is the forecast revenue, non-negative
	ForecastAmount decimal.Decimal `gorm:"column:forecast_amount;not null;type:decimal(20,4)"`
	// RevenueDateKey is the date registry key of the day the revenue occurred
	RevenueDateKey domain.DateKey `gorm:"column:revenue_date_key;not null;index"`
	// Source contains the raw originating record as JSON, for reconciliation
	Source datatypes.JSON `gorm:"column:source;type:jsonb"`
	// CreatedAt is the timestamp when this row was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	CustomerVersion CustomerVersion `gorm:"foreignKey:CustomerVersionID"`
	RevenueDate     DateEntry       `gorm:"foreignKey:RevenueDateKey;references:Key"`
}

// TableName specifies the table name for the RevenueFact model
func (RevenueFact) TableName() string {
	return "revenue_facts"
}
