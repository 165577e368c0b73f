package schema

import (
	"time"

	"github.com/meridianbi/revenue-mart/internal/domain"
)

// TerritoryVersion represents the territory_versions table - one row per
// historical state of a sales territory. For a given business id the
// effective intervals never overlap and at most one row is open
// (effective_end_key IS NULL).
type TerritoryVersion struct {
	// ID is the surrogate key, unique per version
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BusinessID is the stable identifier shared by all versions of the territory
	BusinessID string `gorm:"column:business_id;not null;type:text;uniqueIndex:udx_territory_versions_business_start,priority:1;uniqueIndex:udx_territory_versions_open,where:effective_end_key IS NULL"`
	// Name is the territory display name as of this version
	Name string `gorm:"column:name;not null;type:text"`
	// Region is the sales region the territory belonged to as of this version
	Region string `gorm:"column:region;not null;type:text"`
	// EffectiveStartKey is the first date (inclusive) this version is authoritative
	EffectiveStartKey domain.DateKey `gorm:"column:effective_start_key;not null;uniqueIndex:udx_territory_versions_business_start,priority:2"`
	// EffectiveEndKey is the first date this version is no longer authoritative.
	// NULL means the version is currently valid with no successor.
	EffectiveEndKey *domain.DateKey `gorm:"column:effective_end_key"`
	// CreatedAt is the timestamp when this row was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	EffectiveStart DateEntry `gorm:"foreignKey:EffectiveStartKey;references:Key"`
}

// TableName specifies the table name for the TerritoryVersion model
func (TerritoryVersion) TableName() string {
	return "territory_versions"
}

func (v *TerritoryVersion) GetBusinessID() string { return v.BusinessID }

func (v *TerritoryVersion) GetEffectiveStartKey() domain.DateKey { return v.EffectiveStartKey }

func (v *TerritoryVersion) GetEffectiveEndKey() *domain.DateKey { return v.EffectiveEndKey }

func (v *TerritoryVersion) CloseAt(key domain.DateKey) { v.EffectiveEndKey = &key }
