package schema

import (
	"time"

	"github.com/meridianbi/revenue-mart/internal/domain"
)

// CustomerVersion represents the customer_versions table - one row per
// historical state of a customer. Each version is bound to the exact
// territory version that was current when it was written; that binding never
// changes, even if the territory later re-versions.
type CustomerVersion struct {
	// ID is the surrogate key, unique per version
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BusinessID is the stable identifier shared by all versions of the customer
	BusinessID string `gorm:"column:business_id;not null;type:text;uniqueIndex:udx_customer_versions_business_start,priority:1;uniqueIndex:udx_customer_versions_open,where:effective_end_key IS NULL"`
	// Name is the customer display name as of this version
	Name string `gorm:"column:name;not null;type:text"`
	// TerritoryVersionID references the specific territory version this
	// customer version is bound to (a surrogate, never a business id)
	TerritoryVersionID uint64 `gorm:"column:territory_version_id;not null;index"`
	// CreatedOnKey is the date key of the customer's first version. It is set
	// once per business id and copied verbatim onto every later version.
	CreatedOnKey domain.DateKey `gorm:"column:created_on_key;not null"`
	// EffectiveStartKey is the first date (inclusive) this version is authoritative
	EffectiveStartKey domain.DateKey `gorm:"column:effective_start_key;not null;uniqueIndex:udx_customer_versions_business_start,priority:2"`
	// EffectiveEndKey is the first date this version is no longer authoritative.
	// NULL means the version is currently valid with no successor.
	EffectiveEndKey *domain.DateKey `gorm:"column:effective_end_key"`
	// CreatedAt is the timestamp when this row was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	TerritoryVersion TerritoryVersion `gorm:"foreignKey:TerritoryVersionID"`
	CreatedOn        DateEntry        `gorm:"foreignKey:CreatedOnKey;references:Key"`
}

// TableName specifies the table name for the CustomerVersion model
func (CustomerVersion) TableName() string {
	return "customer_versions"
}

func (v *CustomerVersion) GetBusinessID() string { return v.BusinessID }

func (v *CustomerVersion) GetEffectiveStartKey() domain.DateKey { return v.EffectiveStartKey }

func (v *CustomerVersion) GetEffectiveEndKey() *domain.DateKey { return v.EffectiveEndKey }

func (v *CustomerVersion) CloseAt(key domain.DateKey) { v.EffectiveEndKey = &key }
