// Package attribution answers the reporting questions of the mart: revenue
// rolled up by customer or territory and quarter, threshold counts, and
// version bookkeeping queries.
//
// Every aggregation joins facts to dimensions through the surrogate
// references stored on the rows: fact -> customer version -> territory
// version. References are never re-resolved against the calendar at query
// time, so a fact is always attributed to whichever dimension state it was
// bound to when it was recorded.
package attribution

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/store/schema"
)

// Engine runs read-only aggregations over the mart. All methods are
// deterministic projections of current store contents; empty results are
// valid, not errors.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates an attribution engine over an open database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// CustomerQuarterRow is one group of the by-customer rollup.
type CustomerQuarterRow struct {
	CustomerName  string          `gorm:"column:customer_name"`
	Year          int             `gorm:"column:year"`
	Quarter       int             `gorm:"column:quarter"`
	TerritoryName string          `gorm:"column:territory_name"`
	TotalActual   decimal.Decimal `gorm:"column:total_actual"`
	TotalForecast decimal.Decimal `gorm:"column:total_forecast"`
}

// RevenueByCustomerQuarter sums actual and forecast revenue per
// (customer name, year, quarter, territory name), ordered by customer name,
// then year, then quarter.
func (e *Engine) RevenueByCustomerQuarter(ctx context.Context) ([]CustomerQuarterRow, error) {
	var rows []CustomerQuarterRow
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			cv.name AS customer_name,
			d.year AS year,
			d.quarter AS quarter,
			tv.name AS territory_name,
			SUM(f.actual_amount) AS total_actual,
			SUM(f.forecast_amount) AS total_forecast
		FROM revenue_facts f
		JOIN customer_versions cv ON cv.id = f.customer_version_id
		JOIN territory_versions tv ON tv.id = cv.territory_version_id
		JOIN date_entries d ON d.key = f.revenue_date_key
		GROUP BY cv.name, d.year, d.quarter, tv.name
		ORDER BY cv.name, d.year, d.quarter
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue by customer: %w", err)
	}
	return rows, nil
}

// TerritoryQuarterRow is one group of the by-territory rollup.
type TerritoryQuarterRow struct {
	TerritoryName string          `gorm:"column:territory_name"`
	Year          int             `gorm:"column:year"`
	Quarter       int             `gorm:"column:quarter"`
	TotalActual   decimal.Decimal `gorm:"column:total_actual"`
	TotalForecast decimal.Decimal `gorm:"column:total_forecast"`
}

// RevenueByTerritoryQuarter sums actual and forecast revenue per
// (territory name, year, quarter), ordered by year, then quarter, then
// territory name.
func (e *Engine) RevenueByTerritoryQuarter(ctx context.Context) ([]TerritoryQuarterRow, error) {
	var rows []TerritoryQuarterRow
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			tv.name AS territory_name,
			d.year AS year,
			d.quarter AS quarter,
			SUM(f.actual_amount) AS total_actual,
			SUM(f.forecast_amount) AS total_forecast
		FROM revenue_facts f
		JOIN customer_versions cv ON cv.id = f.customer_version_id
		JOIN territory_versions tv ON tv.id = cv.territory_version_id
		JOIN date_entries d ON d.key = f.revenue_date_key
		GROUP BY tv.name, d.year, d.quarter
		ORDER BY d.year, d.quarter, tv.name
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue by territory: %w", err)
	}
	return rows, nil
}

// CountCustomersOverThreshold counts the distinct customers (by business id)
// with at least one single fact whose actual amount exceeds limit.
func (e *Engine) CountCustomersOverThreshold(ctx context.Context, limit decimal.Decimal) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT cv.business_id)
		FROM revenue_facts f
		JOIN customer_versions cv ON cv.id = f.customer_version_id
		WHERE f.actual_amount > ?
	`, limit).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count customers over threshold: %w", err)
	}
	return count, nil
}

// ExpiredVersions holds the dimension versions whose effective interval ended
// before a given day.
type ExpiredVersions struct {
	Territories []schema.TerritoryVersion
	Customers   []schema.CustomerVersion
}

// ExpiredVersionsAsOf returns every territory and customer version whose
// effective end is set and strictly before todayKey. Open versions and
// versions ending today or later are excluded. The reference day is supplied
// by the caller so results stay a pure function of the arguments.
func (e *Engine) ExpiredVersionsAsOf(ctx context.Context, todayKey domain.DateKey) (*ExpiredVersions, error) {
	var expired ExpiredVersions
	err := e.db.WithContext(ctx).
		Where("effective_end_key IS NOT NULL AND effective_end_key < ?", todayKey).
		Order("business_id ASC, effective_start_key ASC").
		Find(&expired.Territories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired territory versions: %w", err)
	}
	err = e.db.WithContext(ctx).
		Where("effective_end_key IS NOT NULL AND effective_end_key < ?", todayKey).
		Order("business_id ASC, effective_start_key ASC").
		Find(&expired.Customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired customer versions: %w", err)
	}
	return &expired, nil
}

// VersionTimeline returns every version of one entity ordered by effective
// start, the point-in-time listing used by reporting tools.
func (e *Engine) VersionTimeline(ctx context.Context, entity domain.EntityType, businessID string) ([]TimelineRow, error) {
	var table string
	switch entity {
	case domain.EntityTypeTerritory:
		table = schema.TerritoryVersion{}.TableName()
	case domain.EntityTypeCustomer:
		table = schema.CustomerVersion{}.TableName()
	default:
		return nil, fmt.Errorf("unknown entity type %q", entity)
	}

	var rows []TimelineRow
	err := e.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT id, business_id, name, effective_start_key, effective_end_key
		FROM %s
		WHERE business_id = ?
		ORDER BY effective_start_key ASC
	`, table), businessID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list version timeline: %w", err)
	}
	return rows, nil
}

// TimelineRow is one version in a VersionTimeline result.
type TimelineRow struct {
	ID                uint64          `gorm:"column:id"`
	BusinessID        string          `gorm:"column:business_id"`
	Name              string          `gorm:"column:name"`
	EffectiveStartKey domain.DateKey  `gorm:"column:effective_start_key"`
	EffectiveEndKey   *domain.DateKey `gorm:"column:effective_end_key"`
}
