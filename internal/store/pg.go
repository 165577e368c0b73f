package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meridianbi/revenue-mart/internal/calendar"
	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/store/schema"
)

type pgStore struct {
	db     *gorm.DB
	policy domain.AttributionPolicy
}

// NewPGStore creates a new PostgreSQL store instance. The attribution policy
// decides how revenue facts are bound to customer versions at recording time
// and is fixed for the store's lifetime.
func NewPGStore(db *gorm.DB, policy domain.AttributionPolicy) Store {
	if !policy.Valid() {
		policy = domain.AttributionPolicyFixed
	}
	return &pgStore{db: db, policy: policy}
}

// Connect opens a GORM connection to PostgreSQL, retrying with exponential
// backoff until ctx is canceled or the retry budget is exhausted. Error
// translation is enabled so constraint violations surface as typed GORM
// errors.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	operation := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Silent),
		})
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the mart's tables, dimensions before facts.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.DateEntry{},
		&schema.TerritoryVersion{},
		&schema.CustomerVersion{},
		&schema.RevenueFact{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults via
// NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings
// into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays
// under PostgreSQL's extended-protocol limit of 65535 parameters per query,
// with headroom for batch-level overhead (ON CONFLICT clauses, GORM
// bookkeeping).
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// =============================================================================
// Date registry
// =============================================================================

// PopulateDates materializes one DateEntry per day in [start, end] inclusive.
// The batch insert runs in a single transaction, so a duplicate anywhere in
// the range leaves the registry unchanged.
func (s *pgStore) PopulateDates(ctx context.Context, start, end time.Time) (int, error) {
	total := calendar.Count(start, end)
	if total == 0 {
		return 0, fmt.Errorf("date range %s to %s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), domain.ErrInvalidRange)
	}

	entries := make([]schema.DateEntry, 0, total)
	for day := range calendar.Days(start, end) {
		entries = append(entries, schema.DateEntry{
			Key:          day.Key,
			CalendarDate: day.Date,
			Year:         day.Year,
			Quarter:      day.Quarter,
			Month:        day.Month,
			Day:          day.DayOfMonth,
			DayOfWeek:    day.DayOfWeek,
			WeekOfYear:   day.WeekOfYear,
			IsWeekend:    day.IsWeekend,
		})
	}

	batchSize := calculateSafeBatchSize(len(entries), 9)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&entries, batchSize).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("date registry already covers part of %s to %s: %w",
				start.Format("2006-01-02"), end.Format("2006-01-02"), domain.ErrDuplicateKey)
		}
		return 0, fmt.Errorf("failed to populate dates: %w", err)
	}
	return len(entries), nil
}

// GetDateEntry retrieves a date entry by its key
func (s *pgStore) GetDateEntry(ctx context.Context, key domain.DateKey) (*schema.DateEntry, error) {
	var entry schema.DateEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("date %s not in registry: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get date entry: %w", err)
	}
	return &entry, nil
}

// requireDateEntry verifies key resolves to a registry row inside tx.
func requireDateEntry(tx *gorm.DB, key domain.DateKey) error {
	var count int64
	if err := tx.Model(&schema.DateEntry{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check date entry: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("date %s not in registry: %w", key, domain.ErrForeignKey)
	}
	return nil
}

// =============================================================================
// Territory dimension
// =============================================================================

// CreateInitialTerritory inserts the first, open version of a territory
func (s *pgStore) CreateInitialTerritory(ctx context.Context, input CreateTerritoryInput) (*schema.TerritoryVersion, error) {
	row := &schema.TerritoryVersion{
		BusinessID:        input.BusinessID,
		Name:              input.Name,
		Region:            input.Region,
		EffectiveStartKey: input.StartKey,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireDateEntry(tx, input.StartKey); err != nil {
			return err
		}
		return createInitialVersion[schema.TerritoryVersion](tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ReviseTerritory closes the open version at ChangeKey and opens a successor
// carrying the new attributes, as one atomic transition.
func (s *pgStore) ReviseTerritory(ctx context.Context, input ReviseTerritoryInput) (*schema.TerritoryVersion, error) {
	var successor *schema.TerritoryVersion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireDateEntry(tx, input.ChangeKey); err != nil {
			return err
		}
		var err error
		successor, err = reviseVersion(tx, input.BusinessID, input.ChangeKey,
			func(prev *schema.TerritoryVersion) *schema.TerritoryVersion {
				return &schema.TerritoryVersion{
					BusinessID:        input.BusinessID,
					Name:              input.Name,
					Region:            input.Region,
					EffectiveStartKey: input.ChangeKey,
				}
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return successor, nil
}

// TerritoryAsOf returns the version whose effective interval covers key
func (s *pgStore) TerritoryAsOf(ctx context.Context, businessID string, key domain.DateKey) (*schema.TerritoryVersion, error) {
	return versionAsOf[schema.TerritoryVersion](s.db.WithContext(ctx), businessID, key)
}

// TerritoryHistory returns all versions of a territory ordered by effective start
func (s *pgStore) TerritoryHistory(ctx context.Context, businessID string) ([]schema.TerritoryVersion, error) {
	return versionHistory[schema.TerritoryVersion, *schema.TerritoryVersion](s.db.WithContext(ctx), businessID)
}

// ListTerritoryBusinessIDs returns the distinct business ids with at least one version
func (s *pgStore) ListTerritoryBusinessIDs(ctx context.Context) ([]string, error) {
	return listBusinessIDs[schema.TerritoryVersion, *schema.TerritoryVersion](s.db.WithContext(ctx))
}

// =============================================================================
// Customer dimension
// =============================================================================

// requireTerritoryVersion verifies id resolves to a territory version inside tx.
func requireTerritoryVersion(tx *gorm.DB, id uint64) error {
	var count int64
	if err := tx.Model(&schema.TerritoryVersion{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check territory version: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("territory version %d: %w", id, domain.ErrForeignKey)
	}
	return nil
}

// CreateInitialCustomer inserts the first, open version of a customer. The
// start key becomes the customer's created-on date for the rest of its life.
func (s *pgStore) CreateInitialCustomer(ctx context.Context, input CreateCustomerInput) (*schema.CustomerVersion, error) {
	row := &schema.CustomerVersion{
		BusinessID:         input.BusinessID,
		Name:               input.Name,
		TerritoryVersionID: input.TerritoryVersionID,
		CreatedOnKey:       input.StartKey,
		EffectiveStartKey:  input.StartKey,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireDateEntry(tx, input.StartKey); err != nil {
			return err
		}
		if err := requireTerritoryVersion(tx, input.TerritoryVersionID); err != nil {
			return err
		}
		return createInitialVersion[schema.CustomerVersion](tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ReviseCustomer closes the open version at ChangeKey and opens a successor.
// The created-on date is copied from the version being closed: re-versioning
// must never move a customer's creation date.
func (s *pgStore) ReviseCustomer(ctx context.Context, input ReviseCustomerInput) (*schema.CustomerVersion, error) {
	var successor *schema.CustomerVersion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireDateEntry(tx, input.ChangeKey); err != nil {
			return err
		}
		if err := requireTerritoryVersion(tx, input.TerritoryVersionID); err != nil {
			return err
		}
		var err error
		successor, err = reviseVersion(tx, input.BusinessID, input.ChangeKey,
			func(prev *schema.CustomerVersion) *schema.CustomerVersion {
				return &schema.CustomerVersion{
					BusinessID:         input.BusinessID,
					Name:               input.Name,
					TerritoryVersionID: input.TerritoryVersionID,
					CreatedOnKey:       prev.CreatedOnKey,
					EffectiveStartKey:  input.ChangeKey,
				}
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return successor, nil
}

// CustomerAsOf returns the version whose effective interval covers key
func (s *pgStore) CustomerAsOf(ctx context.Context, businessID string, key domain.DateKey) (*schema.CustomerVersion, error) {
	return versionAsOf[schema.CustomerVersion](s.db.WithContext(ctx), businessID, key)
}

// CustomerHistory returns all versions of a customer ordered by effective start
func (s *pgStore) CustomerHistory(ctx context.Context, businessID string) ([]schema.CustomerVersion, error) {
	return versionHistory[schema.CustomerVersion, *schema.CustomerVersion](s.db.WithContext(ctx), businessID)
}

// ListCustomerBusinessIDs returns the distinct business ids with at least one version
func (s *pgStore) ListCustomerBusinessIDs(ctx context.Context) ([]string, error) {
	return listBusinessIDs[schema.CustomerVersion, *schema.CustomerVersion](s.db.WithContext(ctx))
}

// =============================================================================
// Revenue fact ledger
// =============================================================================

// RecordRevenueFact appends a revenue event to the ledger. Amounts must be
// non-negative and both the customer version and the revenue date must
// resolve; a failed write leaves the ledger unchanged.
func (s *pgStore) RecordRevenueFact(ctx context.Context, input RecordRevenueFactInput) (*schema.RevenueFact, error) {
	if input.ActualAmount.IsNegative() || input.ForecastAmount.IsNegative() {
		return nil, fmt.Errorf("actual %s, forecast %s: %w",
			input.ActualAmount, input.ForecastAmount, domain.ErrInvalidAmount)
	}

	eventID := input.BusinessEventID
	if eventID == "" {
		eventID = ulid.Make().String()
	}

	fact := &schema.RevenueFact{
		BusinessEventID: eventID,
		ActualAmount:    input.ActualAmount,
		ForecastAmount:  input.ForecastAmount,
		RevenueDateKey:  input.RevenueDateKey,
		Source:          datatypes.JSON(input.Source),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireDateEntry(tx, input.RevenueDateKey); err != nil {
			return err
		}

		switch s.policy {
		case domain.AttributionPolicyAsOf:
			version, err := versionAsOf[schema.CustomerVersion](tx, input.CustomerBusinessID, input.RevenueDateKey)
			if err != nil {
				return err
			}
			fact.CustomerVersionID = version.ID
		default:
			var count int64
			if err := tx.Model(&schema.CustomerVersion{}).Where("id = ?", input.CustomerVersionID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check customer version: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("customer version %d: %w", input.CustomerVersionID, domain.ErrForeignKey)
			}
			fact.CustomerVersionID = input.CustomerVersionID
		}

		if err := tx.Create(fact).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("business event %q: %w", eventID, domain.ErrDuplicateKey)
			}
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return fmt.Errorf("fact references missing dimension row: %w", domain.ErrForeignKey)
			}
			return fmt.Errorf("failed to record revenue fact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fact, nil
}

// GetRevenueFact retrieves a fact by its business event id
func (s *pgStore) GetRevenueFact(ctx context.Context, businessEventID string) (*schema.RevenueFact, error) {
	var fact schema.RevenueFact
	err := s.db.WithContext(ctx).Where("business_event_id = ?", businessEventID).First(&fact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("business event %q: %w", businessEventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get revenue fact: %w", err)
	}
	return &fact, nil
}

// ListRevenueFactsByCustomer returns all facts recorded against any version
// of the given customer, ordered by revenue date
func (s *pgStore) ListRevenueFactsByCustomer(ctx context.Context, customerBusinessID string) ([]schema.RevenueFact, error) {
	var facts []schema.RevenueFact
	err := s.db.WithContext(ctx).
		Joins("JOIN customer_versions cv ON cv.id = revenue_facts.customer_version_id").
		Where("cv.business_id = ?", customerBusinessID).
		Order("revenue_facts.revenue_date_key ASC, revenue_facts.id ASC").
		Find(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue facts: %w", err)
	}
	return facts, nil
}

// CountRevenueFacts returns the total number of recorded facts
func (s *pgStore) CountRevenueFacts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&schema.RevenueFact{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count revenue facts: %w", err)
	}
	return count, nil
}
