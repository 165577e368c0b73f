package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/store/schema"
)

// CreateTerritoryInput holds the attributes of a territory's first version.
type CreateTerritoryInput struct {
	BusinessID string
	Name       string
	Region     string
	StartKey   domain.DateKey
}

// ReviseTerritoryInput holds the attributes of a territory's successor
// version, effective from ChangeKey.
type ReviseTerritoryInput struct {
	BusinessID string
	Name       string
	Region     string
	ChangeKey  domain.DateKey
}

// CreateCustomerInput holds the attributes of a customer's first version.
// StartKey doubles as the customer's created-on date.
type CreateCustomerInput struct {
	BusinessID         string
	Name               string
	TerritoryVersionID uint64
	StartKey           domain.DateKey
}

// ReviseCustomerInput holds the attributes of a customer's successor version.
// The created-on date is carried over from the version being closed, never
// supplied by the caller.
type ReviseCustomerInput struct {
	BusinessID         string
	Name               string
	TerritoryVersionID uint64
	ChangeKey          domain.DateKey
}

// RecordRevenueFactInput holds a revenue event to append to the ledger.
// Under the fixed attribution policy CustomerVersionID is stored as-is;
// under the as-of policy CustomerBusinessID is resolved to the version valid
// on RevenueDateKey and CustomerVersionID is ignored. An empty
// BusinessEventID is replaced with a generated ULID.
type RecordRevenueFactInput struct {
	BusinessEventID    string
	CustomerVersionID  uint64
	CustomerBusinessID string
	ActualAmount       decimal.Decimal
	ForecastAmount     decimal.Decimal
	RevenueDateKey     domain.DateKey
	Source             json.RawMessage
}

// Store defines the interface for database operations
type Store interface {
	// PopulateDates materializes one date entry per day in [start, end]
	// inclusive and returns the number of rows written. Re-running over an
	// already-populated range fails with domain.ErrDuplicateKey.
	PopulateDates(ctx context.Context, start, end time.Time) (int, error)
	// GetDateEntry retrieves a date entry by its key
	GetDateEntry(ctx context.Context, key domain.DateKey) (*schema.DateEntry, error)

	// CreateInitialTerritory inserts the first, open version of a territory
	CreateInitialTerritory(ctx context.Context, input CreateTerritoryInput) (*schema.TerritoryVersion, error)
	// ReviseTerritory closes the open version at ChangeKey and opens a
	// successor, as a single transaction
	ReviseTerritory(ctx context.Context, input ReviseTerritoryInput) (*schema.TerritoryVersion, error)
	// TerritoryAsOf returns the version whose effective interval covers key
	TerritoryAsOf(ctx context.Context, businessID string, key domain.DateKey) (*schema.TerritoryVersion, error)
	// TerritoryHistory returns all versions of a territory ordered by effective start
	TerritoryHistory(ctx context.Context, businessID string) ([]schema.TerritoryVersion, error)
	// ListTerritoryBusinessIDs returns the distinct business ids with at least one version
	ListTerritoryBusinessIDs(ctx context.Context) ([]string, error)

	// CreateInitialCustomer inserts the first, open version of a customer
	CreateInitialCustomer(ctx context.Context, input CreateCustomerInput) (*schema.CustomerVersion, error)
	// ReviseCustomer closes the open version at ChangeKey and opens a
	// successor, as a single transaction, preserving the created-on date
	ReviseCustomer(ctx context.Context, input ReviseCustomerInput) (*schema.CustomerVersion, error)
	// CustomerAsOf returns the version whose effective interval covers key
	CustomerAsOf(ctx context.Context, businessID string, key domain.DateKey) (*schema.CustomerVersion, error)
	// CustomerHistory returns all versions of a customer ordered by effective start
	CustomerHistory(ctx context.Context, businessID string) ([]schema.CustomerVersion, error)
	// ListCustomerBusinessIDs returns the distinct business ids with at least one version
	ListCustomerBusinessIDs(ctx context.Context) ([]string, error)

	// RecordRevenueFact appends a revenue event to the ledger
	RecordRevenueFact(ctx context.Context, input RecordRevenueFactInput) (*schema.RevenueFact, error)
	// GetRevenueFact retrieves a fact by its business event id
	GetRevenueFact(ctx context.Context, businessEventID string) (*schema.RevenueFact, error)
	// ListRevenueFactsByCustomer returns all facts recorded against any
	// version of the given customer, ordered by revenue date
	ListRevenueFactsByCustomer(ctx context.Context, customerBusinessID string) ([]schema.RevenueFact, error)
	// CountRevenueFacts returns the total number of recorded facts
	CountRevenueFacts(ctx context.Context) (int64, error)
}
