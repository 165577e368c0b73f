package domain

import (
	"fmt"
	"time"
)

// DateKey is the dense sortable key of a date registry entry, encoded as
// YYYYMMDD (e.g. 20240701 for 2024-07-01). All stored rows reference dates
// through this key, never through raw timestamps.
type DateKey int

// NewDateKey derives the registry key for the calendar day of t.
// The time-of-day and location of t are ignored beyond selecting the day.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// ParseDateKey parses a YYYY-MM-DD string into a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDateKey(t), nil
}

// Time converts the key back to a UTC midnight timestamp.
func (k DateKey) Time() time.Time {
	year := int(k) / 10000
	month := time.Month(int(k) / 100 % 100)
	day := int(k) % 100
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether the key round-trips through a real calendar date.
// Keys like 20240230 encode a day that does not exist and are rejected.
func (k DateKey) Valid() bool {
	return k > 0 && NewDateKey(k.Time()) == k
}

func (k DateKey) String() string {
	return k.Time().Format("2006-01-02")
}

// EntityType identifies which versioned dimension an operation targets.
type EntityType string

const (
	// EntityTypeTerritory targets the territory dimension
	EntityTypeTerritory EntityType = "territory"
	// EntityTypeCustomer targets the customer dimension
	EntityTypeCustomer EntityType = "customer"
)

// AttributionPolicy controls how a revenue fact is bound to a customer
// version at recording time.
type AttributionPolicy string

const (
	// AttributionPolicyFixed stores the customer version surrogate passed by
	// the caller as-is. A late-arriving fact for a historical date recorded
	// against the current version follows the current territory.
	AttributionPolicyFixed AttributionPolicy = "fixed"
	// AttributionPolicyAsOf resolves the customer version whose effective
	// interval covers the revenue date at insert time, from the customer's
	// business id.
	AttributionPolicyAsOf AttributionPolicy = "as_of"
)

// Valid reports whether p is a known policy.
func (p AttributionPolicy) Valid() bool {
	return p == AttributionPolicyFixed || p == AttributionPolicyAsOf
}
