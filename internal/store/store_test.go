package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func mustAmount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedDates populates the registry for 2022 through 2024, enough to cover
// every date the tests touch.
func seedDates(t *testing.T, s Store) {
	t.Helper()
	n, err := s.PopulateDates(context.Background(),
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 1096, n)
}

// seedTerritory creates a territory and returns its first version.
func seedTerritory(t *testing.T, s Store, businessID, name, region string, start domain.DateKey) *schema.TerritoryVersion {
	t.Helper()
	v, err := s.CreateInitialTerritory(context.Background(), CreateTerritoryInput{
		BusinessID: businessID,
		Name:       name,
		Region:     region,
		StartKey:   start,
	})
	require.NoError(t, err)
	return v
}

// seedCustomer creates a customer bound to territoryVersionID.
func seedCustomer(t *testing.T, s Store, businessID, name string, territoryVersionID uint64, start domain.DateKey) *schema.CustomerVersion {
	t.Helper()
	v, err := s.CreateInitialCustomer(context.Background(), CreateCustomerInput{
		BusinessID:         businessID,
		Name:               name,
		TerritoryVersionID: territoryVersionID,
		StartKey:           start,
	})
	require.NoError(t, err)
	return v
}

// RunStoreTests runs the store suite; initDB must hand back an isolated,
// empty database per call.
func RunStoreTests(t *testing.T, initDB func(t *testing.T) *gorm.DB) {
	t.Run("PopulateDates", func(t *testing.T) { testPopulateDates(t, initDB) })
	t.Run("TerritoryVersioning", func(t *testing.T) { testTerritoryVersioning(t, initDB) })
	t.Run("CustomerVersioning", func(t *testing.T) { testCustomerVersioning(t, initDB) })
	t.Run("RecordRevenueFact", func(t *testing.T) { testRecordRevenueFact(t, initDB) })
	t.Run("AsOfAttributionPolicy", func(t *testing.T) { testAsOfAttributionPolicy(t, initDB) })
}

// =============================================================================
// Test: PopulateDates
// =============================================================================

func testPopulateDates(t *testing.T, initDB func(t *testing.T) *gorm.DB) {
	ctx := context.Background()

	t.Run("generates one entry per day with derived fields", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)

		n, err := s.PopulateDates(ctx,
			time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 31, n)

		monday, err := s.GetDateEntry(ctx, 20240701)
		require.NoError(t, err)
		assert.Equal(t, 2024, monday.Year)
		assert.Equal(t, 3, monday.Quarter)
		assert.Equal(t, 7, monday.Month)
		assert.Equal(t, 1, monday.DayOfWeek)
		assert.False(t, monday.IsWeekend)

		saturday, err := s.GetDateEntry(ctx, 20240706)
		require.NoError(t, err)
		assert.Equal(t, 6, saturday.DayOfWeek)
		assert.True(t, saturday.IsWeekend)
	})

	t.Run("repopulating an overlapping range fails and writes nothing", func(t *testing.T) {
		db := initDB(t)
		s := NewPGStore(db, domain.AttributionPolicyFixed)

		_, err := s.PopulateDates(ctx,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		_, err = s.PopulateDates(ctx,
			time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
		require.ErrorIs(t, err, domain.ErrDuplicateKey)

		// The overlapping batch must not have written the non-overlapping tail.
		var count int64
		require.NoError(t, db.Model(&schema.DateEntry{}).Count(&count).Error)
		assert.EqualValues(t, 31, count)
	})

	t.Run("inverted range fails", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		_, err := s.PopulateDates(ctx,
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("missing date entry is not found", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		_, err := s.GetDateEntry(ctx, 20240101)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// =============================================================================
// Test: Territory versioning (SCD transitions)
// =============================================================================

func testTerritoryVersioning(t *testing.T, initDB func(t *testing.T) *gorm.DB) {
	ctx := context.Background()

	t.Run("create initial opens a version", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)

		v := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		assert.NotZero(t, v.ID)
		assert.Equal(t, domain.DateKey(20240101), v.EffectiveStartKey)
		assert.Nil(t, v.EffectiveEndKey)
	})

	t.Run("second create for an open entity conflicts", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)

		_, err := s.CreateInitialTerritory(ctx, CreateTerritoryInput{
			BusinessID: "T-1", Name: "Northeast v2", Region: "east", StartKey: 20240601,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("create with unregistered start date fails", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		_, err := s.CreateInitialTerritory(ctx, CreateTerritoryInput{
			BusinessID: "T-1", Name: "Northeast", Region: "east", StartKey: 20240101,
		})
		assert.ErrorIs(t, err, domain.ErrForeignKey)
	})

	t.Run("revise closes the old version and opens the new", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		first := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)

		second, err := s.ReviseTerritory(ctx, ReviseTerritoryInput{
			BusinessID: "T-1", Name: "Northeast Expanded", Region: "east", ChangeKey: 20241001,
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Nil(t, second.EffectiveEndKey)

		// On the change day the new version is authoritative...
		got, err := s.TerritoryAsOf(ctx, "T-1", 20241001)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, "Northeast Expanded", got.Name)

		// ...and the day before still belongs to the old one.
		got, err = s.TerritoryAsOf(ctx, "T-1", 20240930)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		require.NotNil(t, got.EffectiveEndKey)
		assert.Equal(t, domain.DateKey(20241001), *got.EffectiveEndKey)
	})

	t.Run("revise without an open version fails", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		_, err := s.ReviseTerritory(ctx, ReviseTerritoryInput{
			BusinessID: "ghost", Name: "x", Region: "x", ChangeKey: 20240601,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("revise on or before the open start fails and changes nothing", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		seedTerritory(t, s, "T-1", "Northeast", "east", 20240601)

		_, err := s.ReviseTerritory(ctx, ReviseTerritoryInput{
			BusinessID: "T-1", Name: "y", Region: "y", ChangeKey: 20240601,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)

		_, err = s.ReviseTerritory(ctx, ReviseTerritoryInput{
			BusinessID: "T-1", Name: "y", Region: "y", ChangeKey: 20240401,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)

		// Prior state intact: one version, still open.
		history, err := s.TerritoryHistory(ctx, "T-1")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Nil(t, history[0].EffectiveEndKey)
		assert.Equal(t, "Northeast", history[0].Name)
	})

	t.Run("repeated revisions keep exactly one open version", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		seedTerritory(t, s, "T-1", "v1", "east", 20220101)
		for _, key := range []domain.DateKey{20220601, 20230101, 20230801, 20240301} {
			_, err := s.ReviseTerritory(ctx, ReviseTerritoryInput{
				BusinessID: "T-1", Name: "rev " + key.String(), Region: "east", ChangeKey: key,
			})
			require.NoError(t, err)
		}

		history, err := s.TerritoryHistory(ctx, "T-1")
		require.NoError(t, err)
		require.Len(t, history, 5)

		open := 0
		for i, v := range history {
			if v.EffectiveEndKey == nil {
				open++
				continue
			}
			// Contiguous: each closed version ends where its successor starts.
			assert.Equal(t, history[i+1].EffectiveStartKey, *v.EffectiveEndKey)
		}
		assert.Equal(t, 1, open)

		// No date is covered twice and every covered date resolves uniquely.
		for _, key := range []domain.DateKey{20220101, 20220531, 20220601, 20240229, 20241231} {
			got, err := s.TerritoryAsOf(ctx, "T-1", key)
			require.NoError(t, err)
			matches := 0
			for _, v := range history {
				if schema.Covers(v.EffectiveStartKey, v.EffectiveEndKey, key) {
					matches++
					assert.Equal(t, v.ID, got.ID)
				}
			}
			assert.Equal(t, 1, matches, "date %s covered by %d versions", key, matches)
		}
	})

	t.Run("as of a date before the first version fails", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		_, err := s.TerritoryAsOf(ctx, "T-1", 20231231)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("lists distinct business ids", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		seedTerritory(t, s, "T-2", "Mid-Market", "central", 20220101)
		seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		_, err := s.ReviseTerritory(ctx, ReviseTerritoryInput{
			BusinessID: "T-2", Name: "Mid-Market v2", Region: "central", ChangeKey: 20230101,
		})
		require.NoError(t, err)

		ids, err := s.ListTerritoryBusinessIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"T-1", "T-2"}, ids)
	})
}

// =============================================================================
// Test: Customer versioning
// =============================================================================

func testCustomerVersioning(t *testing.T, initDB func(t *testing.T) *gorm.DB) {
	ctx := context.Background()

	t.Run("created-on is set once and survives revisions", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		northeast := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		midMarket := seedTerritory(t, s, "T-2", "Mid-Market", "central", 20240101)

		first := seedCustomer(t, s, "101", "Acme Corp", northeast.ID, 20240701)
		assert.Equal(t, domain.DateKey(20240701), first.CreatedOnKey)
		assert.Equal(t, northeast.ID, first.TerritoryVersionID)

		second, err := s.ReviseCustomer(ctx, ReviseCustomerInput{
			BusinessID: "101", Name: "Acme Corp", TerritoryVersionID: midMarket.ID, ChangeKey: 20241001,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DateKey(20240701), second.CreatedOnKey)
		assert.Equal(t, midMarket.ID, second.TerritoryVersionID)

		// The first version's territory binding is untouched.
		got, err := s.CustomerAsOf(ctx, "101", 20240701)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, northeast.ID, got.TerritoryVersionID)
	})

	t.Run("create with unknown territory version fails", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		_, err := s.CreateInitialCustomer(ctx, CreateCustomerInput{
			BusinessID: "101", Name: "Acme Corp", TerritoryVersionID: 9999, StartKey: 20240701,
		})
		assert.ErrorIs(t, err, domain.ErrForeignKey)
	})

	t.Run("second open customer conflicts", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		northeast := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		seedCustomer(t, s, "101", "Acme Corp", northeast.ID, 20240701)

		_, err := s.CreateInitialCustomer(ctx, CreateCustomerInput{
			BusinessID: "101", Name: "Acme Corp", TerritoryVersionID: northeast.ID, StartKey: 20240801,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("history is ordered by effective start", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)
		northeast := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		seedCustomer(t, s, "101", "Acme Corp", northeast.ID, 20240201)
		for _, key := range []domain.DateKey{20240401, 20240801} {
			_, err := s.ReviseCustomer(ctx, ReviseCustomerInput{
				BusinessID: "101", Name: "Acme Corp", TerritoryVersionID: northeast.ID, ChangeKey: key,
			})
			require.NoError(t, err)
		}

		history, err := s.CustomerHistory(ctx, "101")
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, domain.DateKey(20240201), history[0].EffectiveStartKey)
		assert.Equal(t, domain.DateKey(20240401), history[1].EffectiveStartKey)
		assert.Equal(t, domain.DateKey(20240801), history[2].EffectiveStartKey)
	})
}

// =============================================================================
// Test: Revenue facts
// =============================================================================

func testRecordRevenueFact(t *testing.T, initDB func(t *testing.T) *gorm.DB) {
	ctx := context.Background()

	// seedFixture builds territory T-1 and customer 101 and returns the
	// customer's first version.
	seedFixture := func(t *testing.T, s Store) *schema.CustomerVersion {
		seedDates(t, s)
		northeast := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		return seedCustomer(t, s, "101", "Acme Corp", northeast.ID, 20240701)
	}

	t.Run("records a fact against the given customer version", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		cv := seedFixture(t, s)

		fact, err := s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:   "evt-1",
			CustomerVersionID: cv.ID,
			ActualAmount:      mustAmount("500.00"),
			ForecastAmount:    mustAmount("450.00"),
			RevenueDateKey:    20240701,
			Source:            []byte(`{"system":"crm","line":17}`),
		})
		require.NoError(t, err)
		assert.Equal(t, cv.ID, fact.CustomerVersionID)

		got, err := s.GetRevenueFact(ctx, "evt-1")
		require.NoError(t, err)
		assert.True(t, got.ActualAmount.Equal(mustAmount("500.00")))
		assert.True(t, got.ForecastAmount.Equal(mustAmount("450.00")))
		assert.Equal(t, domain.DateKey(20240701), got.RevenueDateKey)
	})

	t.Run("negative amounts are rejected and nothing is written", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		cv := seedFixture(t, s)

		before, err := s.CountRevenueFacts(ctx)
		require.NoError(t, err)

		_, err = s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:   "evt-neg",
			CustomerVersionID: cv.ID,
			ActualAmount:      mustAmount("-1.00"),
			ForecastAmount:    mustAmount("0"),
			RevenueDateKey:    20240701,
		})
		require.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:   "evt-neg-forecast",
			CustomerVersionID: cv.ID,
			ActualAmount:      mustAmount("0"),
			ForecastAmount:    mustAmount("-0.01"),
			RevenueDateKey:    20240701,
		})
		require.ErrorIs(t, err, domain.ErrInvalidAmount)

		after, err := s.CountRevenueFacts(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown customer version is a foreign key error", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		seedDates(t, s)

		_, err := s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:   "evt-2",
			CustomerVersionID: 424242,
			ActualAmount:      mustAmount("1.00"),
			ForecastAmount:    mustAmount("1.00"),
			RevenueDateKey:    20240701,
		})
		require.ErrorIs(t, err, domain.ErrForeignKey)

		count, err := s.CountRevenueFacts(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("unregistered revenue date is a foreign key error", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		cv := seedFixture(t, s)

		_, err := s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:   "evt-3",
			CustomerVersionID: cv.ID,
			ActualAmount:      mustAmount("1.00"),
			ForecastAmount:    mustAmount("1.00"),
			RevenueDateKey:    20250101, // registry only covers 2022-2024
		})
		assert.ErrorIs(t, err, domain.ErrForeignKey)
	})

	t.Run("duplicate business event id is rejected", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		cv := seedFixture(t, s)

		input := RecordRevenueFactInput{
			BusinessEventID:   "evt-dup",
			CustomerVersionID: cv.ID,
			ActualAmount:      mustAmount("10.00"),
			ForecastAmount:    mustAmount("10.00"),
			RevenueDateKey:    20240701,
		}
		_, err := s.RecordRevenueFact(ctx, input)
		require.NoError(t, err)
		_, err = s.RecordRevenueFact(ctx, input)
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	})

	t.Run("empty business event id gets generated", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		cv := seedFixture(t, s)

		fact, err := s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			CustomerVersionID: cv.ID,
			ActualAmount:      mustAmount("10.00"),
			ForecastAmount:    mustAmount("0"),
			RevenueDateKey:    20240701,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, fact.BusinessEventID)
	})

	t.Run("lists facts across all versions of a customer", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyFixed)
		cv := seedFixture(t, s)
		midMarket := seedTerritory(t, s, "T-2", "Mid-Market", "central", 20240101)
		cv2, err := s.ReviseCustomer(ctx, ReviseCustomerInput{
			BusinessID: "101", Name: "Acme Corp", TerritoryVersionID: midMarket.ID, ChangeKey: 20241001,
		})
		require.NoError(t, err)

		for _, f := range []struct {
			id      string
			version uint64
			date    domain.DateKey
		}{
			{"evt-b", cv2.ID, 20241105},
			{"evt-a", cv.ID, 20240715},
		} {
			_, err := s.RecordRevenueFact(ctx, RecordRevenueFactInput{
				BusinessEventID:   f.id,
				CustomerVersionID: f.version,
				ActualAmount:      mustAmount("5.00"),
				ForecastAmount:    mustAmount("5.00"),
				RevenueDateKey:    f.date,
			})
			require.NoError(t, err)
		}

		facts, err := s.ListRevenueFactsByCustomer(ctx, "101")
		require.NoError(t, err)
		require.Len(t, facts, 2)
		assert.Equal(t, "evt-a", facts[0].BusinessEventID)
		assert.Equal(t, "evt-b", facts[1].BusinessEventID)
	})
}

// =============================================================================
// Test: as-of attribution policy
// =============================================================================

func testAsOfAttributionPolicy(t *testing.T, initDB func(t *testing.T) *gorm.DB) {
	ctx := context.Background()

	t.Run("resolves the version valid on the revenue date", func(t *testing.T) {
		db := initDB(t)
		s := NewPGStore(db, domain.AttributionPolicyAsOf)
		seedDates(t, s)
		northeast := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		midMarket := seedTerritory(t, s, "T-2", "Mid-Market", "central", 20240101)
		first := seedCustomer(t, s, "101", "Acme Corp", northeast.ID, 20240701)
		second, err := s.ReviseCustomer(ctx, ReviseCustomerInput{
			BusinessID: "101", Name: "Acme Corp", TerritoryVersionID: midMarket.ID, ChangeKey: 20241001,
		})
		require.NoError(t, err)

		// A late-arriving fact for a pre-revision date lands on the first
		// version even though the second is current.
		fact, err := s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:    "evt-late",
			CustomerBusinessID: "101",
			ActualAmount:       mustAmount("100.00"),
			ForecastAmount:     mustAmount("100.00"),
			RevenueDateKey:     20240815,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, fact.CustomerVersionID)

		// A fact dated after the revision lands on the successor.
		fact, err = s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:    "evt-current",
			CustomerBusinessID: "101",
			ActualAmount:       mustAmount("100.00"),
			ForecastAmount:     mustAmount("100.00"),
			RevenueDateKey:     20241015,
		})
		require.NoError(t, err)
		assert.Equal(t, second.ID, fact.CustomerVersionID)
	})

	t.Run("fails when no version covers the revenue date", func(t *testing.T) {
		s := NewPGStore(initDB(t), domain.AttributionPolicyAsOf)
		seedDates(t, s)
		northeast := seedTerritory(t, s, "T-1", "Northeast", "east", 20240101)
		seedCustomer(t, s, "101", "Acme Corp", northeast.ID, 20240701)

		_, err := s.RecordRevenueFact(ctx, RecordRevenueFactInput{
			BusinessEventID:    "evt-early",
			CustomerBusinessID: "101",
			ActualAmount:       mustAmount("100.00"),
			ForecastAmount:     mustAmount("100.00"),
			RevenueDateKey:     20240101, // predates the customer's first version
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		count, err := s.CountRevenueFacts(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
