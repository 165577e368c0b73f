package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/store/schema"
)

// versionPtr constrains PT to a pointer to a version row struct. The slowly-
// changing-dimension transition logic below is written once against this
// constraint and instantiated for territories and customers.
type versionPtr[T any] interface {
	*T
	schema.VersionRow
}

// createInitialVersion inserts row as the first, open version of its
// business id. Fails with domain.ErrConflict when an open version already
// exists or the (business_id, effective_start) pair is taken; the partial
// unique index on open versions backstops concurrent creators.
func createInitialVersion[T any, PT versionPtr[T]](tx *gorm.DB, row PT) error {
	var count int64
	err := tx.Model(PT(new(T))).
		Where("business_id = ? AND effective_end_key IS NULL", row.GetBusinessID()).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check for open version: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%s %q: %w", row.TableName(), row.GetBusinessID(), domain.ErrConflict)
	}

	if err := tx.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s %q at %s: %w", row.TableName(), row.GetBusinessID(), row.GetEffectiveStartKey(), domain.ErrConflict)
		}
		return fmt.Errorf("failed to create initial version: %w", err)
	}
	return nil
}

// reviseVersion performs the SCD type 2 transition for one business id:
// the open version is closed at changeKey and a successor built by next is
// inserted, both inside the caller's transaction. The open version is read
// under SELECT ... FOR UPDATE so concurrent revisions of the same business
// id serialize; revisions of different business ids do not contend.
//
// next receives the version being closed (before its end is set) and must
// return the successor row with its effective interval unset; the interval
// is assigned here.
func reviseVersion[T any, PT versionPtr[T]](tx *gorm.DB, businessID string, changeKey domain.DateKey, next func(prev PT) PT) (PT, error) {
	var prev T
	pprev := PT(&prev)
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND effective_end_key IS NULL", businessID).
		First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no open version for %q: %w", businessID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock open version: %w", err)
	}

	if changeKey <= pprev.GetEffectiveStartKey() {
		return nil, fmt.Errorf("change key %s not after version start %s: %w",
			changeKey, pprev.GetEffectiveStartKey(), domain.ErrInvalidRange)
	}

	successor := next(pprev)

	if err := tx.Model(pprev).Update("effective_end_key", changeKey).Error; err != nil {
		return nil, fmt.Errorf("failed to close version: %w", err)
	}

	if err := tx.Create(successor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("version starting %s already exists for %q: %w", changeKey, businessID, domain.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to create successor version: %w", err)
	}
	return successor, nil
}

// versionAsOf returns the version whose effective interval covers key, using
// half-open [start, end) containment.
func versionAsOf[T any, PT versionPtr[T]](db *gorm.DB, businessID string, key domain.DateKey) (PT, error) {
	var row T
	err := db.
		Where("business_id = ? AND effective_start_key <= ? AND (effective_end_key IS NULL OR ? < effective_end_key)",
			businessID, key, key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no version of %q covers %s: %w", businessID, key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve version as of %s: %w", key, err)
	}
	return PT(&row), nil
}

// versionHistory returns all versions of a business id ordered by effective start.
func versionHistory[T any, PT versionPtr[T]](db *gorm.DB, businessID string) ([]T, error) {
	var rows []T
	err := db.
		Where("business_id = ?", businessID).
		Order("effective_start_key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list version history: %w", err)
	}
	return rows, nil
}

// listBusinessIDs returns the distinct business ids present in a version table.
func listBusinessIDs[T any, PT versionPtr[T]](db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.Model(PT(new(T))).
		Distinct("business_id").
		Order("business_id ASC").
		Pluck("business_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list business ids: %w", err)
	}
	return ids, nil
}
