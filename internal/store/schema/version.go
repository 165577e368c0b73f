package schema

import "github.com/meridianbi/revenue-mart/internal/domain"

// VersionRow is the common shape of a slowly-changing-dimension version row.
// Implemented by *TerritoryVersion and *CustomerVersion so the SCD transition
// logic can be written once, generic over the concrete row type.
type VersionRow interface {
	GetBusinessID() string
	GetEffectiveStartKey() domain.DateKey
	GetEffectiveEndKey() *domain.DateKey
	// CloseAt terminates the version's effective interval at key (exclusive).
	CloseAt(key domain.DateKey)
	TableName() string
}

// Covers reports whether a version with the given interval is authoritative
// on key, using half-open [start, end) containment. A nil end means the
// version is still open.
func Covers(start domain.DateKey, end *domain.DateKey, key domain.DateKey) bool {
	return start <= key && (end == nil || key < *end)
}
