package schema

import (
	"time"

	"github.com/meridianbi/revenue-mart/internal/domain"
)

// DateEntry represents the date_entries table - the pre-materialized calendar,
// one row per day. Rows are bulk-generated once for a covering range and never
// updated or deleted afterwards.
type DateEntry struct {
	// Key is the dense sortable date key (YYYYMMDD) and primary key
	Key domain.DateKey `gorm:"column:key;primaryKey;autoIncrement:false"`
	// CalendarDate is the day this entry describes, at UTC midnight
	CalendarDate time.Time `gorm:"column:calendar_date;not null;type:date"`
	// Year is the calendar year
	Year int `gorm:"column:year;not null"`
	// Quarter is the calendar quarter (1-4)
	Quarter int `gorm:"column:quarter;not null"`
	// Month is the calendar month (1-12)
	Month int `gorm:"column:month;not null"`
	// Day is the day of the month (1-31)
	Day int `gorm:"column:day;not null"`
	// DayOfWeek uses ISO-8601 numbering: 1=Monday .. 7=Sunday
	DayOfWeek int `gorm:"column:day_of_week;not null"`
	// WeekOfYear is the ISO-8601 week number
	WeekOfYear int `gorm:"column:week_of_year;not null"`
	// IsWeekend is true iff the day is a Saturday or Sunday
	IsWeekend bool `gorm:"column:is_weekend;not null"`
}

// TableName specifies the table name for the DateEntry model
func (DateEntry) TableName() string {
	return "date_entries"
}
