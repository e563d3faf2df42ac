package models

import (
	"time"

	"gorm.io/gorm"
)

// DailyStat holds one user's progress for one calendar day. The composite
// unique index makes re-ingestion within the same day an overwrite, never a
// duplicate row.
type DailyStat struct {
	gorm.Model
	UserID uint   `gorm:"uniqueIndex:idx_daily_stats_user_date,priority:1;not null"`
	Date   string `gorm:"uniqueIndex:idx_daily_stats_user_date,priority:2;not null"` // YYYY-MM-DD in tracker time zone
	// ProblemsSolved can go negative when LeetCode corrects a count downward.
	ProblemsSolved      int `gorm:"default:0"`
	TotalSolvedSnapshot int `gorm:"default:0"`
}

// FetchLog is the append-only audit trail of ingestion attempts. Rows are
// never updated or deleted.
type FetchLog struct {
	gorm.Model
	UserID       *uint
	FetchTime    time.Time
	Success      bool
	ErrorMessage string
}
