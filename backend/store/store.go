package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rtk5/Leetcode-daily-tracker/backend/models"
	"github.com/rtk5/Leetcode-daily-tracker/backend/streak"
)

// ErrUserNotFound is returned by lookups when no row matches.
var ErrUserNotFound = errors.New("user not found")

// Store is the persistence accessor for streak state, daily snapshots and
// the fetch audit log.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// UserByUsername loads a user by LeetCode username.
func (s *Store) UserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("leetcode_username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByID loads a user by primary key.
func (s *Store) UserByID(id uint) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Store) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// DeleteUser removes a user for good. Hard delete, so the username can be
// re-added later without tripping the unique index on a soft-deleted row.
func (s *Store) DeleteUser(id uint) error {
	return s.DB.Unscoped().Delete(&models.User{}, id).Error
}

// UsersByTotalSolved returns all users ordered for the leaderboard.
func (s *Store) UsersByTotalSolved() ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("total_solved DESC").Find(&users).Error
	return users, err
}

// RecentDailyStats returns at most window distinct days for the user,
// newest first, shaped for the streak engine.
func (s *Store) RecentDailyStats(userID uint, window int) ([]streak.Snapshot, error) {
	var stats []models.DailyStat
	err := s.DB.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(window).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]streak.Snapshot, 0, len(stats))
	for _, stat := range stats {
		snapshots = append(snapshots, streak.Snapshot{
			Day:    streak.DayKey(stat.Date),
			Solved: stat.ProblemsSolved,
		})
	}
	return snapshots, nil
}

// UpsertDailyStat inserts or replaces the (user, day) snapshot. A second
// call for the same day overwrites the delta and cumulative snapshot,
// leaving exactly one row.
func (s *Store) UpsertDailyStat(userID uint, day streak.DayKey, delta, totalSnapshot int) error {
	stat := models.DailyStat{
		UserID:              userID,
		Date:                string(day),
		ProblemsSolved:      delta,
		TotalSolvedSnapshot: totalSnapshot,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"problems_solved", "total_solved_snapshot", "updated_at",
		}),
	}).Create(&stat).Error
}

// DailyStatsForUser returns the user's trailing daily rows, newest first.
func (s *Store) DailyStatsForUser(userID uint, days int) ([]models.DailyStat, error) {
	var stats []models.DailyStat
	err := s.DB.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(days).
		Find(&stats).Error
	return stats, err
}

// SaveCycle persists everything one successful ingestion cycle produces —
// the user row, today's snapshot, and the success log entry — in a single
// transaction. A failure rolls the whole cycle back, so no partial state
// survives: the old cumulative baseline stays put and a plain retry
// re-records the day's progress instead of seeing it already consumed.
func (s *Store) SaveCycle(user *models.User, create bool, day streak.DayKey, delta, totalSnapshot int, fetchTime time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		txStore := New(tx)
		if create {
			if err := txStore.CreateUser(user); err != nil {
				return err
			}
		} else {
			if err := txStore.SaveUser(user); err != nil {
				return err
			}
		}
		if err := txStore.UpsertDailyStat(user.ID, day, delta, totalSnapshot); err != nil {
			return err
		}
		return txStore.AppendFetchLog(&user.ID, fetchTime, true, "")
	})
}

// AppendFetchLog records one ingestion attempt. The log is append-only;
// nothing in the codebase updates or deletes these rows.
func (s *Store) AppendFetchLog(userID *uint, fetchTime time.Time, success bool, errMessage string) error {
	entry := models.FetchLog{
		UserID:       userID,
		FetchTime:    fetchTime,
		Success:      success,
		ErrorMessage: errMessage,
	}
	return s.DB.Create(&entry).Error
}

// RecentFetchLogs returns the latest log entries, newest first.
func (s *Store) RecentFetchLogs(limit int) ([]models.FetchLog, error) {
	var logs []models.FetchLog
	err := s.DB.Order("fetch_time DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
