package tracker

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rtk5/Leetcode-daily-tracker/backend/leetcode"
	"github.com/rtk5/Leetcode-daily-tracker/backend/models"
	"github.com/rtk5/Leetcode-daily-tracker/backend/store"
	"github.com/rtk5/Leetcode-daily-tracker/backend/streak"
)

// stubFetcher serves canned profiles per username, or an error.
type stubFetcher struct {
	mu       sync.Mutex
	profiles map[string]*leetcode.Profile
	err      error
	calls    int
}

func (s *stubFetcher) FetchProfile(_ context.Context, username string) (*leetcode.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	profile, ok := s.profiles[username]
	if !ok {
		return nil, leetcode.ErrUserNotFound
	}
	copied := *profile
	return &copied, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DailyStat{},
		&models.FetchLog{},
	))

	return store.New(db)
}

func newTestTracker(t *testing.T, fetcher Fetcher) (*Tracker, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	logger := log.New(io.Discard, "", 0)
	return New(st, fetcher, logger, Config{}), st
}

func profileWithTotal(username string, total int) *leetcode.Profile {
	return &leetcode.Profile{
		Username:     username,
		TotalSolved:  total,
		EasySolved:   total / 2,
		MediumSolved: total / 3,
		HardSolved:   total - total/2 - total/3,
		AvatarURL:    "https://assets.leetcode.com/" + username + ".png",
	}
}

func TestRefreshMissingUsername(t *testing.T) {
	fetcher := &stubFetcher{}
	tr, st := newTestTracker(t, fetcher)

	_, err := tr.Refresh(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingUsername)

	// Validation failures do no I/O at all.
	assert.Zero(t, fetcher.calls)
	logs, err := st.RecentFetchLogs(10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestRefreshFirstObservation(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	outcome, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, 1, outcome.User.CurrentStreak)
	assert.Equal(t, 1, outcome.User.LongestStreak)
	assert.Equal(t, 125, outcome.User.TotalSolved)
	require.NotNil(t, outcome.User.LastFetchedAt)

	// First cycle writes today's snapshot with the full total as delta.
	stats, err := st.DailyStatsForUser(outcome.User.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 125, stats[0].ProblemsSolved)
	assert.Equal(t, 125, stats[0].TotalSolvedSnapshot)

	logs, err := st.RecentFetchLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
}

func TestRefreshFirstObservationZeroSolved(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"newbie": profileWithTotal("newbie", 0),
	}}
	tr, _ := newTestTracker(t, fetcher)

	outcome, err := tr.Refresh(context.Background(), "newbie")
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.User.CurrentStreak)
	assert.Equal(t, 0, outcome.User.LongestStreak)
}

func TestRefreshFetchFailureTouchesNothing(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{}}
	tr, st := newTestTracker(t, fetcher)

	_, err := tr.Refresh(context.Background(), "ghost")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.NotFound())

	// No user row, but the failure is on the audit trail.
	_, err = st.UserByUsername("ghost")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	logs, err := st.RecentFetchLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Contains(t, logs[0].ErrorMessage, "ghost")
	assert.Nil(t, logs[0].UserID)
}

func TestRefreshFetchFailureKeepsStreakState(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	_, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	fetcher.err = errors.New("connection reset")
	_, err = tr.Refresh(context.Background(), "alice")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.NotFound())

	user, err := st.UserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, user.CurrentStreak)
	assert.Equal(t, 125, user.TotalSolved)
}

func TestRefreshPersistFailureLeavesNoPartialState(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	_, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	// Break the last write of the cycle. The fetch succeeds, the persist
	// fails, and none of the cycle's writes may stick: a half-saved
	// baseline would make the retry read old == new and drop the day.
	require.NoError(t, st.DB.Migrator().DropTable(&models.FetchLog{}))

	fetcher.profiles["alice"] = profileWithTotal("alice", 128)
	_, err = tr.Refresh(context.Background(), "alice")

	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	require.NotNil(t, persistErr.Profile)
	assert.Equal(t, 128, persistErr.Profile.TotalSolved)

	user, err := st.UserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, 125, user.TotalSolved)
	assert.Equal(t, 1, user.CurrentStreak)

	stats, err := st.DailyStatsForUser(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 125, stats[0].ProblemsSolved)

	// With the store healthy again, a plain retry still counts the
	// productive day.
	require.NoError(t, st.DB.AutoMigrate(&models.FetchLog{}))
	outcome, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.User.CurrentStreak)
	assert.Equal(t, 128, outcome.User.TotalSolved)

	stats, err = st.DailyStatsForUser(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 128, stats[0].ProblemsSolved)
}

func TestRefreshFirstObservationPersistFailure(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	require.NoError(t, st.DB.Migrator().DropTable(&models.DailyStat{}))

	_, err := tr.Refresh(context.Background(), "alice")
	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)

	// The create rolled back with the rest of the cycle, and the failure
	// made it onto the audit trail.
	_, err = st.UserByUsername("alice")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	logs, err := st.RecentFetchLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Contains(t, logs[0].ErrorMessage, "failed to persist")

	require.NoError(t, st.DB.AutoMigrate(&models.DailyStat{}))
	outcome, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, 1, outcome.User.CurrentStreak)
}

func TestRefreshSameDayNoChangeIsIdempotent(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	first, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	// Two more cycles with an unchanged total: the streak must hold and
	// today's recorded delta must not be clobbered to zero.
	for i := 0; i < 2; i++ {
		outcome, err := tr.Refresh(context.Background(), "alice")
		require.NoError(t, err)
		assert.False(t, outcome.Created)
		assert.Equal(t, first.User.CurrentStreak, outcome.User.CurrentStreak)
		assert.Equal(t, first.User.LongestStreak, outcome.User.LongestStreak)
	}

	stats, err := st.DailyStatsForUser(first.User.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 125, stats[0].ProblemsSolved)
}

func TestRefreshSameDayProgressAccumulates(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	outcome, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	fetcher.profiles["alice"] = profileWithTotal("alice", 128)
	second, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 128, second.User.TotalSolved)

	stats, err := st.DailyStatsForUser(outcome.User.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 128, stats[0].ProblemsSolved)
	assert.Equal(t, 128, stats[0].TotalSolvedSnapshot)
}

func TestRefreshDecreasingTotal(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	first, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	// Upstream corrects the count downward. Not progress, but it must not
	// erase the already-recorded positive day either.
	fetcher.profiles["alice"] = profileWithTotal("alice", 123)
	outcome, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, outcome.Streak.SolvedToday)
	assert.Equal(t, first.User.CurrentStreak, outcome.User.CurrentStreak)

	stats, err := st.DailyStatsForUser(first.User.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 123, stats[0].ProblemsSolved)
	assert.Equal(t, 123, stats[0].TotalSolvedSnapshot)
}

func TestRefreshExtendsStreakAcrossDays(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, st := newTestTracker(t, fetcher)

	outcome, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	user := outcome.User

	// Backfill five consecutive productive days before today, the shape
	// the store would hold after five daily cycles.
	today := streak.DayOf(time.Now(), tr.cfg.DayOffset)
	day := today.Previous()
	for i := 0; i < 5; i++ {
		require.NoError(t, st.UpsertDailyStat(user.ID, day, 2, 125-2*(i+1)))
		day = day.Previous()
	}
	user.CurrentStreak = 5
	user.LongestStreak = 5
	require.NoError(t, st.SaveUser(user))

	fetcher.profiles["alice"] = profileWithTotal("alice", 127)
	refreshed, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 6, refreshed.User.CurrentStreak)
	assert.Equal(t, 6, refreshed.User.LongestStreak)
}

func TestRefreshAllIsolatesFailures(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
		"bob":   profileWithTotal("bob", 80),
	}}
	tr, st := newTestTracker(t, fetcher)

	_, err := tr.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	_, err = tr.Refresh(context.Background(), "bob")
	require.NoError(t, err)

	// bob's profile disappears upstream; alice must still refresh.
	delete(fetcher.profiles, "bob")
	fetcher.profiles["alice"] = profileWithTotal("alice", 126)

	outcomes, err := tr.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byUser := map[string]UserOutcome{}
	for _, outcome := range outcomes {
		byUser[outcome.Username] = outcome
	}

	assert.NoError(t, byUser["alice"].Err)
	assert.Equal(t, 126, byUser["alice"].Outcome.User.TotalSolved)

	var fetchErr *FetchError
	assert.ErrorAs(t, byUser["bob"].Err, &fetchErr)

	user, err := st.UserByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, 80, user.TotalSolved)
}

func TestRefreshSerializedPerUser(t *testing.T) {
	fetcher := &stubFetcher{profiles: map[string]*leetcode.Profile{
		"alice": profileWithTotal("alice", 125),
	}}
	tr, _ := newTestTracker(t, fetcher)

	// Hammer the same user concurrently; serialization means every cycle
	// sees a consistent old total and the final state is exact.
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := tr.Refresh(context.Background(), "alice")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}

	user, err := tr.store.UserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, 125, user.TotalSolved)
	assert.Equal(t, 1, user.CurrentStreak)

	stats, err := tr.store.DailyStatsForUser(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 125, stats[0].ProblemsSolved)
}
