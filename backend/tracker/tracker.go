package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rtk5/Leetcode-daily-tracker/backend/leetcode"
	"github.com/rtk5/Leetcode-daily-tracker/backend/models"
	"github.com/rtk5/Leetcode-daily-tracker/backend/store"
	"github.com/rtk5/Leetcode-daily-tracker/backend/streak"
)

// Fetcher is the outbound profile source. Satisfied by *leetcode.Client;
// tests swap in a stub.
type Fetcher interface {
	FetchProfile(ctx context.Context, username string) (*leetcode.Profile, error)
}

// Config carries the knobs the orchestrator needs. Zero values fall back
// to sensible defaults in New.
type Config struct {
	DayOffset  time.Duration // fixed UTC offset for day boundaries
	WindowDays int           // trailing snapshot window consulted per streak
	MaxWorkers int           // concurrent refreshes during RefreshAll
}

const (
	defaultWindowDays = 30
	defaultMaxWorkers = 5
)

// Tracker drives one ingestion cycle per user: fetch, compute, persist,
// log. All collaborators are injected; there is no package-level state.
type Tracker struct {
	store  *store.Store
	client Fetcher
	logger *log.Logger
	cfg    Config

	// one mutex per username so two cycles for the same user never overlap
	locks sync.Map
}

func New(st *store.Store, client Fetcher, logger *log.Logger, cfg Config) *Tracker {
	if cfg.DayOffset == 0 {
		cfg.DayOffset = streak.DefaultOffset
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = defaultWindowDays
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	return &Tracker{store: st, client: client, logger: logger, cfg: cfg}
}

// Outcome is the result of one successful ingestion cycle.
type Outcome struct {
	Profile *leetcode.Profile
	User    *models.User
	Created bool
	Streak  streak.Result
}

// Refresh runs one full fetch-compute-persist cycle for username.
//
// Cycles for the same user are serialized: the streak computation reads the
// previous cumulative total from the user row, and a concurrent cycle
// would race on it. Different users proceed independently, so a stuck
// fetch for one never blocks the rest.
func (t *Tracker) Refresh(ctx context.Context, username string) (*Outcome, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrMissingUsername
	}

	mu := t.userLock(username)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now()
	profile, err := t.client.FetchProfile(ctx, username)
	if err != nil {
		// Failed fetch: audit it and leave streak state untouched.
		message := fmt.Sprintf("failed to fetch data for %s: %v", username, err)
		if logErr := t.store.AppendFetchLog(nil, now, false, message); logErr != nil {
			t.logger.Printf("fetch log write failed for %s: %v", username, logErr)
		}
		return nil, &FetchError{Username: username, Err: err}
	}

	user, err := t.store.UserByUsername(username)
	switch {
	case err == nil:
		return t.refreshExisting(user, profile, now)
	case errors.Is(err, store.ErrUserNotFound):
		return t.createFirstObservation(username, profile, now)
	default:
		return nil, t.persistFailed(username, nil, profile, now, err)
	}
}

func (t *Tracker) refreshExisting(user *models.User, profile *leetcode.Profile, now time.Time) (*Outcome, error) {
	today := streak.DayOf(now, t.cfg.DayOffset)
	oldTotal := user.TotalSolved

	history, err := t.store.RecentDailyStats(user.ID, t.cfg.WindowDays)
	if err != nil {
		return nil, t.persistFailed(user.LeetcodeUsername, &user.ID, profile, now, err)
	}

	result := streak.Compute(streak.Input{
		OldTotal:     oldTotal,
		NewTotal:     profile.TotalSolved,
		PriorCurrent: user.CurrentStreak,
		PriorLongest: user.LongestStreak,
		History:      history,
		Today:        today,
	})

	// The day's delta is measured against the count at the start of the
	// day, not the previous cycle. oldTotal equals today's last snapshot
	// once a cycle has run, so adding the recorded delta back recovers the
	// start-of-day baseline. Without this a later no-change cycle would
	// overwrite an earlier positive delta with zero.
	dayDelta := profile.TotalSolved - oldTotal
	for _, snap := range history {
		if snap.Day == today {
			dayDelta += snap.Solved
			break
		}
	}

	user.TotalSolved = profile.TotalSolved
	user.EasySolved = profile.EasySolved
	user.MediumSolved = profile.MediumSolved
	user.HardSolved = profile.HardSolved
	user.AvatarURL = profile.AvatarURL
	user.CurrentStreak = result.Current
	user.LongestStreak = result.Longest
	user.LastFetchedAt = &now

	if err := t.store.SaveCycle(user, false, today, dayDelta, profile.TotalSolved, now); err != nil {
		return nil, t.persistFailed(user.LeetcodeUsername, &user.ID, profile, now, err)
	}

	return &Outcome{Profile: profile, User: user, Streak: result}, nil
}

func (t *Tracker) createFirstObservation(username string, profile *leetcode.Profile, now time.Time) (*Outcome, error) {
	today := streak.DayOf(now, t.cfg.DayOffset)

	// No history yet: first observation seeds the streak from the engine's
	// empty-window base case.
	result := streak.Compute(streak.Input{
		OldTotal: 0,
		NewTotal: profile.TotalSolved,
		Today:    today,
	})

	user := &models.User{
		LeetcodeUsername: username,
		DisplayName:      profile.Username,
		AvatarURL:        profile.AvatarURL,
		TotalSolved:      profile.TotalSolved,
		EasySolved:       profile.EasySolved,
		MediumSolved:     profile.MediumSolved,
		HardSolved:       profile.HardSolved,
		CurrentStreak:    result.Current,
		LongestStreak:    result.Longest,
		LastFetchedAt:    &now,
	}
	if err := t.store.SaveCycle(user, true, today, profile.TotalSolved, profile.TotalSolved, now); err != nil {
		// The create rolled back, so there is no user row to pin the audit
		// entry to.
		return nil, t.persistFailed(username, nil, profile, now, err)
	}

	return &Outcome{Profile: profile, User: user, Created: true, Streak: result}, nil
}

// persistFailed audits a store failure (best effort, the store may be the
// problem) and wraps it so callers can retry without re-fetching.
func (t *Tracker) persistFailed(username string, userID *uint, profile *leetcode.Profile, now time.Time, err error) error {
	message := fmt.Sprintf("failed to persist data for %s: %v", username, err)
	if logErr := t.store.AppendFetchLog(userID, now, false, message); logErr != nil {
		t.logger.Printf("fetch log write failed for %s: %v", username, logErr)
	}
	return &PersistError{Username: username, Profile: profile, Err: err}
}

// UserOutcome pairs one user with the result of their refresh during a
// fan-out.
type UserOutcome struct {
	Username string
	Outcome  *Outcome
	Err      error
}

// RefreshAll refreshes every tracked user with a bounded worker pool. One
// user's failure never cancels the others; each result lands in the
// returned slice in user order.
func (t *Tracker) RefreshAll(ctx context.Context) ([]UserOutcome, error) {
	users, err := t.store.UsersByTotalSolved()
	if err != nil {
		return nil, err
	}

	outcomes := make([]UserOutcome, len(users))
	var g errgroup.Group
	g.SetLimit(t.cfg.MaxWorkers)

	for i, user := range users {
		i, username := i, user.LeetcodeUsername
		g.Go(func() error {
			outcome, err := t.Refresh(ctx, username)
			outcomes[i] = UserOutcome{Username: username, Outcome: outcome, Err: err}
			return nil
		})
	}

	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()
	return outcomes, nil
}

func (t *Tracker) userLock(username string) *sync.Mutex {
	lock, _ := t.locks.LoadOrStore(username, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
