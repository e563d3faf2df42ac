package streak

// Snapshot is one row of a user's recent daily history, as read back from
// the daily_stats table.
type Snapshot struct {
	Day    DayKey
	Solved int // problems solved that day; negative on upstream counter rollback
}

// Input carries everything Compute needs. All fields are taken by value, so
// Compute is safe to call from any number of goroutines.
type Input struct {
	OldTotal     int
	NewTotal     int
	PriorCurrent int
	PriorLongest int
	// History must be ordered by day descending and bounded to the store's
	// trailing window. Days older than the window are unknowable here: a
	// streak cannot be proven past the window edge and is cut there.
	History []Snapshot
	Today   DayKey
}

// Result is the updated streak state for a single ingestion cycle.
type Result struct {
	Current     int
	Longest     int
	SolvedToday bool
}

// Compute derives the new current/longest streak from one freshly observed
// cumulative total. It is pure: same inputs, same output, no matter how many
// times a day it runs.
//
// A decreasing NewTotal (LeetCode occasionally corrects counts downward) is
// treated as "no progress today", never as negative progress.
func Compute(in Input) Result {
	solvedToday := in.NewTotal > in.OldTotal

	// First observation ever for this user.
	if len(in.History) == 0 {
		current := 0
		if solvedToday {
			current = 1
		}
		return Result{
			Current:     current,
			Longest:     max(current, in.PriorLongest),
			SolvedToday: solvedToday,
		}
	}

	var current int
	if solvedToday {
		// Today counts; walk backward day by day and extend the chain while
		// each expected day has a recorded positive delta. The first gap or
		// zero-progress day ends it.
		current = 1
		expected := in.Today.Previous()
		for _, snap := range in.History {
			if snap.Day == in.Today {
				continue
			}
			if snap.Day == expected && snap.Solved > 0 {
				current++
				expected = expected.Previous()
			} else {
				break
			}
		}
	} else {
		// No new progress this cycle. If an earlier cycle today already saw
		// progress, the day still counts and the streak stands; otherwise
		// the chain is broken.
		if todaySnap, ok := find(in.History, in.Today); ok && todaySnap.Solved > 0 {
			current = in.PriorCurrent
		} else {
			current = 0
		}
	}

	return Result{
		Current:     current,
		Longest:     max(current, in.PriorLongest),
		SolvedToday: solvedToday,
	}
}

func find(history []Snapshot, day DayKey) (Snapshot, bool) {
	for _, s := range history {
		if s.Day == day {
			return s, true
		}
	}
	return Snapshot{}, false
}
