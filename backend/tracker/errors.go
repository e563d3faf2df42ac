package tracker

import (
	"errors"
	"fmt"

	"github.com/rtk5/Leetcode-daily-tracker/backend/leetcode"
)

// ErrMissingUsername is returned before any I/O when the username is empty.
var ErrMissingUsername = errors.New("username is required")

// FetchError wraps failures of the outbound LeetCode fetch: unreachable
// API, malformed response, or no matched profile. Streak state is never
// touched when this is returned.
type FetchError struct {
	Username string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Username, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFound reports whether the fetch failed because the username matched
// no LeetCode profile.
func (e *FetchError) NotFound() bool {
	return errors.Is(e.Err, leetcode.ErrUserNotFound)
}

// PersistError wraps store failures that happen after a successful fetch.
// The fetched profile is carried along so the caller can retry the persist
// step without re-fetching.
type PersistError struct {
	Username string
	Profile  *leetcode.Profile
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Username, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
