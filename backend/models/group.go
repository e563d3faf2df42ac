package models

// GroupStats is the aggregate view rendered on the dashboard. Computed on
// request, never persisted.
type GroupStats struct {
	TotalMembers    int `json:"total_members"`
	GroupStreak     int `json:"group_streak"` // minimum current streak across members
	TotalProblems   int `json:"total_problems"`
	AverageProblems int `json:"average_problems"`
	ActiveToday     int `json:"active_today"`
}
