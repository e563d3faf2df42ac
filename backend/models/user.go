package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	LeetcodeUsername string `gorm:"unique;not null"`
	DisplayName      string
	AvatarURL        string
	Notes            string
	TotalSolved      int `gorm:"default:0"`
	EasySolved       int `gorm:"default:0"`
	MediumSolved     int `gorm:"default:0"`
	HardSolved       int `gorm:"default:0"`
	CurrentStreak    int `gorm:"default:0"`
	LongestStreak    int `gorm:"default:0"`
	LastFetchedAt    *time.Time
}
