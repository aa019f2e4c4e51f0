// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"time"
)

// AggregateStats is the finished statistics record for one account. It
// is built fresh every run, never persisted, and handed as-is to the
// rendering layer.
type AggregateStats struct {
	Login            string `json:"login"`
	Name             string `json:"name"`
	Bio              string `json:"bio"`
	AvatarURL        string `json:"avatar_url"`
	Age              string `json:"age"`
	Commits          int    `json:"commits"`
	Stars            int    `json:"stars"`
	Repos            int    `json:"repos"`
	ContributedRepos int    `json:"contributed_repos"`
	Followers        int    `json:"followers"`
	Following        int    `json:"following"`
	LinesAdded       int    `json:"lines_added"`
	LinesDeleted     int    `json:"lines_deleted"`
	NetLines         int    `json:"net_lines"`
	CachedLOC        bool   `json:"cached_loc"`
}

// AccountAge renders the time since an account was created as
// "X years, Y months, Z days", with singular units where appropriate and
// a birthday cake on the anniversary itself.
func AccountAge(createdAt, now time.Time) string {
	start := midnightUTC(createdAt)
	end := midnightUTC(now)

	totalMonths := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	anchor := start.AddDate(0, totalMonths, 0)
	if anchor.After(end) {
		totalMonths--
		anchor = start.AddDate(0, totalMonths, 0)
	}
	years := totalMonths / 12
	months := totalMonths % 12
	days := int(end.Sub(anchor).Hours() / 24)

	cake := ""
	if months == 0 && days == 0 {
		cake = " 🎂"
	}
	return fmt.Sprintf("%d year%s, %d month%s, %d day%s%s",
		years, plural(years), months, plural(months), days, plural(days), cake)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
