package model

import (
	"time"
)

// WeekStatusValue is the publication state of a team's week.
type WeekStatusValue string

const (
	WeekStatusDraft     WeekStatusValue = "draft"
	WeekStatusPublished WeekStatusValue = "published"
)

// Valid reports whether s is a known status.
func (s WeekStatusValue) Valid() bool {
	return s == WeekStatusDraft || s == WeekStatusPublished
}

// RotaAssignment says a user works at a location on one day of an ISO week
// for a team. Several records may share (team, week, user, day).
type RotaAssignment struct {
	ID         string `json:"id"`
	WeekID     string `json:"week_id"`
	TeamID     string `json:"team_id"`
	UserID     string `json:"user_id"`
	DayIndex   int    `json:"day_index"`
	LocationID string `json:"location_id"`
	Audit
}

// WeekStatus is keyed by (WeekID, TeamID).
type WeekStatus struct {
	WeekID       string          `json:"week_id"`
	TeamID       string          `json:"team_id"`
	Status       WeekStatusValue `json:"status"`
	LastModified *time.Time      `json:"last_modified"`
	Audit
}

// WeekStatusID builds the document id of the status record.
func WeekStatusID(weekID, teamID string) string {
	return weekID + "_" + teamID
}

type CreateRotaAssignmentRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	DayIndex   *int   `json:"day_index" binding:"required,min=0,max=6"`
	LocationID string `json:"location_id" binding:"required"`
}

type SetWeekStatusRequest struct {
	Status WeekStatusValue `json:"status" binding:"required,oneof=draft published"`
}
