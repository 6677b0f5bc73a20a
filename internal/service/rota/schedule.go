package rota

import (
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jwalitptl/rota-api/internal/model"
)

// WeekSchedule is the resolved rota of one team for one ISO week.
type WeekSchedule struct {
	WeekID       string                            `json:"week_id"`
	TeamID       string                            `json:"team_id"`
	Status       model.WeekStatusValue             `json:"status"`
	LastModified *time.Time                        `json:"last_modified"`
	Days         []string                          `json:"days"`
	Assignments  []model.RotaAssignment            `json:"assignments"`
	Index        map[string][]model.RotaAssignment `json:"index"`
	UserIDs      []string                          `json:"user_ids"`
}

// Slot returns the assignments of userID on dayIndex, in stored order.
func (s *WeekSchedule) Slot(userID string, dayIndex int) []model.RotaAssignment {
	return s.Index[IndexKey(userID, dayIndex)]
}

// IndexKey is the "<userId>-<dayIndex>" key of WeekSchedule.Index.
func IndexKey(userID string, dayIndex int) string {
	return userID + "-" + strconv.Itoa(dayIndex)
}

// Cell is one location a user works at on a given day.
type Cell struct {
	AssignmentID string `json:"assignment_id"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
}

// Row is a user's line of the rendered rota: one list of cells per weekday.
type Row struct {
	UserID string                    `json:"user_id"`
	Name   string                    `json:"name"`
	Days   [model.DaysPerWeek][]Cell `json:"days"`
}

// Users and Locations are the reference directories supplied by the caller.
type (
	Users     map[string]model.User
	Locations map[string]model.Location
)

// Resolve groups assignments by (user, day) and orders the users that appear
// in them. A nil status means the week has never been published.
func Resolve(week model.WeekID, teamID string, assignments []model.RotaAssignment, status *model.WeekStatus, users Users) *WeekSchedule {
	s := &WeekSchedule{
		WeekID:      week.String(),
		TeamID:      teamID,
		Status:      model.WeekStatusDraft,
		Days:        make([]string, model.DaysPerWeek),
		Assignments: assignments,
		Index:       make(map[string][]model.RotaAssignment),
		UserIDs:     []string{},
	}
	if s.Assignments == nil {
		s.Assignments = []model.RotaAssignment{}
	}
	for i := range s.Days {
		s.Days[i] = week.Day(i).Format(time.DateOnly)
	}
	if status != nil {
		if status.Status.Valid() {
			s.Status = status.Status
		}
		s.LastModified = status.LastModified
	}

	seen := make(map[string]bool)
	for _, a := range assignments {
		key := IndexKey(a.UserID, a.DayIndex)
		s.Index[key] = append(s.Index[key], a)
		if !seen[a.UserID] {
			seen[a.UserID] = true
			s.UserIDs = append(s.UserIDs, a.UserID)
		}
	}
	sortUsers(s.UserIDs, users)
	return s
}

// sortUsers orders ids by last name, then first name, then id. Ids missing
// from the directory go last.
func sortUsers(ids []string, users Users) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(ids, func(i, j int) bool {
		a, aok := users[ids[i]]
		b, bok := users[ids[j]]
		if aok != bok {
			return aok
		}
		if aok {
			if c := col.CompareString(a.LastName, b.LastName); c != 0 {
				return c < 0
			}
			if c := col.CompareString(a.FirstName, b.FirstName); c != 0 {
				return c < 0
			}
		}
		return ids[i] < ids[j]
	})
}

// Render joins the schedule with the user and location directories. Unknown
// users are shown by id, unknown locations by their id.
func Render(s *WeekSchedule, users Users, locations Locations) []Row {
	rows := make([]Row, 0, len(s.UserIDs))
	for _, userID := range s.UserIDs {
		row := Row{UserID: userID, Name: userID}
		if u, ok := users[userID]; ok {
			if name := u.DisplayName(); name != "" {
				row.Name = name
			}
		}
		for day := 0; day < model.DaysPerWeek; day++ {
			slot := s.Slot(userID, day)
			cells := make([]Cell, 0, len(slot))
			for _, a := range slot {
				name := a.LocationID
				if loc, ok := locations[a.LocationID]; ok && loc.Name != "" {
					name = loc.Name
				}
				cells = append(cells, Cell{AssignmentID: a.ID, LocationID: a.LocationID, LocationName: name})
			}
			row.Days[day] = cells
		}
		rows = append(rows, row)
	}
	return rows
}
