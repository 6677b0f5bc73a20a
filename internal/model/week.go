package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DaysPerWeek bounds RotaAssignment.DayIndex to [0, DaysPerWeek).
const DaysPerWeek = 7

// WeekID is an ISO week key such as "2024-W3". Weeks start on Monday and the
// week number is not zero padded.
type WeekID struct {
	Year int
	Week int
}

func (w WeekID) String() string {
	return fmt.Sprintf("%04d-W%d", w.Year, w.Week)
}

// WeekIDFor returns the ISO week containing t.
func WeekIDFor(t time.Time) WeekID {
	y, wk := t.ISOWeek()
	return WeekID{Year: y, Week: wk}
}

// ParseWeekID parses "<year>-W<week>". A zero padded week ("2024-W03") is
// accepted and normalized.
func ParseWeekID(s string) (WeekID, error) {
	year, week, ok := strings.Cut(s, "-W")
	if !ok || len(year) != 4 || week == "" || len(week) > 2 || !digits(year) || !digits(week) {
		return WeekID{}, fmt.Errorf("invalid week id %q: want YYYY-W<n>", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return WeekID{}, fmt.Errorf("invalid week id %q: %w", s, err)
	}
	wk, err := strconv.Atoi(week)
	if err != nil {
		return WeekID{}, fmt.Errorf("invalid week id %q: %w", s, err)
	}
	id := WeekID{Year: y, Week: wk}
	if wk < 1 || wk > id.weeksInYear() {
		return WeekID{}, fmt.Errorf("invalid week id %q: year %d has %d ISO weeks", s, y, id.weeksInYear())
	}
	return id, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsValidWeekID reports whether s parses as a week id.
func IsValidWeekID(s string) bool {
	_, err := ParseWeekID(s)
	return err == nil
}

// Monday returns midnight UTC of the first day of the week.
func (w WeekID) Monday() time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (w.Week-1)*DaysPerWeek)
}

// Day returns the date of dayIndex (0 = Monday).
func (w WeekID) Day(dayIndex int) time.Time {
	return w.Monday().AddDate(0, 0, dayIndex)
}

// Next returns the following ISO week.
func (w WeekID) Next() WeekID {
	return WeekIDFor(w.Monday().AddDate(0, 0, DaysPerWeek))
}

func (w WeekID) Previous() WeekID {
	return WeekIDFor(w.Monday().AddDate(0, 0, -DaysPerWeek))
}

// Before orders week ids chronologically.
func (w WeekID) Before(other WeekID) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

func (w WeekID) weeksInYear() int {
	// December 28th is always in the last ISO week of its year.
	_, wk := time.Date(w.Year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return wk
}
