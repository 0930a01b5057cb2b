package engine

import (
	"time"

	"meetsync/core/errors"
)

// SlotRequest describes the organizer's constraints for candidate slots.
// RangeStart and RangeEnd are calendar dates (time-of-day is ignored); the
// range is inclusive on both ends.
type SlotRequest struct {
	RangeStart      time.Time
	RangeEnd        time.Time
	Window          DayWindow
	DurationMinutes int
}

// CandidateSlot is one fixed-duration opportunity within one day's window.
// Generated fresh per request, never persisted independently.
type CandidateSlot struct {
	Date     time.Time    `json:"date"`
	Interval TimeInterval `json:"interval"`
}

// Validate rejects malformed requests before any generation happens.
// A window too short for the duration is not a validation error; it simply
// yields zero slots.
func (r SlotRequest) Validate() *errors.AppError {
	if r.DurationMinutes <= 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "duration must be positive", nil)
	}
	if r.RangeEnd.Before(r.RangeStart) {
		return errors.NewAppError(errors.ErrInvalidInput, "date range end before start", nil)
	}
	if r.Window.End <= r.Window.Start {
		return errors.NewAppError(errors.ErrInvalidInput, "daily window end must be after start", nil)
	}
	return nil
}

// GenerateSlots enumerates every candidate slot for the request: for each day
// in the range, back-to-back slots tile the daily window from its start; a
// partial remainder at the end of the window is dropped. Output is ordered by
// date ascending, then start time ascending.
func GenerateSlots(req SlotRequest) ([]CandidateSlot, *errors.AppError) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	first := truncateToDate(req.RangeStart)
	last := truncateToDate(req.RangeEnd)

	var slots []CandidateSlot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		dayStart := req.Window.Start.OnDate(day)
		dayEnd := req.Window.End.OnDate(day)

		for t := dayStart; !t.Add(duration).After(dayEnd); t = t.Add(duration) {
			slots = append(slots, CandidateSlot{
				Date:     day,
				Interval: TimeInterval{Start: t, End: t.Add(duration)},
			})
		}
	}

	return slots, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
