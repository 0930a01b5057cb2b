package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/modules/meeting/dto"
	"meetsync/modules/meeting/engine"
	"meetsync/modules/meeting/entity"
	"meetsync/modules/meeting/repository"
)

const (
	defaultWindowStart = "09:00"
	defaultWindowEnd   = "17:00"
)

// CalendarProvider supplies busy intervals for a calendar owner. The engine
// only ever sees normalized half-open intervals; free/busy only, no event
// content crosses this boundary.
type CalendarProvider interface {
	GetBusyIntervals(ctx context.Context, ownerEmail string, rangeStart, rangeEnd time.Time) ([]engine.TimeInterval, error)
}

// Inviter creates invitation records for newly added participants.
type Inviter interface {
	CreateInvitations(ctx context.Context, meetingID uuid.UUID, title string, organizerEmail string, emails []string) error
}

// Uninviter revokes a participant's invitation so their share token stops
// resolving once they are removed from the meeting.
type Uninviter interface {
	RevokeInvitation(ctx context.Context, meetingID uuid.UUID, email string) error
}

// Notifier fans out lifecycle notifications to participants.
type Notifier interface {
	NotifyParticipants(ctx context.Context, emails []string, title string, message string, notifType string, data map[string]any)
}

// MeetingService owns the meeting lifecycle state machine and drives the slot
// engine.
type MeetingService struct {
	repo      repository.MeetingRepositoryInterface
	calendar  CalendarProvider
	inviter   Inviter
	uninviter Uninviter
	notifier  Notifier
}

// MeetingServiceInterface defines the service contract
type MeetingServiceInterface interface {
	CreateMeeting(ctx context.Context, organizerEmail string, req *dto.CreateMeetingRequest) (*dto.MeetingResponse, *errors.AppError)
	GetMeetingByID(ctx context.Context, id uuid.UUID) (*dto.MeetingResponse, *errors.AppError)
	GetMeetings(ctx context.Context, email string, role string) ([]dto.MeetingResponse, *errors.AppError)
	FindSlots(ctx context.Context, meetingID uuid.UUID) (*dto.FindSlotsResponse, *errors.AppError)
	SubmitAvailability(ctx context.Context, meetingID uuid.UUID, participantEmail string, req *dto.SubmitAvailabilityRequest) (*dto.MeetingResponse, *errors.AppError)
	Schedule(ctx context.Context, meetingID uuid.UUID, organizerEmail string, req *dto.ScheduleRequest) (*dto.MeetingResponse, *errors.AppError)
	Cancel(ctx context.Context, meetingID uuid.UUID, organizerEmail string) (*dto.MeetingResponse, *errors.AppError)
	RemoveParticipant(ctx context.Context, meetingID uuid.UUID, organizerEmail string, participantEmail string) *errors.AppError
}

func NewMeetingService(repo repository.MeetingRepositoryInterface, calendar CalendarProvider, inviter Inviter, uninviter Uninviter, notifier Notifier) MeetingServiceInterface {
	return &MeetingService{
		repo:      repo,
		calendar:  calendar,
		inviter:   inviter,
		uninviter: uninviter,
		notifier:  notifier,
	}
}

// CreateMeeting creates a pending meeting and invites the participants.
func (s *MeetingService) CreateMeeting(ctx context.Context, organizerEmail string, req *dto.CreateMeetingRequest) (*dto.MeetingResponse, *errors.AppError) {
	rangeStart, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid start date, expected YYYY-MM-DD", err)
	}
	rangeEnd, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid end date, expected YYYY-MM-DD", err)
	}

	windowStart := req.WindowStart
	if windowStart == "" {
		windowStart = defaultWindowStart
	}
	windowEnd := req.WindowEnd
	if windowEnd == "" {
		windowEnd = defaultWindowEnd
	}

	meeting := &entity.Meeting{
		OrganizerEmail:  strings.ToLower(organizerEmail),
		Title:           req.Title,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
		DurationMinutes: req.DurationMinutes,
		Status:          entity.MeetingStatusPending,
	}

	// Reject malformed constraints before anything is persisted.
	slotReq, err := meeting.SlotRequest()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid daily window, expected HH:MM", err)
	}
	if appErr := slotReq.Validate(); appErr != nil {
		return nil, appErr
	}

	created, err := s.repo.CreateMeeting(ctx, meeting)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create meeting", err)
	}

	invited := make([]string, 0, len(req.ParticipantEmails))
	for _, email := range req.ParticipantEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || email == created.OrganizerEmail {
			continue
		}

		participant := &entity.MeetingParticipant{
			MeetingID: created.ID,
			Email:     email,
		}
		if err := s.repo.AddParticipant(ctx, participant); err != nil {
			logger.Error("MeetingService:CreateMeeting:AddParticipant", "error", err, "email", email)
			continue
		}
		invited = append(invited, email)
	}

	if s.inviter != nil && len(invited) > 0 {
		if err := s.inviter.CreateInvitations(ctx, created.ID, created.Title, created.OrganizerEmail, invited); err != nil {
			logger.Error("MeetingService:CreateMeeting:CreateInvitations", "error", err, "meeting_id", created.ID)
		}
	}

	participants, _ := s.repo.GetParticipantsByMeetingID(ctx, created.ID)
	return dto.ToMeetingResponse(created, participants), nil
}

// GetMeetingByID retrieves a meeting by ID
func (s *MeetingService) GetMeetingByID(ctx context.Context, id uuid.UUID) (*dto.MeetingResponse, *errors.AppError) {
	meeting, err := s.repo.GetMeetingByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}

	participants, _ := s.repo.GetParticipantsByMeetingID(ctx, id)
	return dto.ToMeetingResponse(meeting, participants), nil
}

// GetMeetings lists meetings where the user acts as organizer or participant.
func (s *MeetingService) GetMeetings(ctx context.Context, email string, role string) ([]dto.MeetingResponse, *errors.AppError) {
	email = strings.ToLower(email)

	var meetings []entity.Meeting
	var err error
	if role == "participant" {
		meetings, err = s.repo.GetMeetingsByParticipant(ctx, email)
	} else {
		meetings, err = s.repo.GetMeetingsByOrganizer(ctx, email)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list meetings", err)
	}

	result := make([]dto.MeetingResponse, 0, len(meetings))
	for i := range meetings {
		participants, _ := s.repo.GetParticipantsByMeetingID(ctx, meetings[i].ID)
		result = append(result, *dto.ToMeetingResponse(&meetings[i], participants))
	}
	return result, nil
}

// FindSlots runs the slot pipeline: generate candidates from the organizer's
// constraints, detect conflicts per participant, aggregate and rank. Once the
// meeting has left Pending the stored slot set is returned unchanged
// (re-display is idempotent, recompute is frozen).
func (s *MeetingService) FindSlots(ctx context.Context, meetingID uuid.UUID) (*dto.FindSlotsResponse, *errors.AppError) {
	meeting, err := s.repo.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}

	if meeting.Status != entity.MeetingStatusPending {
		stored, err := s.repo.GetSlotsByMeetingID(ctx, meetingID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load slots", err)
		}
		ranked := make([]engine.AnnotatedSlot, 0, len(stored))
		for i := range stored {
			ranked = append(ranked, stored[i].Annotated())
		}
		return dto.ToFindSlotsResponse(meeting, ranked), nil
	}

	ranked, appErr := s.computeSlots(ctx, meeting)
	if appErr != nil {
		return nil, appErr
	}

	// Replace the stored annotation set wholesale; it is derived data.
	if err := s.repo.ClearSlotsByMeetingID(ctx, meetingID); err != nil {
		logger.Error("MeetingService:FindSlots:ClearSlots", "error", err, "meeting_id", meetingID)
	}
	rows := make([]entity.MeetingSlot, 0, len(ranked))
	for _, a := range ranked {
		rows = append(rows, entity.FromAnnotated(meetingID, a))
	}
	if err := s.repo.SaveSlots(ctx, meetingID, rows); err != nil {
		logger.Error("MeetingService:FindSlots:SaveSlots", "error", err, "meeting_id", meetingID)
	}

	return dto.ToFindSlotsResponse(meeting, ranked), nil
}

// computeSlots runs the pure engine over current inputs.
func (s *MeetingService) computeSlots(ctx context.Context, meeting *entity.Meeting) ([]engine.AnnotatedSlot, *errors.AppError) {
	slotReq, err := meeting.SlotRequest()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Meeting has an invalid daily window", err)
	}

	slots, appErr := engine.GenerateSlots(slotReq)
	if appErr != nil {
		return nil, appErr
	}

	rows, err := s.repo.GetParticipantsByMeetingID(ctx, meeting.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load participants", err)
	}
	participants := make([]engine.ParticipantAvailability, 0, len(rows))
	for i := range rows {
		participants = append(participants, rows[i].Availability())
	}

	organizerBusy := s.organizerBusy(ctx, meeting)

	return engine.Rank(engine.Aggregate(slots, participants, organizerBusy)), nil
}

// organizerBusy pulls the organizer's own calendar. A provider failure
// degrades to "no known conflicts" rather than blocking slot review.
func (s *MeetingService) organizerBusy(ctx context.Context, meeting *entity.Meeting) []engine.TimeInterval {
	if s.calendar == nil {
		return nil
	}

	busy, err := s.calendar.GetBusyIntervals(ctx, meeting.OrganizerEmail, meeting.RangeStart, meeting.RangeEnd.AddDate(0, 0, 1))
	if err != nil {
		logger.Warn("MeetingService:OrganizerBusy", "error", err, "meeting_id", meeting.ID)
		return nil
	}
	return busy
}

// SubmitAvailability upserts a participant's busy intervals while the meeting
// is still pending. Re-submission overwrites prior data. Once the meeting has
// left Pending the slot set is frozen and the call fails with ErrStaleState.
func (s *MeetingService) SubmitAvailability(ctx context.Context, meetingID uuid.UUID, participantEmail string, req *dto.SubmitAvailabilityRequest) (*dto.MeetingResponse, *errors.AppError) {
	intervals, appErr := parseIntervals(req.BusyIntervals)
	if appErr != nil {
		return nil, appErr
	}

	meeting, err := s.repo.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	if meeting.Status != entity.MeetingStatusPending {
		return nil, errors.NewAppError(errors.ErrStaleState, "Meeting is no longer accepting availability", nil)
	}

	participantEmail = strings.ToLower(participantEmail)
	participants, err := s.repo.GetParticipantsByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load participants", err)
	}
	invited := false
	for i := range participants {
		if participants[i].Email == participantEmail {
			invited = true
			break
		}
	}
	if !invited {
		return nil, errors.NewAppError(errors.ErrNotFound, "Participant is not invited to this meeting", nil)
	}

	participant := &entity.MeetingParticipant{
		MeetingID:     meetingID,
		Email:         participantEmail,
		BusyIntervals: entity.IntervalList(intervals),
		HasResponded:  true,
	}

	ok, err := s.repo.UpsertParticipantIfPending(ctx, participant)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to save availability", err)
	}
	if !ok {
		// Lost a race with schedule or cancel; the frozen state is untouched.
		return nil, errors.NewAppError(errors.ErrStaleState, "Meeting is no longer accepting availability", nil)
	}

	return s.GetMeetingByID(ctx, meetingID)
}

// Schedule commits a chosen slot. Organizer-only; the slot is re-validated
// against the freshly generated candidate set, and the status transition is a
// compare-and-set so exactly one schedule wins per meeting.
func (s *MeetingService) Schedule(ctx context.Context, meetingID uuid.UUID, organizerEmail string, req *dto.ScheduleRequest) (*dto.MeetingResponse, *errors.AppError) {
	meeting, err := s.repo.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	if !strings.EqualFold(meeting.OrganizerEmail, organizerEmail) {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the organizer may schedule", nil)
	}

	switch meeting.Status {
	case entity.MeetingStatusCancelled:
		return nil, errors.NewAppError(errors.ErrStaleState, "Meeting is cancelled", nil)
	case entity.MeetingStatusScheduled:
		return nil, errors.NewAppError(errors.ErrScheduleConflict, "Meeting is already scheduled", nil)
	}

	chosenStart, chosenEnd, appErr := parseChosenSlot(meeting, req)
	if appErr != nil {
		return nil, appErr
	}

	// Re-validate against the current candidate set rather than trusting a
	// possibly stale client view.
	slotReq, err := meeting.SlotRequest()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Meeting has an invalid daily window", err)
	}
	candidates, appErr := engine.GenerateSlots(slotReq)
	if appErr != nil {
		return nil, appErr
	}
	valid := false
	for _, c := range candidates {
		if c.Interval.Start.Equal(chosenStart) && c.Interval.End.Equal(chosenEnd) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Chosen slot is not a valid candidate for this meeting", nil)
	}

	meeting.Status = entity.MeetingStatusScheduled
	meeting.ScheduledStart = &chosenStart
	meeting.ScheduledEnd = &chosenEnd

	ok, err := s.repo.UpdateMeetingCAS(ctx, meeting, meeting.Version)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to schedule meeting", err)
	}
	if !ok {
		// Someone else transitioned the meeting first. Reload to report which
		// race was lost; the caller should re-decide, not blindly retry.
		current, err := s.repo.GetMeetingByID(ctx, meetingID)
		if err == nil && current != nil && current.Status == entity.MeetingStatusCancelled {
			return nil, errors.NewAppError(errors.ErrStaleState, "Meeting was cancelled", nil)
		}
		return nil, errors.NewAppError(errors.ErrScheduleConflict, "Meeting was scheduled concurrently", nil)
	}

	s.notifyLifecycle(ctx, meeting, "Meeting scheduled",
		"The meeting '"+meeting.Title+"' has been scheduled", "meeting_scheduled")

	return s.GetMeetingByID(ctx, meetingID)
}

// Cancel moves the meeting to Cancelled from Pending or Scheduled.
// Irreversible; cancelling an already cancelled meeting is a stale operation.
func (s *MeetingService) Cancel(ctx context.Context, meetingID uuid.UUID, organizerEmail string) (*dto.MeetingResponse, *errors.AppError) {
	// Cancel may legitimately lose a CAS to a concurrent schedule and still
	// apply, since Scheduled -> Cancelled is allowed.
	for attempt := 0; attempt < 3; attempt++ {
		meeting, err := s.repo.GetMeetingByID(ctx, meetingID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
		}
		if meeting == nil {
			return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
		}
		if !strings.EqualFold(meeting.OrganizerEmail, organizerEmail) {
			return nil, errors.NewAppError(errors.ErrForbidden, "Only the organizer may cancel", nil)
		}
		if meeting.Status == entity.MeetingStatusCancelled {
			return nil, errors.NewAppError(errors.ErrStaleState, "Meeting is already cancelled", nil)
		}

		meeting.Status = entity.MeetingStatusCancelled
		ok, err := s.repo.UpdateMeetingCAS(ctx, meeting, meeting.Version)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to cancel meeting", err)
		}
		if ok {
			s.notifyLifecycle(ctx, meeting, "Meeting cancelled",
				"The meeting '"+meeting.Title+"' has been cancelled by the organizer", "meeting_cancelled")
			return s.GetMeetingByID(ctx, meetingID)
		}
	}

	return nil, errors.NewAppError(errors.ErrScheduleConflict, "Meeting changed concurrently, reload and retry", nil)
}

// RemoveParticipant drops an invitee and revokes their invitation token.
// Organizer-only, Pending-only.
func (s *MeetingService) RemoveParticipant(ctx context.Context, meetingID uuid.UUID, organizerEmail string, participantEmail string) *errors.AppError {
	meeting, err := s.repo.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil {
		return errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	if !strings.EqualFold(meeting.OrganizerEmail, organizerEmail) {
		return errors.NewAppError(errors.ErrForbidden, "Only the organizer may remove participants", nil)
	}
	if meeting.Status != entity.MeetingStatusPending {
		return errors.NewAppError(errors.ErrStaleState, "Participants are frozen once the meeting leaves pending", nil)
	}

	email := strings.ToLower(participantEmail)
	if s.uninviter != nil {
		if err := s.uninviter.RevokeInvitation(ctx, meetingID, email); err != nil {
			return errors.NewAppError(errors.ErrDeleteFailed, "Failed to revoke invitation", err)
		}
	}
	if err := s.repo.RemoveParticipant(ctx, meetingID, email); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to remove participant", err)
	}
	return nil
}

func (s *MeetingService) notifyLifecycle(ctx context.Context, meeting *entity.Meeting, title, message, notifType string) {
	if s.notifier == nil {
		return
	}

	participants, err := s.repo.GetParticipantsByMeetingID(ctx, meeting.ID)
	if err != nil {
		logger.Error("MeetingService:NotifyLifecycle", "error", err, "meeting_id", meeting.ID)
		return
	}
	emails := make([]string, 0, len(participants))
	for i := range participants {
		emails = append(emails, participants[i].Email)
	}

	s.notifier.NotifyParticipants(ctx, emails, title, message, notifType, map[string]any{
		"meeting_id": meeting.ID.String(),
	})
}

func parseIntervals(in []dto.TimeIntervalDTO) ([]engine.TimeInterval, *errors.AppError) {
	intervals := make([]engine.TimeInterval, 0, len(in))
	for _, raw := range in {
		start, err := time.Parse(time.RFC3339, raw.Start)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid interval start, expected RFC3339", err)
		}
		end, err := time.Parse(time.RFC3339, raw.End)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid interval end, expected RFC3339", err)
		}
		interval, err := engine.NewTimeInterval(start, end)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Interval start must be before end", err)
		}
		intervals = append(intervals, interval)
	}
	return intervals, nil
}

func parseChosenSlot(meeting *entity.Meeting, req *dto.ScheduleRequest) (time.Time, time.Time, *errors.AppError) {
	day, err := time.ParseInLocation("2006-01-02", req.Date, meeting.RangeStart.Location())
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid slot date, expected YYYY-MM-DD", err)
	}
	startTod, err := engine.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid slot start time, expected HH:MM", err)
	}
	endTod, err := engine.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid slot end time, expected HH:MM", err)
	}
	return startTod.OnDate(day), endTod.OnDate(day), nil
}
