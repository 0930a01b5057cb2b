package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/modules/meeting/entity"
)

// MeetingRepositoryInterface is the persistence contract for the meeting
// aggregate. UpdateMeetingCAS and UpsertParticipantIfPending carry the
// compare-and-set semantics the lifecycle state machine relies on.
type MeetingRepositoryInterface interface {
	CreateMeeting(ctx context.Context, meeting *entity.Meeting) (*entity.Meeting, error)
	GetMeetingByID(ctx context.Context, id uuid.UUID) (*entity.Meeting, error)
	GetMeetingsByOrganizer(ctx context.Context, organizerEmail string) ([]entity.Meeting, error)
	GetMeetingsByParticipant(ctx context.Context, participantEmail string) ([]entity.Meeting, error)

	// UpdateMeetingCAS writes the meeting only if the stored version still
	// equals expectedVersion, bumping the version on success. Returns false
	// when the row was concurrently modified (or no longer exists).
	UpdateMeetingCAS(ctx context.Context, meeting *entity.Meeting, expectedVersion int) (bool, error)

	AddParticipant(ctx context.Context, participant *entity.MeetingParticipant) error
	GetParticipantsByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]entity.MeetingParticipant, error)
	RemoveParticipant(ctx context.Context, meetingID uuid.UUID, email string) error

	// UpsertParticipantIfPending overwrites the participant's availability
	// only while the meeting is still pending. Returns false when the meeting
	// has left Pending (the slot set is frozen).
	UpsertParticipantIfPending(ctx context.Context, participant *entity.MeetingParticipant) (bool, error)

	SaveSlots(ctx context.Context, meetingID uuid.UUID, slots []entity.MeetingSlot) error
	GetSlotsByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]entity.MeetingSlot, error)
	ClearSlotsByMeetingID(ctx context.Context, meetingID uuid.UUID) error
}

// MeetingRepository is the postgres implementation.
type MeetingRepository struct {
	DB database.Database
}

func NewMeetingRepository(db database.Database) *MeetingRepository {
	return &MeetingRepository{DB: db}
}

const meetingColumns = `id, organizer_email, title, range_start, range_end, window_start, window_end,
	       duration_minutes, status, scheduled_start, scheduled_end, version, created_at, updated_at`

func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting *entity.Meeting) (*entity.Meeting, error) {
	query := `
		INSERT INTO meetings (organizer_email, title, range_start, range_end, window_start, window_end,
		                      duration_minutes, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		RETURNING ` + meetingColumns

	var created entity.Meeting
	err := r.DB.GetContext(ctx, &created, query,
		meeting.OrganizerEmail, meeting.Title, meeting.RangeStart, meeting.RangeEnd,
		meeting.WindowStart, meeting.WindowEnd, meeting.DurationMinutes, meeting.Status)
	if err != nil {
		logger.Error("MeetingRepository:CreateMeeting", err)
		return nil, err
	}

	return &created, nil
}

func (r *MeetingRepository) GetMeetingByID(ctx context.Context, id uuid.UUID) (*entity.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	var meeting entity.Meeting
	err := r.DB.GetContext(ctx, &meeting, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("MeetingRepository:GetMeetingByID", err)
		return nil, err
	}

	return &meeting, nil
}

func (r *MeetingRepository) GetMeetingsByOrganizer(ctx context.Context, organizerEmail string) ([]entity.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE organizer_email = $1 ORDER BY created_at DESC`

	var meetings []entity.Meeting
	err := r.DB.SelectContext(ctx, &meetings, query, organizerEmail)
	if err != nil {
		logger.Error("MeetingRepository:GetMeetingsByOrganizer", err)
		return nil, err
	}

	return meetings, nil
}

func (r *MeetingRepository) GetMeetingsByParticipant(ctx context.Context, participantEmail string) ([]entity.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings m
		WHERE EXISTS (
			SELECT 1 FROM meeting_participants p
			WHERE p.meeting_id = m.id AND p.email = $1
		)
		ORDER BY m.created_at DESC
	`

	var meetings []entity.Meeting
	err := r.DB.SelectContext(ctx, &meetings, query, participantEmail)
	if err != nil {
		logger.Error("MeetingRepository:GetMeetingsByParticipant", err)
		return nil, err
	}

	return meetings, nil
}

func (r *MeetingRepository) UpdateMeetingCAS(ctx context.Context, meeting *entity.Meeting, expectedVersion int) (bool, error) {
	query := `
		UPDATE meetings
		SET title = $2, status = $3, scheduled_start = $4, scheduled_end = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6
	`

	result, err := r.DB.ExecResultContext(ctx, query,
		meeting.ID, meeting.Title, meeting.Status,
		meeting.ScheduledStart, meeting.ScheduledEnd, expectedVersion)
	if err != nil {
		logger.Error("MeetingRepository:UpdateMeetingCAS", err)
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *MeetingRepository) AddParticipant(ctx context.Context, participant *entity.MeetingParticipant) error {
	query := `
		INSERT INTO meeting_participants (meeting_id, email, busy_intervals, has_responded)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meeting_id, email) DO NOTHING
	`

	err := r.DB.ExecContext(ctx, query,
		participant.MeetingID, participant.Email, participant.BusyIntervals, participant.HasResponded)
	if err != nil {
		logger.Error("MeetingRepository:AddParticipant", err)
		return err
	}

	return nil
}

func (r *MeetingRepository) GetParticipantsByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]entity.MeetingParticipant, error) {
	query := `
		SELECT meeting_id, email, busy_intervals, has_responded, created_at, updated_at
		FROM meeting_participants
		WHERE meeting_id = $1
		ORDER BY created_at
	`

	var participants []entity.MeetingParticipant
	err := r.DB.SelectContext(ctx, &participants, query, meetingID)
	if err != nil {
		logger.Error("MeetingRepository:GetParticipantsByMeetingID", err)
		return nil, err
	}

	return participants, nil
}

func (r *MeetingRepository) RemoveParticipant(ctx context.Context, meetingID uuid.UUID, email string) error {
	query := `DELETE FROM meeting_participants WHERE meeting_id = $1 AND email = $2`
	err := r.DB.ExecContext(ctx, query, meetingID, email)
	if err != nil {
		logger.Error("MeetingRepository:RemoveParticipant", err)
		return err
	}
	return nil
}

func (r *MeetingRepository) UpsertParticipantIfPending(ctx context.Context, participant *entity.MeetingParticipant) (bool, error) {
	// The status guard lives in the same statement so a submission racing a
	// schedule transition can never mutate a frozen meeting.
	query := `
		INSERT INTO meeting_participants (meeting_id, email, busy_intervals, has_responded)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM meetings WHERE id = $1 AND status = 'pending')
		ON CONFLICT (meeting_id, email) DO UPDATE
		SET busy_intervals = EXCLUDED.busy_intervals,
		    has_responded = EXCLUDED.has_responded,
		    updated_at = NOW()
		WHERE EXISTS (SELECT 1 FROM meetings WHERE id = $1 AND status = 'pending')
	`

	result, err := r.DB.ExecResultContext(ctx, query,
		participant.MeetingID, participant.Email, participant.BusyIntervals, participant.HasResponded)
	if err != nil {
		logger.Error("MeetingRepository:UpsertParticipantIfPending", err)
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *MeetingRepository) SaveSlots(ctx context.Context, meetingID uuid.UUID, slots []entity.MeetingSlot) error {
	query := `
		INSERT INTO meeting_slots (meeting_id, slot_date, start_time, end_time,
		                           available_count, total_participants, organizer_conflict)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, slot := range slots {
		err := r.DB.ExecContext(ctx, query,
			meetingID, slot.SlotDate, slot.StartTime, slot.EndTime,
			slot.AvailableCount, slot.TotalParticipants, slot.OrganizerConflict)
		if err != nil {
			logger.Error("MeetingRepository:SaveSlots", err)
			return err
		}
	}

	return nil
}

func (r *MeetingRepository) GetSlotsByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]entity.MeetingSlot, error) {
	query := `
		SELECT id, meeting_id, slot_date, start_time, end_time,
		       available_count, total_participants, organizer_conflict, created_at
		FROM meeting_slots
		WHERE meeting_id = $1
		ORDER BY available_count DESC, slot_date ASC, start_time ASC
	`

	var slots []entity.MeetingSlot
	err := r.DB.SelectContext(ctx, &slots, query, meetingID)
	if err != nil {
		logger.Error("MeetingRepository:GetSlotsByMeetingID", err)
		return nil, err
	}

	return slots, nil
}

func (r *MeetingRepository) ClearSlotsByMeetingID(ctx context.Context, meetingID uuid.UUID) error {
	query := `DELETE FROM meeting_slots WHERE meeting_id = $1`
	err := r.DB.ExecContext(ctx, query, meetingID)
	if err != nil {
		logger.Error("MeetingRepository:ClearSlotsByMeetingID", err)
		return err
	}
	return nil
}
