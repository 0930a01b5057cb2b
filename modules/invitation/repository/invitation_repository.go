package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/modules/invitation/entity"

	"github.com/google/uuid"
)

type InvitationRepositoryInterface interface {
	Upsert(ctx context.Context, invitation *entity.MeetingInvitation) error
	GetByToken(ctx context.Context, token string) (*entity.MeetingInvitation, error)
	GetByMeetingAndEmail(ctx context.Context, meetingID uuid.UUID, email string) (*entity.MeetingInvitation, error)
	GetPendingByEmail(ctx context.Context, email string) ([]entity.MeetingInvitation, error)
	CountPendingByEmail(ctx context.Context, email string) (int, error)
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status entity.InvitationStatus) (bool, error)
	DeleteByMeetingAndEmail(ctx context.Context, meetingID uuid.UUID, email string) error
}

type InvitationRepository struct {
	db database.Database
}

func NewInvitationRepository(db database.Database) InvitationRepositoryInterface {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, meeting_id, email, token, share_slug, status, responded_at, created_at, updated_at`

// Upsert creates an invitation, or re-invites by rotating the token and
// resetting the status back to pending.
func (r *InvitationRepository) Upsert(ctx context.Context, invitation *entity.MeetingInvitation) error {
	query := `
		INSERT INTO meeting_invitations (meeting_id, email, token, share_slug, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (meeting_id, email) DO UPDATE
		SET token = EXCLUDED.token,
		    share_slug = EXCLUDED.share_slug,
		    status = 'pending',
		    responded_at = NULL,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	now := time.Now()
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	if invitation.Status == "" {
		invitation.Status = entity.InvitationStatusPending
	}

	row := r.db.QueryRowContext(ctx, query,
		invitation.MeetingID,
		invitation.Email,
		invitation.Token,
		invitation.ShareSlug,
		invitation.Status,
		now,
	)
	return row.Scan(&invitation.ID)
}

// GetByToken looks up an invitation by its public token.
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*entity.MeetingInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM meeting_invitations WHERE token = $1`

	var inv entity.MeetingInvitation
	err := r.db.GetContext(ctx, &inv, query, token)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("InvitationRepository:GetByToken", "error", err)
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) GetByMeetingAndEmail(ctx context.Context, meetingID uuid.UUID, email string) (*entity.MeetingInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM meeting_invitations WHERE meeting_id = $1 AND email = $2`

	var inv entity.MeetingInvitation
	err := r.db.GetContext(ctx, &inv, query, meetingID, email)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("InvitationRepository:GetByMeetingAndEmail", "error", err)
		return nil, err
	}
	return &inv, nil
}

// GetPendingByEmail lists invitations awaiting a response from this email.
func (r *InvitationRepository) GetPendingByEmail(ctx context.Context, email string) ([]entity.MeetingInvitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM meeting_invitations
		WHERE email = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	var invitations []entity.MeetingInvitation
	if err := r.db.SelectContext(ctx, &invitations, query, email); err != nil {
		logger.Error("InvitationRepository:GetPendingByEmail", "error", err)
		return nil, err
	}
	return invitations, nil
}

func (r *InvitationRepository) CountPendingByEmail(ctx context.Context, email string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM meeting_invitations WHERE email = $1 AND status = 'pending'`
	if err := r.db.GetContext(ctx, &count, query, email); err != nil {
		logger.Error("InvitationRepository:CountPendingByEmail", "error", err)
		return 0, err
	}
	return count, nil
}

// UpdateStatusIfPending records a response. The status guard makes a second
// response a no-op, reported as false.
func (r *InvitationRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status entity.InvitationStatus) (bool, error) {
	query := `
		UPDATE meeting_invitations
		SET status = $1, responded_at = $2, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`
	result, err := r.db.ExecResultContext(ctx, query, status, time.Now(), id)
	if err != nil {
		logger.Error("InvitationRepository:UpdateStatusIfPending", "error", err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *InvitationRepository) DeleteByMeetingAndEmail(ctx context.Context, meetingID uuid.UUID, email string) error {
	query := `DELETE FROM meeting_invitations WHERE meeting_id = $1 AND email = $2`
	if err := r.db.ExecContext(ctx, query, meetingID, email); err != nil {
		logger.Error("InvitationRepository:DeleteByMeetingAndEmail", "error", err)
		return err
	}
	return nil
}
