package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/core/utils"
	"meetsync/modules/invitation/dto"
	"meetsync/modules/invitation/entity"
	"meetsync/modules/invitation/repository"
	meetingEntity "meetsync/modules/meeting/entity"
	meetingRepo "meetsync/modules/meeting/repository"
)

// Notifier fans out invitation notifications.
type Notifier interface {
	NotifyParticipants(ctx context.Context, emails []string, title string, message string, notifType string, data map[string]any)
}

type InvitationServiceInterface interface {
	CreateInvitations(ctx context.Context, meetingID uuid.UUID, title string, organizerEmail string, emails []string) error
	RevokeInvitation(ctx context.Context, meetingID uuid.UUID, email string) error
	InviteParticipants(ctx context.Context, meetingID uuid.UUID, organizerEmail string, emails []string) ([]dto.InvitationResponse, *errors.AppError)
	GetJoinView(ctx context.Context, token string) (*dto.JoinViewResponse, *errors.AppError)
	Respond(ctx context.Context, token string, status string) (*dto.InvitationResponse, *errors.AppError)
	GetPendingInvitations(ctx context.Context, email string) (*dto.PendingInvitationsResponse, *errors.AppError)
	CountPending(ctx context.Context, email string) (int, *errors.AppError)
}

type InvitationService struct {
	repo     repository.InvitationRepositoryInterface
	meetings meetingRepo.MeetingRepositoryInterface
	notifier Notifier
}

func NewInvitationService(repo repository.InvitationRepositoryInterface, meetings meetingRepo.MeetingRepositoryInterface, notifier Notifier) *InvitationService {
	return &InvitationService{
		repo:     repo,
		meetings: meetings,
		notifier: notifier,
	}
}

// CreateInvitations issues one tokenized invitation per email. A failure on
// one invitee does not fail the batch. Satisfies the meeting module's Inviter
// collaborator.
func (s *InvitationService) CreateInvitations(ctx context.Context, meetingID uuid.UUID, title string, organizerEmail string, emails []string) error {
	shareSlug := slug.Make(title)

	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || email == organizerEmail {
			continue
		}

		invitation := &entity.MeetingInvitation{
			MeetingID: meetingID,
			Email:     email,
			Token:     utils.GenerateInvitationToken(),
			ShareSlug: shareSlug,
			Status:    entity.InvitationStatusPending,
		}
		if err := s.repo.Upsert(ctx, invitation); err != nil {
			logger.Error("InvitationService:CreateInvitations:Upsert", "error", err, "email", email)
			continue
		}

		if s.notifier != nil {
			s.notifier.NotifyParticipants(ctx, []string{email},
				"New meeting invitation",
				fmt.Sprintf("You have been invited to: %s", title),
				"invitation",
				map[string]any{
					"invitation_id": invitation.ID.String(),
					"meeting_id":    meetingID.String(),
					"share_link":    invitation.ShareLink(),
				})
		}
	}

	return nil
}

// RevokeInvitation deletes the invitation row so the share token stops
// resolving. Satisfies the meeting module's Uninviter collaborator.
func (s *InvitationService) RevokeInvitation(ctx context.Context, meetingID uuid.UUID, email string) error {
	return s.repo.DeleteByMeetingAndEmail(ctx, meetingID, strings.ToLower(strings.TrimSpace(email)))
}

// InviteParticipants adds invitees to an existing pending meeting. Re-inviting
// an existing participant rotates their token and resets their invitation to
// pending. Organizer-only.
func (s *InvitationService) InviteParticipants(ctx context.Context, meetingID uuid.UUID, organizerEmail string, emails []string) ([]dto.InvitationResponse, *errors.AppError) {
	meeting, err := s.meetings.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	if !strings.EqualFold(meeting.OrganizerEmail, organizerEmail) {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the organizer may invite participants", nil)
	}
	if meeting.Status != meetingEntity.MeetingStatusPending {
		return nil, errors.NewAppError(errors.ErrStaleState, "Participants are frozen once the meeting leaves pending", nil)
	}

	invited := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || email == meeting.OrganizerEmail {
			continue
		}
		if err := s.meetings.AddParticipant(ctx, &meetingEntity.MeetingParticipant{
			MeetingID: meetingID,
			Email:     email,
		}); err != nil {
			logger.Error("InvitationService:InviteParticipants:AddParticipant", "error", err, "email", email)
			continue
		}
		invited = append(invited, email)
	}

	if err := s.CreateInvitations(ctx, meetingID, meeting.Title, meeting.OrganizerEmail, invited); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create invitations", err)
	}

	result := make([]dto.InvitationResponse, 0, len(invited))
	for _, email := range invited {
		inv, err := s.repo.GetByMeetingAndEmail(ctx, meetingID, email)
		if err != nil || inv == nil {
			continue
		}
		result = append(result, toInvitationResponse(inv))
	}
	return result, nil
}

// GetJoinView resolves a share token to the invitation plus a public
// projection of its meeting.
func (s *InvitationService) GetJoinView(ctx context.Context, token string) (*dto.JoinViewResponse, *errors.AppError) {
	invitation, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up invitation", err)
	}
	if invitation == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Invitation not found", nil)
	}

	meeting, err := s.meetings.GetMeetingByID(ctx, invitation.MeetingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}

	return &dto.JoinViewResponse{
		Invitation: toInvitationResponse(invitation),
		Meeting: dto.JoinMeetingView{
			Title:           meeting.Title,
			OrganizerEmail:  meeting.OrganizerEmail,
			StartDate:       meeting.RangeStart.Format("2006-01-02"),
			EndDate:         meeting.RangeEnd.Format("2006-01-02"),
			WindowStart:     meeting.WindowStart,
			WindowEnd:       meeting.WindowEnd,
			DurationMinutes: meeting.DurationMinutes,
			Status:          string(meeting.Status),
			ScheduledStart:  meeting.ScheduledStart,
			ScheduledEnd:    meeting.ScheduledEnd,
		},
	}, nil
}

// Respond records an accept or decline against a share token. Invitation
// status is independent of availability: declining does not touch any busy
// intervals the participant may already have submitted.
func (s *InvitationService) Respond(ctx context.Context, token string, status string) (*dto.InvitationResponse, *errors.AppError) {
	var newStatus entity.InvitationStatus
	switch status {
	case string(entity.InvitationStatusAccepted):
		newStatus = entity.InvitationStatusAccepted
	case string(entity.InvitationStatusDeclined):
		newStatus = entity.InvitationStatusDeclined
	default:
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Status must be accepted or declined", nil)
	}

	invitation, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up invitation", err)
	}
	if invitation == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Invitation not found", nil)
	}

	meeting, err := s.meetings.GetMeetingByID(ctx, invitation.MeetingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get meeting", err)
	}
	if meeting == nil || meeting.Status == meetingEntity.MeetingStatusCancelled {
		return nil, errors.NewAppError(errors.ErrStaleState, "Meeting is no longer active", nil)
	}

	ok, err := s.repo.UpdateStatusIfPending(ctx, invitation.ID, newStatus)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to record response", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrStaleState, "Invitation has already been responded to", nil)
	}

	if s.notifier != nil {
		s.notifier.NotifyParticipants(ctx, []string{meeting.OrganizerEmail},
			"Invitation response",
			fmt.Sprintf("%s has %s the invitation to: %s", invitation.Email, status, meeting.Title),
			"invitation_response",
			map[string]any{
				"meeting_id": meeting.ID.String(),
				"email":      invitation.Email,
				"status":     status,
			})
	}

	updated, err := s.repo.GetByToken(ctx, token)
	if err != nil || updated == nil {
		invitation.Status = newStatus
		resp := toInvitationResponse(invitation)
		return &resp, nil
	}
	resp := toInvitationResponse(updated)
	return &resp, nil
}

// GetPendingInvitations lists invitations awaiting the user's response.
func (s *InvitationService) GetPendingInvitations(ctx context.Context, email string) (*dto.PendingInvitationsResponse, *errors.AppError) {
	invitations, err := s.repo.GetPendingByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list invitations", err)
	}

	dtos := make([]dto.InvitationResponse, 0, len(invitations))
	for i := range invitations {
		dtos = append(dtos, toInvitationResponse(&invitations[i]))
	}
	return &dto.PendingInvitationsResponse{
		Invitations: dtos,
		Total:       len(dtos),
	}, nil
}

func (s *InvitationService) CountPending(ctx context.Context, email string) (int, *errors.AppError) {
	count, err := s.repo.CountPendingByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "Failed to count invitations", err)
	}
	return count, nil
}

func toInvitationResponse(inv *entity.MeetingInvitation) dto.InvitationResponse {
	return dto.InvitationResponse{
		ID:          inv.ID,
		MeetingID:   inv.MeetingID,
		Email:       inv.Email,
		Status:      string(inv.Status),
		ShareLink:   inv.ShareLink(),
		RespondedAt: inv.RespondedAt,
		CreatedAt:   inv.CreatedAt,
	}
}
