package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"meetsync/core/errors"
	"meetsync/modules/invitation/entity"
	meetingEntity "meetsync/modules/meeting/entity"
)

type fakeInvitationRepo struct {
	byToken map[string]*entity.MeetingInvitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byToken: make(map[string]*entity.MeetingInvitation)}
}

func (f *fakeInvitationRepo) Upsert(_ context.Context, invitation *entity.MeetingInvitation) error {
	for token, inv := range f.byToken {
		if inv.MeetingID == invitation.MeetingID && inv.Email == invitation.Email {
			delete(f.byToken, token)
			break
		}
	}
	invitation.ID = uuid.New()
	copied := *invitation
	f.byToken[invitation.Token] = &copied
	return nil
}

func (f *fakeInvitationRepo) GetByToken(_ context.Context, token string) (*entity.MeetingInvitation, error) {
	inv, ok := f.byToken[token]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvitationRepo) GetByMeetingAndEmail(_ context.Context, meetingID uuid.UUID, email string) (*entity.MeetingInvitation, error) {
	for _, inv := range f.byToken {
		if inv.MeetingID == meetingID && inv.Email == email {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeInvitationRepo) GetPendingByEmail(_ context.Context, email string) ([]entity.MeetingInvitation, error) {
	var out []entity.MeetingInvitation
	for _, inv := range f.byToken {
		if inv.Email == email && inv.Status == entity.InvitationStatusPending {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) CountPendingByEmail(ctx context.Context, email string) (int, error) {
	pending, _ := f.GetPendingByEmail(ctx, email)
	return len(pending), nil
}

func (f *fakeInvitationRepo) UpdateStatusIfPending(_ context.Context, id uuid.UUID, status entity.InvitationStatus) (bool, error) {
	for _, inv := range f.byToken {
		if inv.ID == id {
			if inv.Status != entity.InvitationStatusPending {
				return false, nil
			}
			now := time.Now()
			inv.Status = status
			inv.RespondedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationRepo) DeleteByMeetingAndEmail(_ context.Context, meetingID uuid.UUID, email string) error {
	for token, inv := range f.byToken {
		if inv.MeetingID == meetingID && inv.Email == email {
			delete(f.byToken, token)
		}
	}
	return nil
}

// stubMeetingRepo serves only the lookups the invitation service makes.
type stubMeetingRepo struct {
	meetings     map[uuid.UUID]*meetingEntity.Meeting
	participants map[uuid.UUID][]meetingEntity.MeetingParticipant
}

func newStubMeetingRepo() *stubMeetingRepo {
	return &stubMeetingRepo{
		meetings:     make(map[uuid.UUID]*meetingEntity.Meeting),
		participants: make(map[uuid.UUID][]meetingEntity.MeetingParticipant),
	}
}

func (s *stubMeetingRepo) addMeeting(status meetingEntity.MeetingStatus) uuid.UUID {
	id := uuid.New()
	s.meetings[id] = &meetingEntity.Meeting{
		OrganizerEmail:  "organizer@example.com",
		Title:           "Quarterly review",
		RangeStart:      time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC),
		WindowStart:     "09:00",
		WindowEnd:       "17:00",
		DurationMinutes: 30,
		Status:          status,
	}
	s.meetings[id].ID = id
	return id
}

func (s *stubMeetingRepo) CreateMeeting(_ context.Context, m *meetingEntity.Meeting) (*meetingEntity.Meeting, error) {
	return m, nil
}

func (s *stubMeetingRepo) GetMeetingByID(_ context.Context, id uuid.UUID) (*meetingEntity.Meeting, error) {
	m, ok := s.meetings[id]
	if !ok {
		return nil, nil
	}
	return m, nil
}

func (s *stubMeetingRepo) GetMeetingsByOrganizer(_ context.Context, _ string) ([]meetingEntity.Meeting, error) {
	return nil, nil
}

func (s *stubMeetingRepo) GetMeetingsByParticipant(_ context.Context, _ string) ([]meetingEntity.Meeting, error) {
	return nil, nil
}

func (s *stubMeetingRepo) UpdateMeetingCAS(_ context.Context, _ *meetingEntity.Meeting, _ int) (bool, error) {
	return false, nil
}

func (s *stubMeetingRepo) AddParticipant(_ context.Context, p *meetingEntity.MeetingParticipant) error {
	s.participants[p.MeetingID] = append(s.participants[p.MeetingID], *p)
	return nil
}

func (s *stubMeetingRepo) GetParticipantsByMeetingID(_ context.Context, meetingID uuid.UUID) ([]meetingEntity.MeetingParticipant, error) {
	return s.participants[meetingID], nil
}

func (s *stubMeetingRepo) RemoveParticipant(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (s *stubMeetingRepo) UpsertParticipantIfPending(_ context.Context, _ *meetingEntity.MeetingParticipant) (bool, error) {
	return false, nil
}

func (s *stubMeetingRepo) SaveSlots(_ context.Context, _ uuid.UUID, _ []meetingEntity.MeetingSlot) error {
	return nil
}

func (s *stubMeetingRepo) GetSlotsByMeetingID(_ context.Context, _ uuid.UUID) ([]meetingEntity.MeetingSlot, error) {
	return nil, nil
}

func (s *stubMeetingRepo) ClearSlotsByMeetingID(_ context.Context, _ uuid.UUID) error {
	return nil
}

func TestCreateInvitations_IssuesTokensAndShareLinks(t *testing.T) {
	repo := newFakeInvitationRepo()
	meetings := newStubMeetingRepo()
	svc := NewInvitationService(repo, meetings, nil)
	ctx := context.Background()

	meetingID := meetings.addMeeting(meetingEntity.MeetingStatusPending)

	err := svc.CreateInvitations(ctx, meetingID, "Quarterly Review!", "organizer@example.com",
		[]string{"a@example.com", "organizer@example.com", " b@example.com "})
	if err != nil {
		t.Fatalf("CreateInvitations: %v", err)
	}

	if len(repo.byToken) != 2 {
		t.Fatalf("invitations = %d, want 2 (organizer excluded, emails trimmed)", len(repo.byToken))
	}
	for token, inv := range repo.byToken {
		if inv.ShareSlug != "quarterly-review" {
			t.Errorf("share slug = %q, want quarterly-review", inv.ShareSlug)
		}
		if inv.ShareLink() != "/join/quarterly-review-"+token {
			t.Errorf("share link = %q", inv.ShareLink())
		}
	}
}

func TestRespond_DeclineSetsStatusOnce(t *testing.T) {
	repo := newFakeInvitationRepo()
	meetings := newStubMeetingRepo()
	svc := NewInvitationService(repo, meetings, nil)
	ctx := context.Background()

	meetingID := meetings.addMeeting(meetingEntity.MeetingStatusPending)
	if err := svc.CreateInvitations(ctx, meetingID, "Sync", "organizer@example.com", []string{"a@example.com"}); err != nil {
		t.Fatalf("CreateInvitations: %v", err)
	}
	var token string
	for tok := range repo.byToken {
		token = tok
	}

	resp, appErr := svc.Respond(ctx, token, "declined")
	if appErr != nil {
		t.Fatalf("Respond: %v", appErr)
	}
	if resp.Status != string(entity.InvitationStatusDeclined) {
		t.Errorf("status = %s, want declined", resp.Status)
	}
	if resp.RespondedAt == nil {
		t.Errorf("respondedAt not set")
	}

	// Declining only moves invitation status; it never touches availability.
	if got := len(meetings.participants[meetingID]); got != 0 {
		t.Errorf("participants mutated by respond: %d", got)
	}

	_, appErr = svc.Respond(ctx, token, "accepted")
	if appErr == nil || appErr.Code != errors.ErrStaleState {
		t.Fatalf("second Respond = %v, want ErrStaleState", appErr)
	}
}

func TestRevokeInvitation_TokenStopsResolving(t *testing.T) {
	repo := newFakeInvitationRepo()
	meetings := newStubMeetingRepo()
	svc := NewInvitationService(repo, meetings, nil)
	ctx := context.Background()

	meetingID := meetings.addMeeting(meetingEntity.MeetingStatusPending)
	if err := svc.CreateInvitations(ctx, meetingID, "Sync", "organizer@example.com", []string{"a@example.com"}); err != nil {
		t.Fatalf("CreateInvitations: %v", err)
	}
	var token string
	for tok := range repo.byToken {
		token = tok
	}

	if err := svc.RevokeInvitation(ctx, meetingID, "A@Example.com"); err != nil {
		t.Fatalf("RevokeInvitation: %v", err)
	}

	if _, appErr := svc.Respond(ctx, token, "accepted"); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("Respond after revoke = %v, want ErrNotFound", appErr)
	}
	if _, appErr := svc.GetJoinView(ctx, token); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("GetJoinView after revoke = %v, want ErrNotFound", appErr)
	}

	pending, appErr := svc.GetPendingInvitations(ctx, "a@example.com")
	if appErr != nil {
		t.Fatalf("GetPendingInvitations: %v", appErr)
	}
	if len(pending.Invitations) != 0 {
		t.Fatalf("pending after revoke = %d, want 0", len(pending.Invitations))
	}
}

func TestRespond_InvalidStatusAndUnknownToken(t *testing.T) {
	svc := NewInvitationService(newFakeInvitationRepo(), newStubMeetingRepo(), nil)
	ctx := context.Background()

	if _, appErr := svc.Respond(ctx, "whatever", "maybe"); appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("Respond(maybe) = %v, want ErrInvalidInput", appErr)
	}
	if _, appErr := svc.Respond(ctx, "missing-token", "accepted"); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("Respond(unknown token) = %v, want ErrNotFound", appErr)
	}
}

func TestRespond_CancelledMeetingIsStale(t *testing.T) {
	repo := newFakeInvitationRepo()
	meetings := newStubMeetingRepo()
	svc := NewInvitationService(repo, meetings, nil)
	ctx := context.Background()

	meetingID := meetings.addMeeting(meetingEntity.MeetingStatusCancelled)
	inv := &entity.MeetingInvitation{
		MeetingID: meetingID,
		Email:     "a@example.com",
		Token:     "tok-cancelled",
		ShareSlug: "sync",
		Status:    entity.InvitationStatusPending,
	}
	if err := repo.Upsert(ctx, inv); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	_, appErr := svc.Respond(ctx, "tok-cancelled", "accepted")
	if appErr == nil || appErr.Code != errors.ErrStaleState {
		t.Fatalf("Respond on cancelled meeting = %v, want ErrStaleState", appErr)
	}
}

func TestInviteParticipants_RotatesTokenOnReinvite(t *testing.T) {
	repo := newFakeInvitationRepo()
	meetings := newStubMeetingRepo()
	svc := NewInvitationService(repo, meetings, nil)
	ctx := context.Background()

	meetingID := meetings.addMeeting(meetingEntity.MeetingStatusPending)

	first, appErr := svc.InviteParticipants(ctx, meetingID, "organizer@example.com", []string{"a@example.com"})
	if appErr != nil {
		t.Fatalf("InviteParticipants: %v", appErr)
	}
	if len(first) != 1 {
		t.Fatalf("invitations = %d, want 1", len(first))
	}

	// Respond, then re-invite: status resets to pending under a fresh token.
	firstToken := first[0].ShareLink[len("/join/quarterly-review-"):]
	if _, appErr := svc.Respond(ctx, firstToken, "declined"); appErr != nil {
		t.Fatalf("Respond: %v", appErr)
	}

	second, appErr := svc.InviteParticipants(ctx, meetingID, "organizer@example.com", []string{"a@example.com"})
	if appErr != nil {
		t.Fatalf("re-invite: %v", appErr)
	}
	if len(second) != 1 {
		t.Fatalf("re-invitations = %d, want 1", len(second))
	}
	if second[0].Status != string(entity.InvitationStatusPending) {
		t.Errorf("re-invite status = %s, want pending", second[0].Status)
	}
	if second[0].ShareLink == first[0].ShareLink {
		t.Errorf("token was not rotated on re-invite")
	}
}

func TestInviteParticipants_FrozenAfterPending(t *testing.T) {
	meetings := newStubMeetingRepo()
	svc := NewInvitationService(newFakeInvitationRepo(), meetings, nil)

	meetingID := meetings.addMeeting(meetingEntity.MeetingStatusScheduled)

	_, appErr := svc.InviteParticipants(context.Background(), meetingID, "organizer@example.com", []string{"a@example.com"})
	if appErr == nil || appErr.Code != errors.ErrStaleState {
		t.Fatalf("InviteParticipants on scheduled = %v, want ErrStaleState", appErr)
	}
}

func TestInviteParticipants_OrganizerOnly(t *testing.T) {
	meetings := newStubMeetingRepo()
	svc := NewInvitationService(newFakeInvitationRepo(), meetings, nil)

	meetingID := meetings.addMeeting(meetingEntity.MeetingStatusPending)

	_, appErr := svc.InviteParticipants(context.Background(), meetingID, "a@example.com", []string{"b@example.com"})
	if appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("InviteParticipants by non-organizer = %v, want ErrForbidden", appErr)
	}
}
