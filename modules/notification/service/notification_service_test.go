package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"

	"meetsync/core/constants"
	"meetsync/core/jobs"
	"meetsync/core/params"
	"meetsync/modules/notification/entity"
)

type fakeNotificationRepo struct {
	created []entity.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByEmail(_ context.Context, email string, p params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	var items []entity.Notification
	for _, n := range f.created {
		if n.RecipientEmail == email {
			items = append(items, n)
		}
	}
	return &entity.PaginatedNotificationEntity{
		Items:      items,
		TotalItems: len(items),
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (f *fakeNotificationRepo) MarkAsRead(_ context.Context, _ string, _ []string) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(_ context.Context, _ string) error {
	return nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, email string) (int, error) {
	count := 0
	for _, n := range f.created {
		if n.RecipientEmail == email && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestNotifyParticipants_DirectDeliveryWithoutQueue(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil)

	svc.NotifyParticipants(context.Background(),
		[]string{"A@Example.com", "", " b@example.com "},
		"Meeting scheduled", "The meeting has been scheduled", "meeting_scheduled",
		map[string]any{"meeting_id": "m-1"})

	if len(repo.created) != 2 {
		t.Fatalf("created = %d, want 2 (blank recipients skipped)", len(repo.created))
	}
	if repo.created[0].RecipientEmail != "a@example.com" {
		t.Errorf("recipient = %q, want lowercased a@example.com", repo.created[0].RecipientEmail)
	}
	if repo.created[0].Type != "meeting_scheduled" {
		t.Errorf("type = %q", repo.created[0].Type)
	}
}

func TestHandleDeliverTask_PersistsPayload(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil)

	payload, err := json.Marshal(jobs.NotificationDeliverPayload{
		Email:   "a@example.com",
		Title:   "New meeting invitation",
		Message: "You have been invited",
		Type:    "invitation",
		Data:    map[string]any{"share_link": "/join/sync-abc"},
	})
	if err != nil {
		t.Fatal(err)
	}

	task := asynq.NewTask(constants.TaskNotificationDeliver, payload)
	if err := svc.HandleDeliverTask(context.Background(), task); err != nil {
		t.Fatalf("HandleDeliverTask: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	if repo.created[0].Data["share_link"] != "/join/sync-abc" {
		t.Errorf("data = %v", repo.created[0].Data)
	}
}

func TestHandleDeliverTask_RejectsMalformedPayload(t *testing.T) {
	svc := NewNotificationService(&fakeNotificationRepo{}, nil)

	task := asynq.NewTask(constants.TaskNotificationDeliver, []byte("{not json"))
	if err := svc.HandleDeliverTask(context.Background(), task); err == nil {
		t.Fatal("malformed payload accepted")
	}
}
