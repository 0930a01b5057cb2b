package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	coreEntity "meetsync/core/entity"
	"meetsync/core/jobs"
	"meetsync/core/logger"
	"meetsync/core/params"
	"meetsync/modules/notification/dto"
	"meetsync/modules/notification/entity"
	"meetsync/modules/notification/repository"
)

// NotificationService persists notifications and fans them out through the
// background job queue. It satisfies the Notifier collaborators of the meeting
// and invitation modules.
type NotificationService struct {
	repo repository.NotificationRepositoryInterface
	jobs *jobs.Client
}

func NewNotificationService(repo repository.NotificationRepositoryInterface, jobsClient *jobs.Client) *NotificationService {
	return &NotificationService{
		repo: repo,
		jobs: jobsClient,
	}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	notif := &entity.Notification{
		RecipientEmail: strings.ToLower(req.Email),
		Title:          req.Title,
		Message:        req.Message,
		Type:           req.Type,
		Data:           entity.JSONB(req.Data),
		IsRead:         false,
		BaseEntity: coreEntity.BaseEntity{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	return s.repo.Create(ctx, notif)
}

// NotifyParticipants enqueues one delivery task per recipient so callers never
// block on persistence. Without a job client it degrades to direct writes.
func (s *NotificationService) NotifyParticipants(ctx context.Context, emails []string, title string, message string, notifType string, data map[string]any) {
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}

		payload := jobs.NotificationDeliverPayload{
			Email:   email,
			Title:   title,
			Message: message,
			Type:    notifType,
			Data:    data,
		}

		if s.jobs != nil {
			if err := s.jobs.EnqueueNotificationDeliver(ctx, payload); err == nil {
				continue
			} else {
				logger.Error("NotificationService:NotifyParticipants:Enqueue", "error", err, "email", email)
			}
		}

		if err := s.Create(ctx, &dto.CreateNotificationRequest{
			Email:   email,
			Title:   title,
			Message: message,
			Type:    notifType,
			Data:    data,
		}); err != nil {
			logger.Error("NotificationService:NotifyParticipants:Create", "error", err, "email", email)
		}
	}
}

// HandleDeliverTask is the asynq handler for queued deliveries.
func (s *NotificationService) HandleDeliverTask(ctx context.Context, task *asynq.Task) error {
	var payload jobs.NotificationDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("NotificationService:HandleDeliverTask:Unmarshal", "error", err)
		return err
	}

	return s.Create(ctx, &dto.CreateNotificationRequest{
		Email:   payload.Email,
		Title:   payload.Title,
		Message: payload.Message,
		Type:    payload.Type,
		Data:    payload.Data,
	})
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, email string, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email), queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, email string, ids []string) error {
	return s.repo.MarkAsRead(ctx, strings.ToLower(email), ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, email string) error {
	return s.repo.MarkAllAsRead(ctx, strings.ToLower(email))
}

func (s *NotificationService) CountUnread(ctx context.Context, email string) (int, error) {
	return s.repo.CountUnread(ctx, strings.ToLower(email))
}
