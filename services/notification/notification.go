package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"taxly/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationService queues funnel emails for the background mail worker.
// Deliveries are best-effort; the funnel never blocks on them.
type NotificationService interface {
	EnqueueVerificationEmail(ctx context.Context, email, link string) error
	SendWelcome(ctx context.Context, email, name string) error
}

// AsynqNotificationService enqueues mail tasks on the asynq queue.
type AsynqNotificationService struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewAsynqNotificationService wires the queue-backed notification service.
func NewAsynqNotificationService(client *asynq.Client, logger *zap.Logger) *AsynqNotificationService {
	return &AsynqNotificationService{Client: client, Logger: logger}
}

// EnqueueVerificationEmail queues the verification link email.
func (s *AsynqNotificationService) EnqueueVerificationEmail(ctx context.Context, email, link string) error {
	payload, err := json.Marshal(models.VerificationEmailPayload{Email: email, Link: link})
	if err != nil {
		return fmt.Errorf("failed to marshal verification email payload: %w", err)
	}
	task := asynq.NewTask(models.TypeVerificationEmail, payload)
	if _, err := s.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue verification email: %w", err)
	}
	return nil
}

// SendWelcome queues the post-signup welcome email.
func (s *AsynqNotificationService) SendWelcome(ctx context.Context, email, name string) error {
	payload, err := json.Marshal(models.WelcomeEmailPayload{Email: email, Name: name})
	if err != nil {
		return fmt.Errorf("failed to marshal welcome email payload: %w", err)
	}
	task := asynq.NewTask(models.TypeWelcomeEmail, payload)
	if _, err := s.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue welcome email: %w", err)
	}
	s.Logger.Info("welcome email queued", zap.String("email", email))
	return nil
}
