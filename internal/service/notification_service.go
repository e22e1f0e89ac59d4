package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/observability"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

// Notifier raises workflow notifications. Calls are best-effort from the
// workflow's perspective: the caller reports a returned error as a warning
// and never rolls back the transition that triggered it.
type Notifier interface {
	NotifySubmission(ctx context.Context, instanceID uint) error
	NotifyStatusChange(ctx context.Context, instanceID uint, oldStage, newStage models.Stage) error
}

// NotificationService persists notifications, mirrors them to email, and
// fans events out across nodes.
type NotificationService interface {
	Notifier
	SendReminder(ctx context.Context, instanceID uint) error
	List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id uint, userID string) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	instances     repository.InstanceRepository
	forms         repository.FormRepository
	sections      repository.SectionRepository
	persons       repository.PersonRepository
	email         EmailSender
	redis         *redis.Client
	redisChannel  string
	nats          *nats.Conn
	natsSubject   string
	logger        zerolog.Logger
	nodeID        string
}

type notificationEvent struct {
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs a NotificationService instance. The
// redis client and NATS connection are both optional; a nil collaborator
// skips its leg of the fan-out.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	instanceRepo repository.InstanceRepository,
	formRepo repository.FormRepository,
	sectionRepo repository.SectionRepository,
	personRepo repository.PersonRepository,
	email EmailSender,
	redisClient *redis.Client,
	natsConn *nats.Conn,
	channelBase string,
	logger zerolog.Logger,
) NotificationService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		notifications: notificationRepo,
		instances:     instanceRepo,
		forms:         formRepo,
		sections:      sectionRepo,
		persons:       personRepo,
		email:         email,
		redis:         redisClient,
		redisChannel:  channel,
		nats:          natsConn,
		natsSubject:   subject,
		logger:        logger.With().Str("component", "notification_service").Logger(),
		nodeID:        uuid.NewString(),
	}
}

func (s *notificationService) NotifySubmission(ctx context.Context, instanceID uint) error {
	instance, form, person, err := s.loadContext(ctx, instanceID)
	if err != nil {
		return err
	}

	submittedAt := "unknown"
	if instance.SubmissionDate != nil {
		submittedAt = instance.SubmissionDate.Format("2006-01-02 15:04")
	}

	subject := fmt.Sprintf("Submission Confirmation - %s", form.Name)
	body := fmt.Sprintf(
		"Dear %s,\n\nWe confirm the receipt of your submission for %s. Your submission is now under review.\n\n"+
			"Submission Date: %s\nStatus: %s\n\n"+
			"You will be notified when there is any update on your submission.\n\nBest regards,\nThe Excellence Committee",
		person.FullName(), form.Name, submittedAt, instance.CurrentStage)

	if err := s.deliver(ctx, person, models.NotificationTypeSubmission, subject, body); err != nil {
		return err
	}

	// The responsible persons of the form's root sections review incoming
	// submissions; each gets a review request.
	reviewers, err := s.rootReviewers(ctx, form.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("form_id", form.ID).Msg("failed to resolve reviewers for submission notice")
		return nil
	}
	for _, reviewer := range reviewers {
		if reviewer.ID == person.ID {
			continue
		}
		reviewSubject := fmt.Sprintf("New Submission Requires Review - %s", form.Name)
		reviewBody := fmt.Sprintf(
			"Dear %s,\n\nA new submission for %s requires your review.\n\n"+
				"Instructor: %s\nSubmission Date: %s\nStatus: %s\n\n"+
				"Please login to the system to review the submission.\n\nBest regards,\nThe Excellence Committee",
			reviewer.FullName(), form.Name, person.FullName(), submittedAt, instance.CurrentStage)
		if err := s.deliver(ctx, reviewer, models.NotificationTypeSubmission, reviewSubject, reviewBody); err != nil {
			s.logger.Warn().Err(err).Str("person_id", reviewer.ID).Msg("failed to notify reviewer")
		}
	}

	return nil
}

func (s *notificationService) NotifyStatusChange(ctx context.Context, instanceID uint, oldStage, newStage models.Stage) error {
	instance, form, person, err := s.loadContext(ctx, instanceID)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Status Update - %s", form.Name)
	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\nThe status of your submission for %s has changed from '%s' to '%s'.\n\n",
		person.FullName(), form.Name, oldStage, newStage)

	switch newStage {
	case models.StageApproved:
		score := "-"
		if instance.TotalScore != nil {
			score = fmt.Sprintf("%.2f", *instance.TotalScore)
		}
		fmt.Fprintf(&body, "Congratulations! Your submission has been approved with a score of %s.\n\n", score)
	case models.StageRejected:
		fmt.Fprintf(&body, "We regret to inform you that your submission has been rejected. "+
			"Please see the comments section for more information.\n\nComments: %s\n\n", instance.Comments)
	case models.StageReturnedForRevision:
		fmt.Fprintf(&body, "Your submission requires revision. "+
			"Please see the comments section for more information and submit a revised version.\n\nComments: %s\n\n", instance.Comments)
	case models.StageUnderReview:
		body.WriteString("Your submission is now under review. You will be notified when the review process is complete.\n\n")
	}

	body.WriteString("Please login to the system for more details.\n\nBest regards,\nThe Excellence Committee")

	return s.deliver(ctx, person, models.NotificationTypeStatusChange, subject, body.String())
}

func (s *notificationService) SendReminder(ctx context.Context, instanceID uint) error {
	instance, form, person, err := s.loadContext(ctx, instanceID)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Reminder - %s", form.Name)
	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\n", person.FullName())

	switch instance.CurrentStage {
	case models.StageDraft:
		due := "the due date"
		if form.DueDate != nil {
			due = form.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(&body, "This is a reminder that you have a draft submission for %s that has not been submitted yet. "+
			"Please complete and submit your form by %s.\n\n", form.Name, due)
	case models.StageReturnedForRevision:
		fmt.Fprintf(&body, "This is a reminder that your submission for %s requires revision. "+
			"Please address the comments and resubmit your form as soon as possible.\n\nComments: %s\n\n",
			form.Name, instance.Comments)
	default:
		return fmt.Errorf("%w: reminders apply only to Draft or ReturnedForRevision instances", ErrInvalidArgument)
	}

	body.WriteString("Please login to the system to access your submission.\n\nBest regards,\nThe Excellence Committee")

	return s.deliver(ctx, person, models.NotificationTypeReminder, subject, body.String())
}

func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	notifications, err := s.notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	return s.notifications.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, userID string) error {
	if id == 0 || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: notification id and user id are required", ErrInvalidArgument)
	}

	if err := s.notifications.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	return nil
}

// deliver persists the notification row, mirrors it to email, and publishes
// the event for other nodes. The row is the source of truth; email and
// fan-out failures degrade to log warnings.
func (s *notificationService) deliver(ctx context.Context, person models.Person, kind, subject, body string) error {
	notification := models.Notification{
		UserID:  person.ID,
		Type:    kind,
		Subject: subject,
		Body:    body,
	}
	if err := s.notifications.Create(ctx, &notification); err != nil {
		return err
	}

	if err := s.email.Send(ctx, person.Email, subject, body); err != nil {
		return fmt.Errorf("notification %d stored but email delivery failed: %w", notification.ID, err)
	}

	if err := s.publish(ctx, dto.NewNotificationResponse(notification)); err != nil {
		s.logger.Warn().Err(err).Uint("notification_id", notification.ID).Msg("failed to publish notification event")
	}

	observability.NotificationsSentTotal().WithLabelValues(kind).Inc()

	return nil
}

func (s *notificationService) publish(ctx context.Context, notification dto.NotificationResponse) error {
	if (s.redis == nil || s.redisChannel == "") && (s.nats == nil || s.natsSubject == "") {
		return nil
	}

	event := notificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) loadContext(ctx context.Context, instanceID uint) (models.FormInstance, models.Form, models.Person, error) {
	instance, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FormInstance{}, models.Form{}, models.Person{}, ErrInstanceNotFound
		}
		return models.FormInstance{}, models.Form{}, models.Person{}, err
	}

	form, err := s.forms.GetByID(ctx, instance.FormID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FormInstance{}, models.Form{}, models.Person{}, ErrFormNotFound
		}
		return models.FormInstance{}, models.Form{}, models.Person{}, err
	}

	person, err := s.persons.GetByID(ctx, instance.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FormInstance{}, models.Form{}, models.Person{}, ErrPersonNotFound
		}
		return models.FormInstance{}, models.Form{}, models.Person{}, err
	}

	return instance, form, person, nil
}

func (s *notificationService) rootReviewers(ctx context.Context, formID uint) ([]models.Person, error) {
	sections, err := s.sections.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var reviewers []models.Person
	for _, section := range sections {
		if !section.IsRoot() || section.ResponsiblePerson == "" {
			continue
		}
		if _, ok := seen[section.ResponsiblePerson]; ok {
			continue
		}
		seen[section.ResponsiblePerson] = struct{}{}

		person, err := s.persons.GetByID(ctx, section.ResponsiblePerson)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		reviewers = append(reviewers, person)
	}

	return reviewers, nil
}
