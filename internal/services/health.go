package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/calm/internal/models"
	"github.com/terraincognita07/calm/internal/query"
	"gorm.io/gorm"
)

var ErrProfessionalNotFound = fmt.Errorf("%w: professional", ErrReferenceNotFound)

// AssessmentInput is never decoded: assessments are read-only over the API.
type AssessmentInput struct{}

func (AssessmentInput) ClaimedUser() uint { return 0 }

func NewAssessmentService(assessments Store[models.Assessment]) *Service[models.Assessment, AssessmentInput] {
	return NewService[models.Assessment, AssessmentInput](assessments, nil)
}

type HealthDataInput struct {
	User     *Reference `json:"user"`
	Mood     *string    `json:"mood"`
	Symptoms *string    `json:"symptoms"`
}

func (input HealthDataInput) ClaimedUser() uint { return input.User.Claimed() }

type healthDataRules struct {
	users Store[models.User]
}

func NewHealthDataService(entries Store[models.HealthData], users Store[models.User]) *Service[models.HealthData, HealthDataInput] {
	return NewService[models.HealthData, HealthDataInput](entries, healthDataRules{users: users})
}

func (rules healthDataRules) Build(ctx context.Context, requesterID uint, input HealthDataInput) (models.HealthData, error) {
	fields := newFieldSet(false)
	entry := models.HealthData{}

	userID, ok, err := fields.owner(ctx, input.User, requesterID, rules.users.Exists)
	if err != nil {
		return models.HealthData{}, err
	}
	if ok {
		entry.UserID = userID
	}

	applyHealthDataText(fields, &entry, input)
	if err := fields.errs.Err(); err != nil {
		return models.HealthData{}, err
	}
	return entry, nil
}

func (rules healthDataRules) Apply(ctx context.Context, current *models.HealthData, input HealthDataInput, partial bool) error {
	fields := newFieldSet(partial)

	userID, ok, err := fields.reference(ctx, "user", input.User, rules.users.Exists)
	if err != nil {
		return err
	}
	if ok {
		current.UserID = userID
	}

	applyHealthDataText(fields, current, input)
	return fields.errs.Err()
}

func applyHealthDataText(fields fieldSet, entry *models.HealthData, input HealthDataInput) {
	if mood, ok := fields.text("mood", input.Mood, maxCharLength); ok {
		entry.Mood = mood
	}
	if symptoms, ok := fields.text("symptoms", input.Symptoms, 0); ok {
		entry.Symptoms = symptoms
	}
}

type FeedbackInput struct {
	User    *Reference `json:"user"`
	Message *string    `json:"message"`
}

func (input FeedbackInput) ClaimedUser() uint { return input.User.Claimed() }

type feedbackRules struct {
	users Store[models.User]
}

type FeedbackService struct {
	*Service[models.Feedback, FeedbackInput]
	professionals Store[models.Professional]
}

func NewFeedbackService(feedback Store[models.Feedback], users Store[models.User], professionals Store[models.Professional]) *FeedbackService {
	return &FeedbackService{
		Service:       NewService[models.Feedback, FeedbackInput](feedback, feedbackRules{users: users}),
		professionals: professionals,
	}
}

// ListForProfessional lists feedback written by the account behind
// professionalID. A missing professional fails the whole listing.
func (service *FeedbackService) ListForProfessional(ctx context.Context, q query.Query, professionalID uint) ([]models.Feedback, error) {
	if _, err := service.professionals.FindByID(ctx, professionalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}
	return service.List(ctx, q.With(query.FeedbackForProfessional(professionalID)))
}

// Build always files feedback under the requester; a user in the payload
// is only checked for well-formedness.
func (rules feedbackRules) Build(ctx context.Context, requesterID uint, input FeedbackInput) (models.Feedback, error) {
	fields := newFieldSet(false)
	feedback := models.Feedback{UserID: requesterID}

	if input.User != nil {
		if _, _, err := fields.reference(ctx, "user", input.User, rules.users.Exists); err != nil {
			return models.Feedback{}, err
		}
	} else if requesterID == 0 {
		fields.errs.Add("user", MessageRequired)
	}

	if message, ok := fields.text("message", input.Message, 0); ok {
		feedback.Message = message
	}
	if err := fields.errs.Err(); err != nil {
		return models.Feedback{}, err
	}
	return feedback, nil
}

func (rules feedbackRules) Apply(_ context.Context, current *models.Feedback, input FeedbackInput, partial bool) error {
	fields := newFieldSet(partial)
	if message, ok := fields.text("message", input.Message, 0); ok {
		current.Message = message
	}
	return fields.errs.Err()
}
