package services

import (
	"context"
	"time"

	"github.com/terraincognita07/calm/internal/models"
)

type AppointmentInput struct {
	User         *Reference `json:"user"`
	Professional *Reference `json:"professional"`
	StartTime    *string    `json:"start_time"`
	EndTime      *string    `json:"end_time"`
	Status       *string    `json:"status"`
}

func (input AppointmentInput) ClaimedUser() uint { return input.User.Claimed() }

type appointmentRules struct {
	users         Store[models.User]
	professionals Store[models.Professional]
	location      *time.Location
}

// NewAppointmentService reads offset-less timestamps in location.
func NewAppointmentService(appointments Store[models.Appointment], users Store[models.User], professionals Store[models.Professional], location *time.Location) *Service[models.Appointment, AppointmentInput] {
	if location == nil {
		location = time.UTC
	}
	return NewService[models.Appointment, AppointmentInput](appointments, appointmentRules{
		users:         users,
		professionals: professionals,
		location:      location,
	})
}

func (rules appointmentRules) Build(ctx context.Context, requesterID uint, input AppointmentInput) (models.Appointment, error) {
	fields := newFieldSet(false)
	appointment := models.Appointment{}

	userID, ok, err := fields.owner(ctx, input.User, requesterID, rules.users.Exists)
	if err != nil {
		return models.Appointment{}, err
	}
	if ok {
		appointment.UserID = userID
	}

	if err := rules.apply(ctx, fields, &appointment, input); err != nil {
		return models.Appointment{}, err
	}
	if err := fields.errs.Err(); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (rules appointmentRules) Apply(ctx context.Context, current *models.Appointment, input AppointmentInput, partial bool) error {
	fields := newFieldSet(partial)

	userID, ok, err := fields.reference(ctx, "user", input.User, rules.users.Exists)
	if err != nil {
		return err
	}
	if ok {
		current.UserID = userID
	}

	if err := rules.apply(ctx, fields, current, input); err != nil {
		return err
	}
	return fields.errs.Err()
}

func (rules appointmentRules) apply(ctx context.Context, fields fieldSet, appointment *models.Appointment, input AppointmentInput) error {
	professionalID, ok, err := fields.reference(ctx, "professional", input.Professional, rules.professionals.Exists)
	if err != nil {
		return err
	}
	if ok {
		appointment.ProfessionalID = professionalID
	}

	if start, ok := fields.timestamp("start_time", input.StartTime, rules.location); ok {
		appointment.StartTime = start
	}
	if end, ok := fields.timestamp("end_time", input.EndTime, rules.location); ok {
		appointment.EndTime = end
	}

	if status, ok := fields.text("status", input.Status, maxCharLength); ok {
		appointment.Status = status
	}

	// The window is only checked once every field is individually valid.
	if fields.errs.Empty() && !appointment.StartTime.Before(appointment.EndTime) {
		fields.errs.Add(NonFieldErrors, MessageEndBeforeStart)
	}
	return nil
}
