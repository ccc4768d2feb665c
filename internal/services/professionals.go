package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/calm/internal/models"
	"github.com/terraincognita07/calm/internal/query"
)

// ProfessionalInput has no user field: a professional profile always
// belongs to the account that creates it.
type ProfessionalInput struct {
	Specialization *string `json:"specialization"`
	Bio            *string `json:"bio"`
}

func (ProfessionalInput) ClaimedUser() uint { return 0 }

type professionalRules struct {
	professionals Store[models.Professional]
}

func (rules professionalRules) Build(ctx context.Context, requesterID uint, input ProfessionalInput) (models.Professional, error) {
	fields := newFieldSet(false)
	professional := models.Professional{}

	if requesterID == 0 {
		fields.errs.Add("user", MessageRequired)
	} else {
		taken, err := rules.professionals.ExistsWhere(ctx, "user_id", requesterID, 0)
		if err != nil {
			return models.Professional{}, fmt.Errorf("check professional uniqueness: %w", err)
		}
		if taken {
			fields.errs.Add("user", MessageProfessional)
		}
		professional.UserID = requesterID
	}

	applyProfessionalText(fields, &professional, input)
	if err := fields.errs.Err(); err != nil {
		return models.Professional{}, err
	}
	return professional, nil
}

func (rules professionalRules) Apply(_ context.Context, current *models.Professional, input ProfessionalInput, partial bool) error {
	fields := newFieldSet(partial)
	applyProfessionalText(fields, current, input)
	return fields.errs.Err()
}

func applyProfessionalText(fields fieldSet, professional *models.Professional, input ProfessionalInput) {
	if specialization, ok := fields.text("specialization", input.Specialization, maxCharLength); ok {
		professional.Specialization = specialization
	}
	if bio, ok := fields.text("bio", input.Bio, 0); ok {
		professional.Bio = bio
	}
}

// Availability pairs the listed professionals with their appointments in
// one exact time window.
type Availability struct {
	Professionals []models.Professional `json:"professionals"`
	Appointments  []models.Appointment  `json:"appointments"`
}

type ProfessionalService struct {
	*Service[models.Professional, ProfessionalInput]
	appointments Store[models.Appointment]
	location     *time.Location
}

// NewProfessionalService reads offset-less availability bounds in location.
func NewProfessionalService(professionals Store[models.Professional], appointments Store[models.Appointment], location *time.Location) *ProfessionalService {
	if location == nil {
		location = time.UTC
	}
	service := NewService[models.Professional, ProfessionalInput](professionals, professionalRules{professionals: professionals}).
		withUnique("user", MessageProfessional)
	return &ProfessionalService{Service: service, appointments: appointments, location: location}
}

// Availability lists professionals matching q together with the
// appointments of those professionals starting at rawStart and ending at
// rawEnd exactly.
func (service *ProfessionalService) Availability(ctx context.Context, q query.Query, rawStart string, rawEnd string) (Availability, error) {
	fields := newFieldSet(false)
	start, startOK := fields.timestamp("start_time", &rawStart, service.location)
	end, endOK := fields.timestamp("end_time", &rawEnd, service.location)
	if !startOK || !endOK {
		return Availability{}, fields.errs
	}

	professionals, err := service.List(ctx, q)
	if err != nil {
		return Availability{}, err
	}

	result := Availability{
		Professionals: professionals,
		Appointments:  make([]models.Appointment, 0),
	}
	if len(professionals) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(professionals))
	for _, professional := range professionals {
		ids = append(ids, professional.ID)
	}
	window := query.Query{}.
		With(query.Predicate{SQL: "professional_id IN ?", Args: []any{ids}}).
		With(query.Predicate{SQL: "start_time = ?", Args: []any{start}}).
		With(query.Predicate{SQL: "end_time = ?", Args: []any{end}})

	appointments, err := service.appointments.List(ctx, window)
	if err != nil {
		return Availability{}, err
	}
	result.Appointments = appointments
	return result, nil
}

// HasAvailabilityWindow reports whether both bounds of a window were sent.
func HasAvailabilityWindow(rawStart string, rawEnd string) bool {
	return strings.TrimSpace(rawStart) != "" && strings.TrimSpace(rawEnd) != ""
}
