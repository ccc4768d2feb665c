package services

import (
	"context"

	"github.com/terraincognita07/calm/internal/models"
)

const (
	coordinateDigits = 9
	coordinatePlaces = 6
)

type ClinicInput struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Phone     *string  `json:"phone"`
	Email     *string  `json:"email"`
	Latitude  *Decimal `json:"latitude"`
	Longitude *Decimal `json:"longitude"`
}

func (ClinicInput) ClaimedUser() uint { return 0 }

type clinicRules struct{}

func NewClinicService(clinics Store[models.Clinic]) *Service[models.Clinic, ClinicInput] {
	return NewService[models.Clinic, ClinicInput](clinics, clinicRules{})
}

func (rules clinicRules) Build(ctx context.Context, _ uint, input ClinicInput) (models.Clinic, error) {
	clinic := models.Clinic{}
	if err := rules.Apply(ctx, &clinic, input, false); err != nil {
		return models.Clinic{}, err
	}
	return clinic, nil
}

func (clinicRules) Apply(_ context.Context, current *models.Clinic, input ClinicInput, partial bool) error {
	fields := newFieldSet(partial)

	if name, ok := fields.text("name", input.Name, maxCharLength); ok {
		current.Name = name
	}
	if address, ok := fields.text("address", input.Address, maxCharLength); ok {
		current.Address = address
	}
	if phone, ok := fields.text("phone", input.Phone, maxPhoneLength); ok {
		current.Phone = phone
	}
	if email, ok := fields.email("email", input.Email); ok {
		current.Email = NormalizeEmail(email)
	}
	if latitude, ok := fields.decimal("latitude", input.Latitude, coordinateDigits, coordinatePlaces); ok {
		current.Latitude = latitude
	}
	if longitude, ok := fields.decimal("longitude", input.Longitude, coordinateDigits, coordinatePlaces); ok {
		current.Longitude = longitude
	}
	return fields.errs.Err()
}
