package db

import (
	"github.com/terraincognita07/calm/internal/models"
	"gorm.io/gorm"
)

type Repositories struct {
	Users         *UserRepository
	Profiles      *Repository[models.Profile]
	Assessments   *Repository[models.Assessment]
	HealthData    *Repository[models.HealthData]
	Feedback      *Repository[models.Feedback]
	Professionals *Repository[models.Professional]
	Appointments  *Repository[models.Appointment]
	Clinics       *Repository[models.Clinic]
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Profiles:      NewRepository[models.Profile](database),
		Assessments:   NewRepository[models.Assessment](database),
		HealthData:    NewRepository[models.HealthData](database),
		Feedback:      NewRepository[models.Feedback](database),
		Professionals: NewRepository[models.Professional](database),
		Appointments:  NewRepository[models.Appointment](database),
		Clinics:       NewRepository[models.Clinic](database),
	}
}
