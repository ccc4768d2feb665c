package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/calm/internal/db"
	"github.com/terraincognita07/calm/internal/logger"
	"github.com/terraincognita07/calm/internal/metrics"
	"github.com/terraincognita07/calm/internal/models"
	"github.com/terraincognita07/calm/internal/policy"
	"github.com/terraincognita07/calm/internal/query"
	"github.com/terraincognita07/calm/internal/services"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	secret := strings.TrimSpace(options.SecretKey)
	if secret == "" {
		return nil, errors.New("secret key is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.TokenTTL <= 0 {
		options.TokenTTL = defaultAuthTokenTTL
	}
	if options.Logger == nil {
		options.Logger = logger.Discard()
	}
	if options.Metrics == nil {
		options.Metrics = metrics.New()
	}

	repositories := db.NewRepositories(database)
	handler := &Handler{
		secretKey:    []byte(secret),
		cookieSecure: options.CookieSecure,
		tokenTTL:     options.TokenTTL,
		log:          options.Logger,
		metrics:      options.Metrics,
		policies:     policy.NewRegistry(policy.Options{HealthDataOwnerWrites: options.HealthDataOwnerWrites}),
		authService:  services.NewAuthService(repositories.Users),
		loginLimiter: newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
		now:          time.Now,

		professionalService: services.NewProfessionalService(repositories.Professionals, repositories.Appointments, options.Location),
		feedbackService:     services.NewFeedbackService(repositories.Feedback, repositories.Users, repositories.Professionals),
	}

	var err error
	if handler.users, err = newResource[models.User, services.UserInput](handler, policy.ResourceUsers, query.Users,
		services.NewUserService(repositories.Users)); err != nil {
		return nil, err
	}
	if handler.profiles, err = newResource[models.Profile, services.ProfileInput](handler, policy.ResourceProfiles, query.Profiles,
		services.NewProfileService(repositories.Profiles, repositories.Users)); err != nil {
		return nil, err
	}
	if handler.assessments, err = newResource[models.Assessment, services.AssessmentInput](handler, policy.ResourceAssessments, query.Assessments,
		services.NewAssessmentService(repositories.Assessments)); err != nil {
		return nil, err
	}
	if handler.healthData, err = newResource[models.HealthData, services.HealthDataInput](handler, policy.ResourceHealthData, query.HealthData,
		services.NewHealthDataService(repositories.HealthData, repositories.Users)); err != nil {
		return nil, err
	}
	if handler.feedback, err = newResource[models.Feedback, services.FeedbackInput](handler, policy.ResourceFeedback, query.Feedback,
		handler.feedbackService); err != nil {
		return nil, err
	}
	if handler.professionals, err = newResource[models.Professional, services.ProfessionalInput](handler, policy.ResourceProfessionals, query.Professionals,
		handler.professionalService); err != nil {
		return nil, err
	}
	if handler.appointments, err = newResource[models.Appointment, services.AppointmentInput](handler, policy.ResourceAppointments, query.Appointments,
		services.NewAppointmentService(repositories.Appointments, repositories.Users, repositories.Professionals, options.Location)); err != nil {
		return nil, err
	}
	if handler.clinics, err = newResource[models.Clinic, services.ClinicInput](handler, policy.ResourceClinics, query.Clinics,
		services.NewClinicService(repositories.Clinics)); err != nil {
		return nil, err
	}

	handler.professionals.list = handler.listProfessionals
	handler.feedback.list = handler.listFeedback
	return handler, nil
}
