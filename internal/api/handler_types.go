package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/calm/internal/logger"
	"github.com/terraincognita07/calm/internal/metrics"
	"github.com/terraincognita07/calm/internal/models"
	"github.com/terraincognita07/calm/internal/policy"
	"github.com/terraincognita07/calm/internal/services"
)

const (
	defaultAuthTokenTTL = 7 * 24 * time.Hour
	loginAttemptLimit   = 8
	loginAttemptWindow  = 15 * time.Minute
)

type Handler struct {
	secretKey    []byte
	cookieSecure bool
	tokenTTL     time.Duration
	log          *logger.Logger
	metrics      *metrics.Metrics
	policies     *policy.Registry
	authService  *services.AuthService
	loginLimiter *attemptLimiter
	now          func() time.Time

	users         *resource[models.User, services.UserInput]
	profiles      *resource[models.Profile, services.ProfileInput]
	assessments   *resource[models.Assessment, services.AssessmentInput]
	healthData    *resource[models.HealthData, services.HealthDataInput]
	feedback      *resource[models.Feedback, services.FeedbackInput]
	professionals *resource[models.Professional, services.ProfessionalInput]
	appointments  *resource[models.Appointment, services.AppointmentInput]
	clinics       *resource[models.Clinic, services.ClinicInput]

	professionalService *services.ProfessionalService
	feedbackService     *services.FeedbackService
}

// Options carries the runtime settings the handler needs. Zero values fall
// back to safe defaults except SecretKey, which is required.
type Options struct {
	SecretKey             string
	CookieSecure          bool
	TokenTTL              time.Duration
	Location              *time.Location
	HealthDataOwnerWrites bool
	Logger                *logger.Logger
	Metrics               *metrics.Metrics
}

type authClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}
