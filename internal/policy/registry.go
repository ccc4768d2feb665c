package policy

import "fmt"

type Options struct {
	HealthDataOwnerWrites bool
}

type Registry struct {
	policies map[Resource]AccessPolicy
}

func NewRegistry(options Options) *Registry {
	return &Registry{
		policies: map[Resource]AccessPolicy{
			ResourceUsers:         UserPolicy{},
			ResourceProfiles:      ProfilePolicy{},
			ResourceAssessments:   AssessmentPolicy{},
			ResourceHealthData:    HealthDataPolicy{OwnerWrites: options.HealthDataOwnerWrites},
			ResourceFeedback:      FeedbackPolicy{},
			ResourceProfessionals: ProfessionalPolicy{},
			ResourceAppointments:  AppointmentPolicy{},
			ResourceClinics:       ClinicPolicy{},
		},
	}
}

func (registry *Registry) For(resource Resource) (AccessPolicy, error) {
	accessPolicy, ok := registry.policies[resource]
	if !ok {
		return nil, fmt.Errorf("no access policy registered for %q", resource)
	}
	return accessPolicy, nil
}
