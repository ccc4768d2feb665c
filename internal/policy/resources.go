package policy

type UserPolicy struct{}

func (UserPolicy) Authorize(request Request) Decision {
	switch request.Action {
	case ActionUpdate:
		return ownerOnly(request, "You can only update your own account.")
	case ActionDelete:
		return ownerOnly(request, "You are not allowed to delete this account.")
	default:
		// Sign-up is open, and accounts are publicly listed.
		return allow()
	}
}

type ProfilePolicy struct{}

func (ProfilePolicy) Authorize(request Request) Decision {
	switch request.Action {
	case ActionCreate:
		return claimsSelf(request, "You can only create your own profile.")
	case ActionUpdate:
		return ownerOnly(request, "You can only update your own profile.")
	case ActionDelete:
		return ownerOnly(request, "You are not allowed to delete this profile.")
	default:
		return allow()
	}
}

type AssessmentPolicy struct{}

func (AssessmentPolicy) Authorize(request Request) Decision {
	if request.Action.Safe() {
		return allow()
	}
	return Decision{Outcome: DenyReadOnly, Reason: ReasonReadOnly}
}

// HealthDataPolicy gates writes on authentication only. OwnerWrites
// additionally restricts updates and deletes to the record's owner.
type HealthDataPolicy struct {
	OwnerWrites bool
}

func (healthData HealthDataPolicy) Authorize(request Request) Decision {
	switch request.Action {
	case ActionUpdate, ActionDelete:
		if healthData.OwnerWrites {
			return ownerOnly(request, "You can only change your own health data.")
		}
		return requireAuthentication(request)
	default:
		return readOrAuthenticated(request)
	}
}

type FeedbackPolicy struct{}

func (FeedbackPolicy) Authorize(request Request) Decision {
	switch request.Action {
	case ActionCreate:
		return claimsSelf(request, "You are not allowed to submit feedback as another user.")
	case ActionUpdate, ActionDelete:
		return ownerOnly(request, "You can only change your own feedback.")
	default:
		return requireAuthentication(request)
	}
}

type ProfessionalPolicy struct{}

func (ProfessionalPolicy) Authorize(request Request) Decision {
	switch request.Action {
	case ActionUpdate, ActionDelete:
		return ownerOnly(request, "You can only change your own professional profile.")
	default:
		return readOrAuthenticated(request)
	}
}

type AppointmentPolicy struct{}

func (AppointmentPolicy) Authorize(request Request) Decision {
	switch request.Action {
	case ActionCreate:
		return claimsSelf(request, "You can only book appointments for yourself.")
	case ActionUpdate, ActionDelete:
		return ownerOnly(request, "You can only change your own appointments.")
	default:
		return allow()
	}
}

type ClinicPolicy struct{}

func (ClinicPolicy) Authorize(request Request) Decision {
	return readOrAuthenticated(request)
}
