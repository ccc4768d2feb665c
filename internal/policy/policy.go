// Package policy decides who may list, create, read, update or delete each
// resource. Policies are pure: they never touch storage and only report a
// decision with the reason surfaced to the caller.
package policy

type Resource string

const (
	ResourceUsers         Resource = "users"
	ResourceProfiles      Resource = "profiles"
	ResourceAssessments   Resource = "assessments"
	ResourceHealthData    Resource = "healthdata"
	ResourceFeedback      Resource = "feedback"
	ResourceProfessionals Resource = "professionals"
	ResourceAppointments  Resource = "appointments"
	ResourceClinics       Resource = "clinics"
)

type Action string

const (
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Safe reports whether the action only reads.
func (action Action) Safe() bool {
	return action == ActionList || action == ActionRetrieve
}

type Requester struct {
	UserID uint
}

func Anonymous() Requester {
	return Requester{}
}

func (requester Requester) Authenticated() bool {
	return requester.UserID != 0
}

// Request describes one access attempt. OwnerID is the owner of the target
// record for object actions and zero for collection actions or ownerless
// records. ClaimedOwnerID is the user named by a create or update payload,
// zero when the payload names nobody.
type Request struct {
	Action         Action
	Requester      Requester
	OwnerID        uint
	ClaimedOwnerID uint
}

type Outcome int

const (
	Allow Outcome = iota
	DenyUnauthenticated
	DenyForbidden
	DenyReadOnly
)

type Decision struct {
	Outcome Outcome
	Reason  string
}

func (decision Decision) Allowed() bool {
	return decision.Outcome == Allow
}

type AccessPolicy interface {
	Authorize(request Request) Decision
}

const (
	ReasonNotAuthenticated = "Authentication credentials were not provided."
	ReasonReadOnly         = "This resource is read-only."
	ReasonPermissionDenied = "You do not have permission to perform this action."
)

func allow() Decision {
	return Decision{Outcome: Allow}
}

func forbid(reason string) Decision {
	return Decision{Outcome: DenyForbidden, Reason: reason}
}

func requireAuthentication(request Request) Decision {
	if !request.Requester.Authenticated() {
		return Decision{Outcome: DenyUnauthenticated, Reason: ReasonNotAuthenticated}
	}
	return allow()
}

// readOrAuthenticated is the default requirement: anyone may read, writes
// need an authenticated requester.
func readOrAuthenticated(request Request) Decision {
	if request.Action.Safe() {
		return allow()
	}
	return requireAuthentication(request)
}

func ownerOnly(request Request, reason string) Decision {
	if decision := requireAuthentication(request); !decision.Allowed() {
		return decision
	}
	if request.OwnerID != request.Requester.UserID {
		return forbid(reason)
	}
	// Owners cannot hand a record over to someone else.
	if request.ClaimedOwnerID != 0 && request.ClaimedOwnerID != request.Requester.UserID {
		return forbid(reason)
	}
	return allow()
}

// claimsSelf rejects create payloads naming a user other than the requester.
// An absent claim is accepted; the record is then owned by the requester.
func claimsSelf(request Request, reason string) Decision {
	if decision := requireAuthentication(request); !decision.Allowed() {
		return decision
	}
	if request.ClaimedOwnerID != 0 && request.ClaimedOwnerID != request.Requester.UserID {
		return forbid(reason)
	}
	return allow()
}
