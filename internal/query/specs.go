package query

const (
	userNameSearch = `user_id IN (SELECT users.id FROM users WHERE LOWER(users.name) LIKE ? ESCAPE '\')`

	professionalUserNameSearch = `professional_id IN (SELECT professionals.id FROM professionals ` +
		`JOIN users ON users.id = professionals.user_id WHERE LOWER(users.name) LIKE ? ESCAPE '\')`
)

var (
	Users = Spec{
		Filters: []Field{
			Exact("id", "id", KindID),
			Exact("email", "email", KindText),
		},
		Search: []Field{
			Contains("name", "name"),
			Contains("email", "email"),
		},
		Ordering: []Field{
			Ordered("id", "id"),
			Ordered("name", "name"),
			Ordered("email", "email"),
		},
	}

	Profiles = Spec{
		Filters: []Field{Exact("user", "user_id", KindID)},
		Search: []Field{
			ContainsVia("user__name", userNameSearch),
			Contains("location", "location"),
		},
	}

	Assessments = Spec{
		Filters: []Field{Exact("user", "user_id", KindID)},
		Search:  []Field{Contains("type", "type")},
	}

	HealthData = Spec{}

	Feedback = Spec{}

	Professionals = Spec{
		Filters: []Field{Exact("user", "user_id", KindID)},
		Search: []Field{
			ContainsVia("user__name", userNameSearch),
			Contains("specialization", "specialization"),
		},
	}

	Appointments = Spec{
		Filters: []Field{
			Exact("user", "user_id", KindID),
			Exact("professional", "professional_id", KindID),
			Exact("status", "status", KindText),
		},
		Search: []Field{
			ContainsVia("professional__user__name", professionalUserNameSearch),
			Contains("status", "status"),
		},
	}

	Clinics = Spec{
		Filters: []Field{
			Exact("latitude", "latitude", KindDecimal),
			Exact("longitude", "longitude", KindDecimal),
			Exact("email", "email", KindText),
			Exact("name", "name", KindText),
		},
		Search: []Field{
			Contains("name", "name"),
			Contains("email", "email"),
		},
	}
)

// FeedbackForProfessional restricts feedback to the user that owns the given
// professional profile.
func FeedbackForProfessional(professionalID uint) Predicate {
	return Predicate{
		SQL:  "user_id IN (SELECT professionals.user_id FROM professionals WHERE professionals.id = ?)",
		Args: []any{professionalID},
	}
}
