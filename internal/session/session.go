package session

// Status tracks whether the persisted credential has been read yet.
type Status string

const (
	// StatusLoading means the credential read has not completed. No routing
	// decision may be finalised while a session is in this state.
	StatusLoading Status = "loading"
	// StatusResolved means the credential read finished, successfully or not.
	StatusResolved Status = "resolved"
)

// Session is the derived view of the identity store handed to the route guard
// and the screens. Once resolved, Principal is either nil (unauthenticated) or
// a valid principal.
type Session struct {
	Principal *Principal
	Status    Status
}

// Loading returns a session whose credential read is still pending.
func Loading() Session {
	return Session{Status: StatusLoading}
}

// Resolved returns a settled session for the given principal (nil for
// unauthenticated visitors).
func Resolved(p *Principal) Session {
	return Session{Principal: p, Status: StatusResolved}
}

// Authenticated reports whether a resolved principal is present.
func (s Session) Authenticated() bool {
	return s.Status == StatusResolved && s.Principal != nil
}

// CurrentRole returns the principal's role, or "" when unauthenticated.
func (s Session) CurrentRole() Role {
	if s.Principal == nil {
		return ""
	}
	return s.Principal.Role
}
