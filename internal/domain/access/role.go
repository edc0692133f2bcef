package access

// Role is an identity's portal role. The zero value means "not yet
// resolved": an identity whose role lookup has not settled, or no identity
// at all.
type Role string

const (
	RoleNone    Role = ""
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a stored role value to a Role. Unknown values map to
// RoleNone so callers apply their own fallback.
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s)
	default:
		return RoleNone
	}
}

// Valid reports whether r is an assignable role.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor || r == RoleAdmin
}

func (r Role) String() string { return string(r) }
