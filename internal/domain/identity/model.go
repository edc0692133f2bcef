package identity

import "time"

// Profile carries the contact details an identity has filled in. Every field
// is optional until the owner provides it; booking an appointment fills the
// contact fields as a side effect.
type Profile struct {
	IdentityID string    `json:"identity_id"`
	FullName   string    `json:"full_name"`
	Age        int       `json:"age"`
	Gender     string    `json:"gender"`
	Phone      string    `json:"phone"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UnknownProfile is the placeholder attached to rows whose related profile
// is missing. Listings render it instead of dropping the row.
func UnknownProfile(identityID string) *Profile {
	return &Profile{
		IdentityID: identityID,
		FullName:   "Unknown",
		Age:        0,
		Gender:     "Unknown",
		Phone:      "",
	}
}
