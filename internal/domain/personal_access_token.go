package domain

import "time"

// PersonalAccessToken is a Sanctum-style API token. Role is denormalized from
// the owning user so the auth middleware can build an Actor in one lookup.
type PersonalAccessToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	Role      Role
	ExpiresAt *time.Time
}
