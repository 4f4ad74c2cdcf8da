package models

import "time"

const (
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
)

// ValidRole reports whether r is one of the staff roles the clinic knows.
func ValidRole(r string) bool {
	return r == RoleDoctor || r == RoleReceptionist
}

// User is a staff profile keyed by the identity provider's UID.
type User struct {
	ID        string    `bson:"_id" json:"uid"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Role      string    `bson:"role" json:"role"` // "doctor", "receptionist"
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Credential is a password login for the local identity provider.
type Credential struct {
	UID          string    `bson:"_id" json:"uid"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"` // Hide from JSON responses
	DisplayName  string    `bson:"displayName" json:"displayName"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
