// File: model/profile.go
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Identity is the full X.509 ID of a client, as reported by the client identity library.
type Identity string

// Role classifies what a registered identity may do in the marketplace.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleBoth   Role = "BOTH" // Buyer and seller at once
)

// ErrInvalidRole is returned for any value outside the three defined roles.
var ErrInvalidRole = errors.New("invalid role")

// Roles lists every defined role.
func Roles() []Role {
	return []Role{RoleBuyer, RoleSeller, RoleBoth}
}

// ParseRole converts user input into a Role. Matching ignores case and surrounding space.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: '%s'. Valid roles are: %v", ErrInvalidRole, s, Roles())
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleBoth:
		return true
	}
	return false
}

// CanBuy reports whether the role carries the buyer capability.
func (r Role) CanBuy() bool { return r == RoleBuyer || r == RoleBoth }

// CanSell reports whether the role carries the seller capability.
func (r Role) CanSell() bool { return r == RoleSeller || r == RoleBoth }

// ProfileObjectType is the composite key object type and CouchDB docType for profiles.
const ProfileObjectType = "Profile"

// Profile stores one registered identity.
type Profile struct {
	ObjectType   string    `json:"objectType"` // Set to the composite key object type (Profile)
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	ID           Identity  `json:"id"` // Same value as the ledger key
	Role         Role      `json:"role"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Clone returns an independent copy of p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
