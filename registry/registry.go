// Package registry holds the user registry: one profile per identity, a role per
// profile, and the rules for registering and extending roles.
//
// The registry keeps no state of its own. Profiles live in a Store supplied by the
// host (the ledger in chaincode, MemoryStore elsewhere), and every operation takes
// the caller's identity explicitly.
package registry

import (
	"fmt"
	"time"

	"userregistry/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("userregistry.registry")

// Store maps identities to profiles.
type Store interface {
	// GetProfile returns nil and no error when no profile exists for id.
	GetProfile(id model.Identity) (*model.Profile, error)
	PutProfile(p *model.Profile) error
}

// Lister is implemented by stores that can enumerate every profile.
type Lister interface {
	ListProfiles() ([]*model.Profile, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the source of registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry applies registration and role rules on top of a Store.
type Registry struct {
	store Store
	now   func() time.Time
}

// New creates a Registry backed by store.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates the caller's profile. Only the caller can register itself, so the
// identity checked for uniqueness is the one stored in the profile.
func (r *Registry) Register(caller model.Identity, firstName, lastName, email string, role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: '%s'", ErrInvalidRole, role)
	}
	existing, err := r.store.GetProfile(caller)
	if err != nil {
		return fmt.Errorf("failed to check registration of '%s': %w", caller, err)
	}
	if existing != nil {
		return fmt.Errorf("%w: '%s'", ErrAlreadyRegistered, caller)
	}

	p := &model.Profile{
		ObjectType:   model.ProfileObjectType,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		ID:           caller,
		Role:         role,
		RegisteredAt: r.now().UTC(),
	}
	if err := r.store.PutProfile(p); err != nil {
		return fmt.Errorf("failed to save profile for '%s': %w", caller, err)
	}
	logger.Infof("Registered identity '%s' with role %s", caller, role)
	return nil
}

// IsRegistered returns true when the caller has a profile. A missing profile is
// reported as ErrNotRegistered rather than false.
func (r *Registry) IsRegistered(caller model.Identity) (bool, error) {
	if _, err := r.Profile(caller); err != nil {
		return false, err
	}
	return true, nil
}

// IsSeller reports whether the caller's role carries the seller capability.
func (r *Registry) IsSeller(caller model.Identity) (bool, error) {
	p, err := r.Profile(caller)
	if err != nil {
		return false, err
	}
	return p.Role.CanSell(), nil
}

// IsBuyer reports whether the caller's role carries the buyer capability.
func (r *Registry) IsBuyer(caller model.Identity) (bool, error) {
	p, err := r.Profile(caller)
	if err != nil {
		return false, err
	}
	return p.Role.CanBuy(), nil
}

// AddRole merges role into the caller's current role and returns the result.
// Nothing is written when the merge is rejected.
func (r *Registry) AddRole(caller model.Identity, role model.Role) (model.Role, error) {
	if !role.Valid() {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidRole, role)
	}
	p, err := r.Profile(caller)
	if err != nil {
		return "", err
	}
	merged, err := MergeRoles(p.Role, role)
	if err != nil {
		return p.Role, err
	}
	previous := p.Role
	p.Role = merged
	if err := r.store.PutProfile(p); err != nil {
		return previous, fmt.Errorf("failed to save role for '%s': %w", caller, err)
	}
	logger.Infof("Role of '%s' changed from %s to %s", caller, previous, merged)
	return merged, nil
}

// Profile returns a copy of the caller's stored profile.
func (r *Registry) Profile(caller model.Identity) (*model.Profile, error) {
	p, err := r.store.GetProfile(caller)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile for '%s': %w", caller, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrNotRegistered, caller)
	}
	return p.Clone(), nil
}

// IdentitiesWithRole lists identities whose role grants role. Asking for BOTH lists
// only identities that hold both capabilities.
func (r *Registry) IdentitiesWithRole(role model.Role) ([]model.Identity, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidRole, role)
	}
	lister, ok := r.store.(Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	profiles, err := lister.ListProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	ids := []model.Identity{}
	for _, p := range profiles {
		if grants(p.Role, role) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func grants(held, wanted model.Role) bool {
	switch wanted {
	case model.RoleBuyer:
		return held.CanBuy()
	case model.RoleSeller:
		return held.CanSell()
	default:
		return held == model.RoleBoth
	}
}
