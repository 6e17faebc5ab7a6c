package registry

import (
	"fmt"

	"userregistry/model"
)

type rolePair struct {
	current, added model.Role
}

// roleMerges covers every pair of defined roles. A pair mapped to the empty role is
// rejected with ErrRoleAlreadyHeld: the added role is already held, alone or as part of BOTH.
var roleMerges = map[rolePair]model.Role{
	{model.RoleBuyer, model.RoleBuyer}:   "",
	{model.RoleBuyer, model.RoleSeller}:  model.RoleBoth,
	{model.RoleBuyer, model.RoleBoth}:    model.RoleBoth,
	{model.RoleSeller, model.RoleBuyer}:  model.RoleBoth,
	{model.RoleSeller, model.RoleSeller}: "",
	{model.RoleSeller, model.RoleBoth}:   model.RoleBoth,
	{model.RoleBoth, model.RoleBuyer}:    "",
	{model.RoleBoth, model.RoleSeller}:   "",
	{model.RoleBoth, model.RoleBoth}:     "",
}

// MergeRoles returns the role an identity holds after adding added to current.
// Roles only move up: a single role plus the other single role (or BOTH) becomes BOTH.
// Adding a role the identity already holds, including either single role on top of
// BOTH, is an error.
func MergeRoles(current, added model.Role) (model.Role, error) {
	merged, ok := roleMerges[rolePair{current, added}]
	if !ok {
		return "", fmt.Errorf("%w: cannot merge '%s' into '%s'", ErrInvalidRole, added, current)
	}
	if merged == "" {
		return current, fmt.Errorf("%w: '%s'", ErrRoleAlreadyHeld, current)
	}
	return merged, nil
}
