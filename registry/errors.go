package registry

import (
	"errors"

	"userregistry/model"
)

var (
	ErrAlreadyRegistered = errors.New("identity is already registered")
	ErrNotRegistered     = errors.New("identity is not registered")
	ErrRoleAlreadyHeld   = errors.New("identity already holds this role")
	ErrListUnsupported   = errors.New("store does not support listing profiles")

	// ErrInvalidRole is shared with model so ParseRole failures match errors.Is checks here.
	ErrInvalidRole = model.ErrInvalidRole
)
