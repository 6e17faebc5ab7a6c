package registry

import (
	"errors"
	"testing"
	"time"

	"userregistry/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice model.Identity = "x509::CN=alice,OU=client::CN=ca.org1.example.com"
	bob   model.Identity = "x509::CN=bob,OU=client::CN=ca.org1.example.com"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRegistry() (*Registry, *MemoryStore) {
	store := NewMemoryStore()
	return New(store, WithClock(func() time.Time { return fixedTime })), store
}

func TestRegisterStoresProfile(t *testing.T) {
	reg, _ := newTestRegistry()

	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer))

	p, err := reg.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, &model.Profile{
		ObjectType:   model.ProfileObjectType,
		FirstName:    "Alice",
		LastName:     "Surname",
		Email:        "alice.email",
		ID:           alice,
		Role:         model.RoleBuyer,
		RegisteredAt: fixedTime,
	}, p)
}

func TestRegisterTwiceKeepsFirstProfile(t *testing.T) {
	reg, _ := newTestRegistry()
	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer))
	before, err := reg.Profile(alice)
	require.NoError(t, err)

	err = reg.Register(alice, "Mallory", "Other", "other.email", model.RoleSeller)
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	after, err := reg.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegisterDirectlyAsBoth(t *testing.T) {
	reg, _ := newTestRegistry()
	require.NoError(t, reg.Register(bob, "Bob", "B", "bob.email", model.RoleBoth))

	isBuyer, err := reg.IsBuyer(bob)
	require.NoError(t, err)
	isSeller, err := reg.IsSeller(bob)
	require.NoError(t, err)
	assert.True(t, isBuyer)
	assert.True(t, isSeller)
}

func TestRegisterRejectsUndefinedRole(t *testing.T) {
	reg, store := newTestRegistry()
	require.ErrorIs(t, reg.Register(alice, "Alice", "Surname", "alice.email", "ADMIN"), ErrInvalidRole)

	profiles, err := store.ListProfiles()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestQueriesBeforeRegistration(t *testing.T) {
	reg, _ := newTestRegistry()

	_, err := reg.IsRegistered(alice)
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, err = reg.IsSeller(alice)
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, err = reg.IsBuyer(alice)
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, err = reg.AddRole(alice, model.RoleSeller)
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, err = reg.Profile(alice)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRoleClassification(t *testing.T) {
	tests := []struct {
		role              model.Role
		isBuyer, isSeller bool
	}{
		{model.RoleBuyer, true, false},
		{model.RoleSeller, false, true},
		{model.RoleBoth, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			reg, _ := newTestRegistry()
			require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", tt.role))

			registered, err := reg.IsRegistered(alice)
			require.NoError(t, err)
			assert.True(t, registered)

			isBuyer, err := reg.IsBuyer(alice)
			require.NoError(t, err)
			assert.Equal(t, tt.isBuyer, isBuyer)

			isSeller, err := reg.IsSeller(alice)
			require.NoError(t, err)
			assert.Equal(t, tt.isSeller, isSeller)
		})
	}
}

func TestAddRoleMergesToBoth(t *testing.T) {
	for _, pair := range [][2]model.Role{
		{model.RoleBuyer, model.RoleSeller},
		{model.RoleSeller, model.RoleBuyer},
	} {
		reg, _ := newTestRegistry()
		require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", pair[0]))

		merged, err := reg.AddRole(alice, pair[1])
		require.NoError(t, err)
		assert.Equal(t, model.RoleBoth, merged)

		p, err := reg.Profile(alice)
		require.NoError(t, err)
		assert.Equal(t, model.RoleBoth, p.Role)
	}
}

func TestAddRoleRejectsRedundantRole(t *testing.T) {
	reg, _ := newTestRegistry()
	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleSeller))

	_, err := reg.AddRole(alice, model.RoleSeller)
	require.ErrorIs(t, err, ErrRoleAlreadyHeld)

	p, err := reg.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSeller, p.Role)
}

func TestAddRoleOnBoth(t *testing.T) {
	reg, _ := newTestRegistry()
	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBoth))

	for _, role := range model.Roles() {
		got, err := reg.AddRole(alice, role)
		require.ErrorIs(t, err, ErrRoleAlreadyHeld, "adding %s", role)
		assert.Equal(t, model.RoleBoth, got)
	}

	p, err := reg.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, model.RoleBoth, p.Role)
}

// countingStore records writes so rejected role changes can be shown to write nothing.
type countingStore struct {
	*MemoryStore
	writes int
}

func (s *countingStore) PutProfile(p *model.Profile) error {
	s.writes++
	return s.MemoryStore.PutProfile(p)
}

func TestAddRoleRejectedWritesNothing(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore()}
	reg := New(store)
	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer))
	_, err := reg.AddRole(alice, model.RoleSeller)
	require.NoError(t, err)
	require.Equal(t, 2, store.writes)

	_, err = reg.AddRole(alice, model.RoleSeller)
	require.ErrorIs(t, err, ErrRoleAlreadyHeld)
	_, err = reg.AddRole(alice, model.RoleBuyer)
	require.ErrorIs(t, err, ErrRoleAlreadyHeld)
	assert.Equal(t, 2, store.writes)
}

func TestAddRoleOnlyChangesRole(t *testing.T) {
	reg, _ := newTestRegistry()
	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer))
	before, err := reg.Profile(alice)
	require.NoError(t, err)

	_, err = reg.AddRole(alice, model.RoleBoth)
	require.NoError(t, err)

	after, err := reg.Profile(alice)
	require.NoError(t, err)
	before.Role = model.RoleBoth
	assert.Equal(t, before, after)
}

func TestProfileReturnsCopy(t *testing.T) {
	reg, _ := newTestRegistry()
	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer))

	p, err := reg.Profile(alice)
	require.NoError(t, err)
	p.Role = model.RoleBoth

	isSeller, err := reg.IsSeller(alice)
	require.NoError(t, err)
	assert.False(t, isSeller)
}

func TestEndToEndScenario(t *testing.T) {
	reg, _ := newTestRegistry()

	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer))

	isBuyer, err := reg.IsBuyer(alice)
	require.NoError(t, err)
	assert.True(t, isBuyer)

	isSeller, err := reg.IsSeller(alice)
	require.NoError(t, err)
	assert.False(t, isSeller)

	_, err = reg.AddRole(alice, model.RoleSeller)
	require.NoError(t, err)

	isSeller, err = reg.IsSeller(alice)
	require.NoError(t, err)
	assert.True(t, isSeller)

	_, err = reg.AddRole(alice, model.RoleSeller)
	assert.ErrorIs(t, err, ErrRoleAlreadyHeld)
}

func TestIdentitiesWithRole(t *testing.T) {
	reg, _ := newTestRegistry()
	carol := model.Identity("x509::CN=carol,OU=client::CN=ca.org1.example.com")
	require.NoError(t, reg.Register(alice, "Alice", "A", "a", model.RoleBuyer))
	require.NoError(t, reg.Register(bob, "Bob", "B", "b", model.RoleSeller))
	require.NoError(t, reg.Register(carol, "Carol", "C", "c", model.RoleBoth))

	buyers, err := reg.IdentitiesWithRole(model.RoleBuyer)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Identity{alice, carol}, buyers)

	sellers, err := reg.IdentitiesWithRole(model.RoleSeller)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Identity{bob, carol}, sellers)

	both, err := reg.IdentitiesWithRole(model.RoleBoth)
	require.NoError(t, err)
	assert.Equal(t, []model.Identity{carol}, both)
}

// failingStore fails every call and cannot list.
type failingStore struct {
	err error
}

func (s failingStore) GetProfile(model.Identity) (*model.Profile, error) { return nil, s.err }
func (s failingStore) PutProfile(*model.Profile) error                   { return s.err }

func TestStoreErrorsAreWrapped(t *testing.T) {
	ledgerErr := errors.New("ledger unavailable")
	reg := New(failingStore{err: ledgerErr})

	err := reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer)
	require.ErrorIs(t, err, ledgerErr)
	assert.NotErrorIs(t, err, ErrAlreadyRegistered)

	_, err = reg.IsRegistered(alice)
	require.ErrorIs(t, err, ledgerErr)
	assert.NotErrorIs(t, err, ErrNotRegistered)

	_, err = reg.IdentitiesWithRole(model.RoleBuyer)
	require.ErrorIs(t, err, ErrListUnsupported)
}

// writeFailStore reads from a MemoryStore but refuses writes after the first.
type writeFailStore struct {
	*MemoryStore
	writes int
}

func (s *writeFailStore) PutProfile(p *model.Profile) error {
	s.writes++
	if s.writes > 1 {
		return errors.New("write rejected")
	}
	return s.MemoryStore.PutProfile(p)
}

func TestAddRoleFailedWriteLeavesRole(t *testing.T) {
	store := &writeFailStore{MemoryStore: NewMemoryStore()}
	reg := New(store)
	require.NoError(t, reg.Register(alice, "Alice", "Surname", "alice.email", model.RoleBuyer))

	_, err := reg.AddRole(alice, model.RoleSeller)
	require.Error(t, err)

	isSeller, err := reg.IsSeller(alice)
	require.NoError(t, err)
	assert.False(t, isSeller)
}
