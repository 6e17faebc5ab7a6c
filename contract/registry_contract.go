package contract

import (
	"encoding/json"
	"fmt"

	"userregistry/model"
	"userregistry/registry"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-contract-api-go/metadata"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("userregistry.contract")

const contractName = "UserRegistry"

// Chaincode event names.
const (
	EventProfileRegistered = "ProfileRegistered"
	EventRoleAdded         = "RoleAdded"
)

// RoleEvent is the payload of both chaincode events.
type RoleEvent struct {
	ID   model.Identity `json:"id"`
	Role model.Role     `json:"role"`
}

// UserRegistryContract exposes the user registry as chaincode transactions.
// Every transaction acts on the submitting client's own identity.
// @contract:UserRegistry
type UserRegistryContract struct {
	contractapi.Contract
}

func NewUserRegistryContract() *UserRegistryContract {
	c := &UserRegistryContract{}
	c.Name = contractName
	c.Info = metadata.InfoMetadata{
		Title:       "User Registry",
		Description: "Self-registration of marketplace users with buyer/seller roles",
		Version:     "1.0.0",
	}
	c.BeforeTransaction = logTransaction
	return c
}

func logTransaction(ctx contractapi.TransactionContextInterface) error {
	fn, _ := ctx.GetStub().GetFunctionAndParameters()
	logger.Debugf("Chaincode Call: %s (tx %s)", fn, ctx.GetStub().GetTxID())
	return nil
}

// Instantiate is called during chaincode instantiation.
func (s *UserRegistryContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("UserRegistryContract Instantiated/Upgraded")
}

// newRegistry binds a registry to the transaction's world state.
func (s *UserRegistryContract) newRegistry(ctx contractapi.TransactionContextInterface, opts ...registry.Option) *registry.Registry {
	return registry.New(NewLedgerStore(ctx.GetStub()), opts...)
}

func (s *UserRegistryContract) RegisterUser(ctx contractapi.TransactionContextInterface, firstName, lastName, email, role string) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return fmt.Errorf("RegisterUser: %w", err)
	}
	parsedRole, err := model.ParseRole(role)
	if err != nil {
		return fmt.Errorf("RegisterUser: %w", err)
	}
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return fmt.Errorf("RegisterUser: failed to get transaction timestamp: %w", err)
	}
	reg := s.newRegistry(ctx, registry.WithClock(ts.AsTime))

	if err := reg.Register(caller, firstName, lastName, email, parsedRole); err != nil {
		return fmt.Errorf("RegisterUser: %w", err)
	}
	return emitRoleEvent(ctx, EventProfileRegistered, caller, parsedRole)
}

func (s *UserRegistryContract) IsRegistered(ctx contractapi.TransactionContextInterface) (bool, error) {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("IsRegistered: %w", err)
	}
	ok, err := s.newRegistry(ctx).IsRegistered(caller)
	if err != nil {
		return false, fmt.Errorf("IsRegistered: %w", err)
	}
	return ok, nil
}

func (s *UserRegistryContract) IsSeller(ctx contractapi.TransactionContextInterface) (bool, error) {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("IsSeller: %w", err)
	}
	ok, err := s.newRegistry(ctx).IsSeller(caller)
	if err != nil {
		return false, fmt.Errorf("IsSeller: %w", err)
	}
	return ok, nil
}

func (s *UserRegistryContract) IsBuyer(ctx contractapi.TransactionContextInterface) (bool, error) {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("IsBuyer: %w", err)
	}
	ok, err := s.newRegistry(ctx).IsBuyer(caller)
	if err != nil {
		return false, fmt.Errorf("IsBuyer: %w", err)
	}
	return ok, nil
}

// AddRole extends the caller's role. Adding SELLER to a BUYER (or the reverse) yields BOTH.
func (s *UserRegistryContract) AddRole(ctx contractapi.TransactionContextInterface, role string) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return fmt.Errorf("AddRole: %w", err)
	}
	parsedRole, err := model.ParseRole(role)
	if err != nil {
		return fmt.Errorf("AddRole: %w", err)
	}
	merged, err := s.newRegistry(ctx).AddRole(caller, parsedRole)
	if err != nil {
		return fmt.Errorf("AddRole: %w", err)
	}
	return emitRoleEvent(ctx, EventRoleAdded, caller, merged)
}

func (s *UserRegistryContract) GetMyProfile(ctx contractapi.TransactionContextInterface) (*model.Profile, error) {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetMyProfile: %w", err)
	}
	p, err := s.newRegistry(ctx).Profile(caller)
	if err != nil {
		return nil, fmt.Errorf("GetMyProfile: %w", err)
	}
	return p, nil
}

// GetIdentitiesByRole lists the identities holding a role's capability. This is a
// public query; only identities are returned, never names or emails.
func (s *UserRegistryContract) GetIdentitiesByRole(ctx contractapi.TransactionContextInterface, role string) ([]string, error) {
	parsedRole, err := model.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("GetIdentitiesByRole: %w", err)
	}
	ids, err := s.newRegistry(ctx).IdentitiesWithRole(parsedRole)
	if err != nil {
		return nil, fmt.Errorf("GetIdentitiesByRole: %w", err)
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	logger.Infof("GetIdentitiesByRole: Returning %d identities for role %s", len(out), parsedRole)
	return out, nil
}

func emitRoleEvent(ctx contractapi.TransactionContextInterface, name string, id model.Identity, role model.Role) error {
	payload, err := json.Marshal(RoleEvent{ID: id, Role: role})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", name, err)
	}
	if err := ctx.GetStub().SetEvent(name, payload); err != nil {
		return fmt.Errorf("failed to set %s event: %w", name, err)
	}
	return nil
}
