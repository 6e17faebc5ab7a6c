package contract

import (
	"encoding/json"
	"fmt"

	"userregistry/model"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// LedgerStore keeps profiles in world state under composite keys
// (object type Profile, attribute: identity), JSON encoded.
type LedgerStore struct {
	stub shim.ChaincodeStubInterface
}

func NewLedgerStore(stub shim.ChaincodeStubInterface) *LedgerStore {
	return &LedgerStore{stub: stub}
}

func (s *LedgerStore) profileKey(id model.Identity) (string, error) {
	return s.stub.CreateCompositeKey(model.ProfileObjectType, []string{string(id)})
}

func (s *LedgerStore) GetProfile(id model.Identity) (*model.Profile, error) {
	key, err := s.profileKey(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile composite key for '%s': %w", id, err)
	}
	profileBytes, err := s.stub.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("ledger error retrieving profile for '%s': %w", id, err)
	}
	if profileBytes == nil {
		return nil, nil
	}
	var p model.Profile
	if err := json.Unmarshal(profileBytes, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile for '%s': %w", id, err)
	}
	return &p, nil
}

func (s *LedgerStore) PutProfile(p *model.Profile) error {
	key, err := s.profileKey(p.ID)
	if err != nil {
		return fmt.Errorf("failed to create profile composite key for '%s': %w", p.ID, err)
	}
	profileBytes, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile for '%s': %w", p.ID, err)
	}
	return s.stub.PutState(key, profileBytes)
}

// ListProfiles scans every profile in world state.
func (s *LedgerStore) ListProfiles() ([]*model.Profile, error) {
	resultsIterator, err := s.stub.GetStateByPartialCompositeKey(model.ProfileObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles iterator using objectType '%s': %w", model.ProfileObjectType, err)
	}
	defer resultsIterator.Close()
	return collectProfiles(resultsIterator)
}

// collectProfiles decodes every profile the iterator yields. Undecodable entries are
// skipped; an iterator failure aborts the scan.
func collectProfiles(iterator shim.StateQueryIteratorInterface) ([]*model.Profile, error) {
	profiles := []*model.Profile{}
	for iterator.HasNext() {
		queryResponse, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read next profile from iterator: %w", err)
		}
		var p model.Profile
		if err := json.Unmarshal(queryResponse.Value, &p); err != nil {
			logger.Warningf("collectProfiles: Failed to unmarshal profile (key: %s): %v. Skipping.", queryResponse.Key, err)
			continue
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}
