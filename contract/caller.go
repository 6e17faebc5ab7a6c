package contract

import (
	"errors"
	"fmt"
	"strings"

	"userregistry/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

func isValidX509ID(id string) bool {
	return strings.HasPrefix(id, "x509::") || strings.HasPrefix(id, "eDUwOTo6") // "eDUwOTo6" is "x509::" base64 encoded
}

// callerIdentity resolves the identity of the client that submitted the transaction.
// Transactions never take an identity argument, so callers can only act on themselves.
func callerIdentity(ctx contractapi.TransactionContextInterface) (model.Identity, error) {
	clientIdentity := ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	if !isValidX509ID(id) {
		logger.Warningf("Current client ID '%s' does not appear to be a standard X.509 format.", id)
	}
	return model.Identity(id), nil
}
