package main

import (
	"userregistry/config"
	"userregistry/contract"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("userregistry.main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Error loading chaincode config: " + err.Error())
	}
	flogging.ActivateSpec(cfg.LogSpec)

	cc, err := contractapi.NewChaincode(contract.NewUserRegistryContract())
	if err != nil {
		panic("Error creating UserRegistryContract: " + err.Error())
	}
	cc.Info.Title = "userregistry"
	cc.Info.Version = "1.0.0"

	if !cfg.ExternalService() {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	tlsProps, err := cfg.TLSProperties()
	if err != nil {
		panic("Error loading chaincode TLS material: " + err.Error())
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID,
		Address:  cfg.ServerAddress,
		CC:       cc,
		TLSProps: tlsProps,
	}
	logger.Infof("Starting chaincode server %s on %s", cfg.CCID, cfg.ServerAddress)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode server: " + err.Error())
	}
}
