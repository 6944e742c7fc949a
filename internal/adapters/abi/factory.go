package abi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// libraryPlaceholder marks an unlinked library reference in solc output
const libraryPlaceholder = "__$"

// NewFactory builds a deployable factory from an indexed contract
func NewFactory(contract *models.Contract) (*models.ContractFactory, error) {
	if contract == nil || contract.Artifact == nil {
		return nil, fmt.Errorf("no artifact loaded for contract")
	}

	parsed, err := ParseABI(contract.Artifact.ABI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s: %w", contract.FullName(), err)
	}

	bytecode, err := DecodeBytecode(contract.Artifact.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode for %s: %w", contract.FullName(), err)
	}

	return &models.ContractFactory{
		Contract: contract,
		ABI:      parsed,
		Bytecode: bytecode,
	}, nil
}

// ParseABI parses a JSON ABI. An empty document is treated as an empty ABI.
func ParseABI(raw []byte) (abi.ABI, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return abi.ABI{}, nil
	}
	return abi.JSON(bytes.NewReader(raw))
}

// DecodeBytecode decodes the creation bytecode of an artifact
func DecodeBytecode(obj models.BytecodeObject) ([]byte, error) {
	object := strings.TrimSpace(obj.Object)
	if object == "" || object == "0x" {
		return nil, fmt.Errorf("artifact has no creation bytecode (abstract contract or interface?)")
	}

	if strings.Contains(object, libraryPlaceholder) || len(obj.LinkReferences) > 0 {
		return nil, fmt.Errorf("bytecode references unlinked libraries")
	}

	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	code, err := hexutil.Decode(object)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// DeployData returns the creation payload: init code followed by the packed constructor args
func DeployData(factory *models.ContractFactory, args []string) ([]byte, error) {
	values, err := ParseConstructorArgs(factory.ABI, args)
	if err != nil {
		return nil, err
	}

	packed, err := factory.ABI.Pack("", values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor args: %w", err)
	}

	data := make([]byte, 0, len(factory.Bytecode)+len(packed))
	data = append(data, factory.Bytecode...)
	return append(data, packed...), nil
}
