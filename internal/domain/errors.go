package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNetworkMismatch is returned when network configurations don't match
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrContractNotFound is returned when a contract can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrNoDeployer is returned when no signing account is configured
	ErrNoDeployer = errors.New("no deployer account configured")

	// ErrDeploymentFailed is the single failure kind surfaced by a deploy run
	ErrDeploymentFailed = errors.New("deployment failed")
)

// DeploymentStage names the step of a deploy run that produced an error
type DeploymentStage string

const (
	StageResolve DeploymentStage = "resolve"
	StageConnect DeploymentStage = "connect"
	StageSubmit  DeploymentStage = "submit"
	StageConfirm DeploymentStage = "confirm"
)

// DeploymentError wraps any failure of a deploy run. It matches ErrDeploymentFailed
// and still unwraps to the underlying cause.
type DeploymentError struct {
	Contract string
	Stage    DeploymentStage
	Err      error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment of %s failed (%s): %v", e.Contract, e.Stage, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

func (e *DeploymentError) Is(target error) bool {
	return target == ErrDeploymentFailed
}

type NoContractsMatchErr struct {
	Query       string
	Suggestions []string
}

func (e NoContractsMatchErr) Error() string {
	msg := fmt.Sprintf("no contracts match %q", e.Query)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e NoContractsMatchErr) Is(target error) bool {
	return target == ErrContractNotFound
}

// ContractCandidate is a name/path pair used in ambiguity reports
type ContractCandidate struct {
	Name string
	Path string
}

type AmbiguousFilterErr struct {
	Query   string
	Matches []ContractCandidate
}

func (e AmbiguousFilterErr) Error() string {
	sorted := make([]ContractCandidate, len(e.Matches))
	copy(sorted, e.Matches)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path+":"+sorted[i].Name < sorted[j].Path+":"+sorted[j].Name
	})

	var suggestions []string
	for _, c := range sorted {
		suggestions = append(suggestions, fmt.Sprintf("  - %s (%s)", c.Name, c.Path))
	}

	return fmt.Sprintf("multiple contracts found matching %q - use full path:contract format to disambiguate:\n%s",
		e.Query, strings.Join(suggestions, "\n"))
}
