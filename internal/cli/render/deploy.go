package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

var detailStyle = color.New(color.Faint)

// DeployRenderer renders the outcome of a deploy run. The result line goes to out;
// transaction details go to details, which may be nil.
type DeployRenderer struct {
	out     io.Writer
	details io.Writer
	json    bool
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out, details io.Writer, json bool) *DeployRenderer {
	return &DeployRenderer{
		out:     out,
		details: details,
		json:    json,
	}
}

type deployOutput struct {
	Contract        string `json:"contract"`
	Address         string `json:"address"`
	State           string `json:"state"`
	Network         string `json:"network"`
	ChainID         uint64 `json:"chainId"`
	Deployer        string `json:"deployer"`
	Nonce           uint64 `json:"nonce"`
	DryRun          bool   `json:"dryRun,omitempty"`
	GasEstimate     uint64 `json:"gasEstimate,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	BlockNumber     uint64 `json:"blockNumber,omitempty"`
	GasUsed         uint64 `json:"gasUsed,omitempty"`
	DeploymentID    string `json:"deploymentId,omitempty"`
	ExplorerURL     string `json:"explorerUrl,omitempty"`
}

// Render writes the deploy result
func (r *DeployRenderer) Render(result *usecase.DeployContractResult) error {
	if r.json {
		return writeJSON(r.out, r.output(result))
	}

	if result.DryRun {
		fmt.Fprintf(r.out, "%s would deploy to %s\n", result.ContractName(), result.Pending.Address.Hex())
		if r.details != nil {
			detailStyle.Fprintf(r.details, "  deployer %s, nonce %d, estimated gas %d\n",
				result.Pending.Sender.Hex(), result.Pending.Nonce, result.Pending.Gas)
		}
		return nil
	}

	fmt.Fprintf(r.out, "%s deployed to %s\n", result.ContractName(), result.Receipt.Address.Hex())

	if r.details != nil {
		detailStyle.Fprintf(r.details, "  tx %s, block %d, gas used %d\n",
			result.Receipt.TxHash.Hex(), result.Receipt.BlockNumber, result.Receipt.GasUsed)
		if link := addressLink(result.ExplorerURL, result.Receipt.Address.Hex()); link != "" {
			detailStyle.Fprintf(r.details, "  %s\n", link)
		}
	}
	return nil
}

func (r *DeployRenderer) output(result *usecase.DeployContractResult) deployOutput {
	out := deployOutput{
		Contract: result.ContractName(),
		Address:  result.Pending.Address.Hex(),
		State:    string(result.State),
		ChainID:  result.ChainID,
		Deployer: result.Pending.Sender.Hex(),
		Nonce:    result.Pending.Nonce,
		DryRun:   result.DryRun,
	}
	if result.Network != nil {
		out.Network = result.Network.Name
	}
	if result.DryRun {
		out.GasEstimate = result.Pending.Gas
		return out
	}

	out.Address = result.Receipt.Address.Hex()
	out.TransactionHash = result.Receipt.TxHash.Hex()
	out.BlockNumber = result.Receipt.BlockNumber
	out.GasUsed = result.Receipt.GasUsed
	out.ExplorerURL = addressLink(result.ExplorerURL, out.Address)
	if result.Deployment != nil {
		out.DeploymentID = result.Deployment.ID
	}
	return out
}

// addressLink builds the explorer page URL for an address
func addressLink(explorerURL, address string) string {
	if explorerURL == "" {
		return ""
	}
	return strings.TrimRight(explorerURL, "/") + "/address/" + address
}

var _ Renderer[*usecase.DeployContractResult] = (*DeployRenderer)(nil)
