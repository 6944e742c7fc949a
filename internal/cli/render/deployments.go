package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// Color styles for table format
var (
	chainHeader     = color.New(color.BgCyan, color.FgBlack)
	chainHeaderBold = color.New(color.BgCyan, color.FgBlack, color.Bold)
	contractStyle   = color.New(color.FgGreen, color.Bold)
	addressStyle    = color.New(color.FgWhite)
	labelStyle      = color.New(color.FgCyan)
	timestampStyle  = color.New(color.Faint)
	presentStyle    = color.New(color.FgGreen)
	missingStyle    = color.New(color.FgRed)
)

// DeploymentsRenderer renders deployment lists as one table per chain
type DeploymentsRenderer struct {
	out  io.Writer
	json bool
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer, json bool) *DeploymentsRenderer {
	return &DeploymentsRenderer{
		out:  out,
		json: json,
	}
}

type deploymentOutput struct {
	*models.Deployment
	OnChain *bool `json:"onChain,omitempty"`
}

// Render writes the deployment list
func (r *DeploymentsRenderer) Render(result *usecase.DeploymentListResult) error {
	if r.json {
		return writeJSON(r.out, lo.Map(result.Deployments, func(dep *models.Deployment, _ int) deploymentOutput {
			out := deploymentOutput{Deployment: dep}
			if exists, checked := result.OnChain[dep.ID]; checked {
				out.OnChain = &exists
			}
			return out
		}))
	}

	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	byChain := lo.GroupBy(result.Deployments, func(dep *models.Deployment) uint64 {
		return dep.ChainID
	})
	chainIDs := lo.Keys(byChain)
	sort.Slice(chainIDs, func(i, j int) bool { return chainIDs[i] < chainIDs[j] })

	for i, chainID := range chainIDs {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintf(r.out, "%s%s\n",
			chainHeader.Sprintf(" ⛓ %-8s", "chain:"),
			chainHeaderBold.Sprintf("%-20d", chainID))
		fmt.Fprintln(r.out, r.renderTable(byChain[chainID], result.OnChain))
	}

	fmt.Fprintf(r.out, "\nTotal deployments: %d\n", result.Summary.Total)
	return nil
}

// renderTable renders one chain's deployments
func (r *DeploymentsRenderer) renderTable(deployments []*models.Deployment, onChain map[string]bool) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = false
	t.Style().Box = table.BoxStyle{
		PaddingLeft:  "  ",
		PaddingRight: " ",
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft},
	})

	for _, dep := range deployments {
		name := contractStyle.Sprint(dep.ContractName)
		if dep.Label != "" {
			name += labelStyle.Sprintf(":%s", dep.Label)
		}

		row := table.Row{
			name,
			addressStyle.Sprint(dep.Address),
			timestampStyle.Sprint(dep.CreatedAt.Format("2006-01-02 15:04:05")),
		}
		if exists, checked := onChain[dep.ID]; checked {
			if exists {
				row = append(row, presentStyle.Sprint("✓ code"))
			} else {
				row = append(row, missingStyle.Sprint("✗ no code"))
			}
		}
		t.AppendRow(row)
	}

	return strings.TrimRight(t.Render(), "\n")
}

var _ Renderer[*usecase.DeploymentListResult] = (*DeploymentsRenderer)(nil)
