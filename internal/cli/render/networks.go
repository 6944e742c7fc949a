package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out  io.Writer
	json bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, json bool) *NetworksRenderer {
	return &NetworksRenderer{
		out:  out,
		json: json,
	}
}

type networkOutput struct {
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl,omitempty"`
	Error   string `json:"error,omitempty"`
	Current bool   `json:"current,omitempty"`
}

// Render writes the list of networks
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if r.json {
		return writeJSON(r.out, lo.Map(result.Networks, func(n usecase.NetworkStatus, _ int) networkOutput {
			out := networkOutput{Name: n.Name, RPCURL: n.RPCURL, Current: n.Name == result.Current}
			if n.Error != nil {
				out.Error = n.Error.Error()
			}
			return out
		}))
	}

	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in foundry.toml [rpc_endpoints]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = false
	t.Style().Box = table.BoxStyle{PaddingLeft: "  ", PaddingRight: " "}

	for _, network := range result.Networks {
		marker := " "
		if network.Name == result.Current {
			marker = color.New(color.FgGreen).Sprint("*")
		}
		if network.Error != nil {
			t.AppendRow(table.Row{marker, "❌ " + network.Name, color.New(color.FgRed).Sprintf("Error: %v", network.Error)})
		} else {
			t.AppendRow(table.Row{marker, "✅ " + network.Name, network.RPCURL})
		}
	}
	fmt.Fprintln(r.out, t.Render())

	return nil
}

var _ Renderer[*usecase.ListNetworksResult] = (*NetworksRenderer)(nil)
