package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// DeployRenderer renders deploy plans and results
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// RenderPlan prints the ordered components of a plan
func (r *DeployRenderer) RenderPlan(plan *usecase.DeploymentPlan) error {
	network := plan.Network
	if network == "" {
		network = "(no network)"
	}
	headerColor.Fprintf(r.out, "Deployment plan for %s (%d components)\n\n", network, len(plan.Steps))

	t := newTable(r.out, table.Row{"#", "COMPONENT", "ARTIFACT", "DEPENDS ON"})
	for i, step := range plan.Steps {
		artifact := step.Component.Artifact.String()
		if step.Component.IsDerived() {
			artifact = fmt.Sprintf("%s.%s()", step.Component.Source.From, step.Component.Source.Field)
		}
		deps := "-"
		if len(step.Dependencies) > 0 {
			deps = strings.Join(step.Dependencies, ", ")
		}
		t.AppendRow(table.Row{i + 1, nameColor.Sprint(step.Component.Name), artifact, faintColor.Sprint(deps)})
	}
	t.Render()

	if len(plan.External) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Addresses taken from the current manifest:")
		for _, name := range plan.External {
			addr, _ := plan.Base.Lookup(name)
			fmt.Fprintf(r.out, "  %s %s\n", name, addressColor.Sprint(addr.Hex()))
		}
	}
	return nil
}

// Render prints the outcome of a deploy run
func (r *DeployRenderer) Render(result *usecase.DeployResult) error {
	if result == nil {
		return fmt.Errorf("no result to render")
	}

	if result.DryRun {
		if err := r.RenderPlan(result.Plan); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
		color.New(color.FgYellow).Fprintln(r.out, "Dry run, nothing was deployed.")
		return nil
	}

	fmt.Fprintln(r.out)
	if len(result.Deployed) > 0 {
		t := newTable(r.out, table.Row{"COMPONENT", "ADDRESS"})
		for _, record := range result.Deployed {
			t.AppendRow(table.Row{nameColor.Sprint(record.Name), addressColor.Sprint(record.Address.Hex())})
		}
		t.Render()
		fmt.Fprintln(r.out)
	}

	if result.Failure != nil {
		color.New(color.FgRed).Fprintf(r.out, "❌ %s failed: %v\n", result.Failure.Component, result.Failure.Err)
		if skipped := r.notReached(result); len(skipped) > 0 {
			fmt.Fprintf(r.out, "Not deployed: %s\n", strings.Join(skipped, ", "))
		}
		if len(result.Deployed) > 0 {
			fmt.Fprintf(r.out, "Partial manifest written for %s with %d addresses\n", result.Manifest.Network, result.Manifest.Len())
		} else {
			fmt.Fprintln(r.out, "Manifest left unchanged")
		}
		return nil
	}

	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %d components to %s", len(result.Deployed), result.Manifest.Network)))
	return nil
}

// notReached lists the planned components after the failed one
func (r *DeployRenderer) notReached(result *usecase.DeployResult) []string {
	var names []string
	failed := false
	for _, name := range result.Plan.Names() {
		if failed {
			names = append(names, name)
		}
		if name == result.Failure.Component {
			failed = true
		}
	}
	return names
}
