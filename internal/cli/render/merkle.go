package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// MerkleRenderer renders permission tree builds and proof checks
type MerkleRenderer struct {
	out     io.Writer
	verbose bool
}

// NewMerkleRenderer creates a new merkle renderer. Verbose lists every leaf.
func NewMerkleRenderer(out io.Writer, verbose bool) *MerkleRenderer {
	return &MerkleRenderer{out: out, verbose: verbose}
}

func (r *MerkleRenderer) Render(result *usecase.BuildTreeResult) error {
	if result == nil {
		return fmt.Errorf("no tree to render")
	}

	fmt.Fprintf(r.out, "Root:   %s\n", addressColor.Sprint(result.Root.Hex()))
	fmt.Fprintf(r.out, "Leaves: %d (%d distinct)\n", len(result.Leaves), result.Distinct)
	fmt.Fprintf(r.out, "Depth:  %d\n", result.Depth)

	if r.verbose {
		fmt.Fprintln(r.out)
		t := newTable(r.out, table.Row{"#", "LEAF", "PROOF LENGTH"})
		for i, leaf := range result.Leaves {
			t.AppendRow(table.Row{i, leaf.Hex(), len(result.Proofs[leaf.Hex()].Proofs)})
		}
		t.Render()
	}

	if result.Written != "" {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, FormatSuccess("Proofs written to "+result.Written))
	}
	return nil
}

// RenderCheck prints the outcome of checking a proof artifact
func (r *MerkleRenderer) RenderCheck(result *usecase.ProofCheckResult) error {
	if result == nil {
		return fmt.Errorf("no result to render")
	}

	invalid := 0
	for _, check := range result.Checks {
		if !check.Valid {
			invalid++
			color.New(color.FgRed).Fprintf(r.out, "  ✗ %s\n", check.Key)
		} else if r.verbose {
			color.New(color.FgGreen).Fprintf(r.out, "  ✓ %s\n", check.Key)
		}
	}

	if len(result.Roots) > 1 {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Artifact mixes %d different roots", len(result.Roots))))
	}

	if result.Valid() {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("All %d proofs verify against %s", len(result.Checks), result.Roots[0].Hex())))
		return nil
	}
	fmt.Fprintf(r.out, "%d of %d proofs failed\n", invalid, len(result.Checks))
	return nil
}
