package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// ManifestRenderer renders a stored manifest
type ManifestRenderer struct {
	out io.Writer
}

// NewManifestRenderer creates a new manifest renderer
func NewManifestRenderer(out io.Writer) *ManifestRenderer {
	return &ManifestRenderer{out: out}
}

func (r *ManifestRenderer) Render(view *usecase.ManifestView) error {
	if view == nil {
		return fmt.Errorf("no manifest to render")
	}

	headerColor.Fprintf(r.out, "Manifest for %s (%d addresses)\n\n", view.Network, len(view.Entries))

	t := newTable(r.out, table.Row{"COMPONENT", "ADDRESS", "ARTIFACT"})
	for _, entry := range view.Entries {
		artifact := entry.Artifact
		if artifact == "" {
			artifact = faintColor.Sprint("(not in catalogue)")
		}
		t.AppendRow(table.Row{nameColor.Sprint(entry.Name), addressColor.Sprint(entry.Address.Hex()), artifact})
	}
	t.Render()

	if len(view.Missing) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, FormatWarning("Not deployed: "+strings.Join(view.Missing, ", ")))
	}
	return nil
}
