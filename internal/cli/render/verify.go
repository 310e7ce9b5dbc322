package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

// Render prints one row per component, then the failure reasons
func (r *VerifyRenderer) Render(result *usecase.VerifyResult) error {
	if result == nil {
		return fmt.Errorf("no result to render")
	}

	if result.Count(usecase.StatusDumped) == len(result.Results) && len(result.Results) > 0 {
		return r.renderCommands(result)
	}

	fmt.Fprintln(r.out)
	t := newTable(r.out, table.Row{"COMPONENT", "ADDRESS", "STATUS"})
	for _, res := range result.Results {
		t.AppendRow(table.Row{nameColor.Sprint(res.Component), addressColor.Sprint(res.Address.Hex()), r.status(res.Status)})
	}
	t.Render()

	var failures []*usecase.ComponentVerification
	for _, res := range result.Results {
		if res.Error != nil {
			failures = append(failures, res)
		}
	}
	if len(failures) > 0 {
		fmt.Fprintln(r.out)
		for _, res := range failures {
			color.New(color.FgRed).Fprintf(r.out, "  ✗ %s: %v\n", res.Component, res.Error)
		}
	}

	fmt.Fprintf(r.out, "\nVerification complete: %d/%d successful\n", result.Count(usecase.StatusVerified), len(result.Results))
	return nil
}

// renderCommands prints the forge invocations of a --dump-command run
func (r *VerifyRenderer) renderCommands(result *usecase.VerifyResult) error {
	for _, res := range result.Results {
		faintColor.Fprintf(r.out, "# %s\n", res.Component)
		fmt.Fprintln(r.out, shellJoin(res.Command))
	}
	return nil
}

func (r *VerifyRenderer) status(status usecase.VerificationStatus) string {
	label := title(string(status))
	switch status {
	case usecase.StatusVerified:
		return color.New(color.FgGreen).Sprint("✓ " + label)
	case usecase.StatusFailed:
		return color.New(color.FgRed).Sprint("✗ " + label)
	case usecase.StatusUnresolved:
		return color.New(color.FgYellow).Sprint("? " + label)
	default:
		return label
	}
}

// shellJoin quotes arguments containing shell metacharacters
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'$`\\[](){}*?;&|<>") {
			quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		} else {
			quoted[i] = arg
		}
	}
	return strings.Join(quoted, " ")
}
