package render

import (
	"fmt"
	"io"

	"github.com/fractional-company/vaultctl/internal/domain"
)

// NodeRenderer renders local node state
type NodeRenderer struct {
	out io.Writer
}

// NewNodeRenderer creates a new node renderer
func NewNodeRenderer(out io.Writer) *NodeRenderer {
	return &NodeRenderer{out: out}
}

// RenderStarted prints the endpoint of a freshly started node
func (r *NodeRenderer) RenderStarted(status *domain.NodeStatus) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Local node running (PID %d)", status.PID)))
	fmt.Fprintf(r.out, "RPC URL:  %s\n", addressColor.Sprint(status.RPCURL))
	fmt.Fprintf(r.out, "Chain ID: %d\n", status.ChainID)
	fmt.Fprintf(r.out, "Logs:     %s\n", faintColor.Sprint(status.LogFile))
	return nil
}

// RenderStopped prints the outcome of a stop request
func (r *NodeRenderer) RenderStopped(status *domain.NodeStatus) error {
	if !status.Running {
		fmt.Fprintln(r.out, FormatWarning("Local node is not running"))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Stopped local node (PID %d)", status.PID)))
	return nil
}

func (r *NodeRenderer) Render(status *domain.NodeStatus) error {
	if status == nil {
		return fmt.Errorf("no node status to render")
	}

	if !status.Running {
		fmt.Fprintf(r.out, "Status:   %s\n", stateText("stopped", false))
		fmt.Fprintf(r.out, "Logs:     %s\n", faintColor.Sprint(status.LogFile))
		return nil
	}

	fmt.Fprintf(r.out, "Status:   %s (PID %d)\n", stateText("running", true), status.PID)
	fmt.Fprintf(r.out, "RPC URL:  %s\n", addressColor.Sprint(status.RPCURL))
	if status.RPCHealthy {
		fmt.Fprintf(r.out, "RPC:      %s\n", stateText("healthy", true))
		fmt.Fprintf(r.out, "Chain ID: %d\n", status.ChainID)
	} else {
		fmt.Fprintf(r.out, "RPC:      %s (%s)\n", stateText("unreachable", false), status.Error)
	}
	fmt.Fprintf(r.out, "Logs:     %s\n", faintColor.Sprint(status.LogFile))
	return nil
}

func stateText(s string, ok bool) string {
	if ok {
		return successColor.Sprint(s)
	}
	return failureColor.Sprint(s)
}
