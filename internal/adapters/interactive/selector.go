package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/manifoldco/promptui"
)

// ErrNonInteractive is returned when a prompt is needed but prompts are disabled
var ErrNonInteractive = errors.New("interactive prompt not available in non-interactive mode")

// SelectorAdapter handles the operator prompts of a deploy run
type SelectorAdapter struct {
	config *config.RuntimeConfig
	// runSelect shows the multi-select; replaced in tests
	runSelect func(names []string, title string) ([]string, error)
	// runConfirm asks a yes/no question; replaced in tests
	runConfirm func(label string) (bool, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{
		config:     cfg,
		runSelect:  SelectComponents,
		runConfirm: confirm,
	}
}

// SelectComponents lets the operator tick the components to deploy
func (s *SelectorAdapter) SelectComponents(ctx context.Context, names []string) ([]string, error) {
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}
	return s.runSelect(names, "Select components to deploy")
}

// ConfirmDeploy prints the plan and asks for approval
func (s *SelectorAdapter) ConfirmDeploy(ctx context.Context, plan *usecase.DeploymentPlan) (bool, error) {
	if s.config.NonInteractive {
		return false, ErrNonInteractive
	}
	label := fmt.Sprintf("Deploy %d components to %s (%s)",
		len(plan.Steps), color.New(color.Bold).Sprint(plan.Network), strings.Join(plan.Names(), ", "))
	return s.runConfirm(label)
}

func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	return false, fmt.Errorf("confirmation cancelled: %w", err)
}

var (
	_ usecase.ComponentSelector = (*SelectorAdapter)(nil)
	_ usecase.DeployConfirmer   = (*SelectorAdapter)(nil)
)
