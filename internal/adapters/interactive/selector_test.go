package interactive

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(m multiSelectModel, keys ...tea.KeyMsg) multiSelectModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(multiSelectModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
)

func TestMultiSelectModel(t *testing.T) {
	items := []string{"supply", "transfer", "buyout"}

	t.Run("toggle and confirm", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "pick"), keyDown, keySpace, keyDown, keySpace, keyEnter)
		assert.True(t, m.done)
		assert.False(t, m.cancelled)
		assert.Equal(t, []string{"transfer", "buyout"}, m.chosen())
	})

	t.Run("enter without selection keeps going", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "pick"), keyEnter)
		assert.False(t, m.done)
	})

	t.Run("select all then none", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "pick"), keyAll)
		assert.Equal(t, items, m.chosen())
		m = press(m, keyAll)
		assert.Empty(t, m.chosen())
	})

	t.Run("cursor stays in range", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "pick"), keyDown, keyDown, keyDown, keyDown)
		assert.Equal(t, 2, m.cursor)
	})

	t.Run("quit cancels", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "pick"), keySpace, keyQuit)
		assert.True(t, m.cancelled)
		assert.Empty(t, m.View())
	})
}

func TestSelectorAdapter(t *testing.T) {
	plan := &usecase.DeploymentPlan{Network: "rinkeby"}

	t.Run("non-interactive refuses", func(t *testing.T) {
		s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})
		_, err := s.SelectComponents(context.Background(), []string{"supply"})
		assert.ErrorIs(t, err, ErrNonInteractive)
		_, err = s.ConfirmDeploy(context.Background(), plan)
		assert.ErrorIs(t, err, ErrNonInteractive)
	})

	t.Run("confirm delegates to prompt", func(t *testing.T) {
		s := NewSelectorAdapter(&config.RuntimeConfig{})
		var label string
		s.runConfirm = func(l string) (bool, error) {
			label = l
			return true, nil
		}
		ok, err := s.ConfirmDeploy(context.Background(), plan)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, label, "rinkeby")
	})

	t.Run("select delegates to multi-select", func(t *testing.T) {
		s := NewSelectorAdapter(&config.RuntimeConfig{})
		s.runSelect = func(names []string, _ string) ([]string, error) {
			return names[:1], nil
		}
		got, err := s.SelectComponents(context.Background(), []string{"supply", "transfer"})
		require.NoError(t, err)
		assert.Equal(t, []string{"supply"}, got)
	})
}
