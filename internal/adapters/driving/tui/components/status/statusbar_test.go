package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ltmc/internal/adapters/driving/tui/keymap"
)

func TestBar_DefaultsToReady(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Equal(t, StateReady, bar.State())
	out := bar.View()
	assert.Contains(t, out, "Ready")
	assert.Contains(t, out, "enter: recall")
}

func TestBar_States(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	bar.SetState(StateRetrieving)
	assert.Contains(t, bar.View(), "Retrieving...")

	bar.SetState(StateResults)
	bar.SetResultCount(3)
	assert.Contains(t, bar.View(), "3 results")

	bar.SetState(StateError)
	bar.SetMessage("index unavailable")
	assert.Contains(t, bar.View(), "Error: index unavailable")

	bar.Clear()
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_SetBindings(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetWidth(120)

	bar.SetBindings(km.ResourcesHelp())

	assert.Contains(t, bar.View(), "d: delete")
}
