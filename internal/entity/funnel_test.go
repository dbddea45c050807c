package entity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFunnelPartitionsEveryStatus(t *testing.T) {
	f := DefaultFunnel()
	require.Len(t, f.Stages(), 5)

	for _, s := range AllStatuses() {
		owners := 0
		for _, st := range f.Stages() {
			if st.Accepts(s) {
				owners++
			}
		}
		assert.Equal(t, 1, owners, "status %s deve pertencer a uma única etapa", s)
	}
}

func TestDefaultFunnelFaltouAcceptsNoShowAndLost(t *testing.T) {
	stage, ok := DefaultFunnel().Stage("faltou")
	require.True(t, ok)

	assert.Equal(t, "Faltou", stage.Title)
	assert.Equal(t, StatusNoShow, stage.Canonical())
	assert.True(t, stage.Accepts(StatusLost))

	byStatus, ok := DefaultFunnel().StageOf(StatusLost)
	require.True(t, ok)
	assert.Equal(t, "faltou", byStatus.ID)
}

func TestParseFunnelRejectsOverlap(t *testing.T) {
	data := []byte(`
stages:
  - {id: a, title: A, statuses: [new, qualifying]}
  - {id: b, title: B, statuses: [qualifying, scheduled, attended, noshow, won, lost]}
`)
	_, err := ParseFunnel(data)
	assert.ErrorIs(t, err, ErrInvalidFunnel)
}

func TestParseFunnelRejectsGap(t *testing.T) {
	data := []byte(`
stages:
  - {id: a, title: A, statuses: [new, qualifying, scheduled]}
  - {id: b, title: B, statuses: [attended, noshow, won]}
`)
	_, err := ParseFunnel(data)
	assert.ErrorIs(t, err, ErrInvalidFunnel)
	assert.Contains(t, err.Error(), "lost")
}

func TestParseFunnelRejectsUnknownStatusAndEmptyStage(t *testing.T) {
	_, err := NewFunnel([]FunnelStage{{ID: "x", Statuses: []Status{"archived"}}})
	assert.ErrorIs(t, err, ErrInvalidFunnel)

	_, err = NewFunnel([]FunnelStage{{ID: "x"}})
	assert.ErrorIs(t, err, ErrInvalidFunnel)
}

func TestDealsInStageKeepsOrder(t *testing.T) {
	deals := []Deal{
		{ID: "d1", Status: StatusNoShow},
		{ID: "d2", Status: StatusNew},
		{ID: "d3", Status: StatusLost},
	}

	got := DefaultFunnel().DealsInStage(deals, "faltou")
	require.Len(t, got, 2)
	assert.Equal(t, "d1", got[0].ID)
	assert.Equal(t, "d3", got[1].ID)

	assert.Empty(t, DefaultFunnel().DealsInStage(deals, "agendados"))
	assert.Nil(t, DefaultFunnel().DealsInStage(deals, "inexistente"))
}

func TestStagesReturnsCopy(t *testing.T) {
	f := DefaultFunnel()
	stages := f.Stages()
	stages[0].Statuses[0] = StatusLost

	first, _ := f.Stage(stages[0].ID)
	assert.Equal(t, StatusNew, first.Canonical())
}

func TestLoadFunnel(t *testing.T) {
	f, err := LoadFunnel("")
	require.NoError(t, err)
	assert.Same(t, DefaultFunnel(), f)

	path := filepath.Join(t.TempDir(), "funnel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stages:
  - {id: abertos, title: Abertos, statuses: [new, qualifying, scheduled]}
  - {id: fechados, title: Fechados, statuses: [attended, noshow, won, lost]}
`), 0o600))

	f, err = LoadFunnel(path)
	require.NoError(t, err)
	assert.Len(t, f.Stages(), 2)

	_, err = LoadFunnel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
