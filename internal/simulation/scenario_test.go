package simulation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const scenarioYAML = `
name: Scripted
symbol: SCR
gross: "5"
ratio_bps: 1000
workers: 2
trades:
  - trader: alice
    buy: "1"
  - trader: bob
    buy: "0.5"
    sell_bps: 5000
  - trader: ""
    buy: "1"
  - trader: carol
    buy: "lots"
  - trader: dave
    buy: "1"
    sell_bps: 20000
`

func TestScenarioParse(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	plan, err := NewScenarioLoader(zap.New(core)).Parse([]byte(scenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "Scripted", plan.Name)
	assert.Equal(t, 2, plan.Workers)
	require.Len(t, plan.Trades, 2)
	assert.Equal(t, "alice", plan.Trades[0].Trader)
	assert.Equal(t, ether(1), plan.Trades[0].Amount)
	assert.Equal(t, uint64(5000), plan.Trades[1].SellBps)
	assert.Equal(t, 3, logs.Len())
}

func TestScenarioWithoutTrades(t *testing.T) {
	_, err := NewScenarioLoader(zap.NewNop()).Parse([]byte("name: Empty\n"))
	assert.ErrorIs(t, err, ErrNoTrades)

	_, err = NewScenarioLoader(zap.NewNop()).Parse([]byte("claim_to: nowhere\ntrades:\n  - trader: a\n    buy: \"1\"\n"))
	assert.ErrorContains(t, err, "claim_to")
}

func TestRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o600))
	plan, err := NewScenarioLoader(zap.NewNop()).Load(path)
	require.NoError(t, err)

	r := newRunner(t, "")
	rep, err := r.Run(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, rep.Trades, 2)
	assert.Equal(t, Participant("alice"), rep.Trades[0].Task.Trader)
	assert.Equal(t, Participant("bob"), rep.Trades[1].Task.Trader)
	for _, out := range rep.Trades {
		require.NoError(t, out.Err)
	}
	assert.NotNil(t, rep.Trades[1].Sold)
	assert.Nil(t, rep.Trades[0].Sold)
	assert.False(t, rep.State.IsCompleted)
}
