package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/config"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/simulation"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReserves(t *testing.T) {
	cfg := curve.DefaultConfig()
	gross, err := curve.ParseUnits("5", curve.DefaultDecimals)
	require.NoError(t, err)
	lr, err := curve.DeriveLaunchReserves(cfg.TotalSupply, 1000, gross, cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Reserves(gross, 1000, lr, cfg.Decimals))

	out := buf.String()
	assert.Contains(t, out, "Launch reserves")
	assert.Contains(t, out, "5 ETH")
	assert.Contains(t, out, "1000 bps")
	assert.Contains(t, out, curve.FormatUnits(lr.AmmTokenReserves, cfg.Decimals))
}

func TestSimulation(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	runner, err := simulation.NewRunner(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer runner.Close(context.Background())

	oneEth := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18))
	rep, err := runner.Run(context.Background(), simulation.Plan{
		Name:            "Render",
		Symbol:          "RND",
		InitialAmmEth:   new(uint256.Int).Mul(oneEth, uint256.NewInt(5)),
		InitialRatioBps: 1000,
		Buyers:          3,
		BuyAmount:       oneEth,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Simulation(rep))

	out := buf.String()
	assert.Contains(t, out, "Render (RND)")
	assert.Contains(t, out, "Trades")
	assert.Contains(t, out, "token.launched")
	assert.Contains(t, out, "4 notifications")
}

func TestConfig(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Config(cfg))
	assert.Contains(t, buf.String(), "(memory)")
	assert.Contains(t, buf.String(), cfg.FactoryAddress().Hex())
}

func TestJournal(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	require.NoError(t, r.Journal("/tmp/journal", nil))
	assert.Contains(t, buf.String(), "empty")

	buf.Reset()
	require.NoError(t, r.Journal("/tmp/journal", []*models.Notification{
		{Seq: 1, Type: "token.launched", Token: "0x00000000000000000000000000000000000000aa"},
		{Seq: 2, Type: "tokens.purchased", Token: "0x00000000000000000000000000000000000000aa"},
	}))
	out := buf.String()
	assert.Contains(t, out, "tokens.purchased")
	assert.Contains(t, out, "0x00000000")
}

func TestPricePath(t *testing.T) {
	notes := []*models.Notification{
		{Seq: 1, Type: "token.launched", Attributes: map[string]string{"virtual_eth": "10", "virtual_token": "100"}},
		{Seq: 2, Type: "tokens.purchased", Attributes: map[string]string{"virtual_eth": "20", "virtual_token": "50"}},
		{Seq: 3, Type: "fee.claimed", Attributes: map[string]string{"amount": "1"}},
		{Seq: 4, Type: "tokens.sold", Attributes: map[string]string{"virtual_eth": "x", "virtual_token": "50"}},
	}
	path := PricePath(notes)
	require.Len(t, path, 2)
	assert.InDelta(t, 0.1, path[0], 1e-12)
	assert.InDelta(t, 0.4, path[1], 1e-12)
}
