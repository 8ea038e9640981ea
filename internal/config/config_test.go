package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAMMDeadline, cfg.AMM.Deadline)
	assert.Equal(t, uint64(curve.LiquiditySlippageBps), cfg.AMM.SlippageBps)

	cc, err := cfg.ToCurveConfig()
	require.NoError(t, err)
	def := curve.DefaultConfig()
	assert.True(t, def.TotalSupply.Eq(cc.TotalSupply))
	assert.Equal(t, def.FeeRate, cc.FeeRate)
	assert.Equal(t, def.MigrationFee.String(), cc.MigrationFee.String())

	assert.Equal(t, common.HexToAddress(DefaultWETH), common.HexToAddress(cfg.AMM.WETH))
	assert.NotEqual(t, common.Address{}, cfg.FactoryAddress())
	assert.NotEqual(t, cfg.OwnerAddress(), cfg.FactoryAddress())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
owner: "0x00000000000000000000000000000000000000b2"
curve:
  fee_rate: 50
  total_supply: "2000000000000000000000000000"
amm:
  deadline: 2m
`), 0o600))

	t.Setenv("LAUNCHPAD_CURVE_DECIMALS", "9")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), cfg.Curve.FeeRate)
	assert.Equal(t, uint8(9), cfg.Curve.Decimals)
	assert.Equal(t, 2*time.Minute, cfg.AMM.Deadline)
	assert.Equal(t, common.HexToAddress("0xb2"), cfg.OwnerAddress())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"fee above denominator", "curve:\n  fee_rate: 10000\n"},
		{"migration fee of one", "curve:\n  migration_fee_wad: \"1000000000000000000\"\n"},
		{"bad supply", "curve:\n  total_supply: \"lots\"\n"},
		{"zero owner", "owner: \"0x0000000000000000000000000000000000000000\"\n"},
		{"slippage", "amm:\n  slippage_bps: 10000\n"},
		{"router", "amm:\n  router: \"uniswap\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
