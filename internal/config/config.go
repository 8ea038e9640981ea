// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/spf13/viper"
)

type Config struct {
	Owner       string      `mapstructure:"owner"`
	JournalPath string      `mapstructure:"journal_path"`
	EventBuffer int         `mapstructure:"event_buffer"`
	Curve       CurveConfig `mapstructure:"curve"`
	AMM         AMMConfig   `mapstructure:"amm"`
	Log         LogConfig   `mapstructure:"log"`
}

// CurveConfig holds amounts as decimal strings so values above 2^64 survive
// YAML and env parsing.
type CurveConfig struct {
	TotalSupply     string `mapstructure:"total_supply"`
	FeeRate         uint64 `mapstructure:"fee_rate"`
	FeeDenominator  uint64 `mapstructure:"fee_denominator"`
	MigrationFeeWad string `mapstructure:"migration_fee_wad"`
	Decimals        uint8  `mapstructure:"decimals"`
}

type AMMConfig struct {
	Router      string        `mapstructure:"router"`
	Factory     string        `mapstructure:"factory"`
	WETH        string        `mapstructure:"weth"`
	Deadline    time.Duration `mapstructure:"deadline"`
	SlippageBps uint64        `mapstructure:"slippage_bps"`
}

type LogConfig struct {
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxBackups  int    `mapstructure:"max_backups"`
}

const (
	DefaultOwner         = "0x00000000000000000000000000000000000000a1"
	DefaultTotalSupply   = "1000000000000000000000000000"
	DefaultMigrationFee  = "50000000000000000"
	DefaultEventBuffer   = 256
	DefaultAMMRouter     = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	DefaultAMMFactory    = "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"
	DefaultWETH          = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	DefaultAMMDeadline   = 5 * time.Minute
	DefaultLogFile       = "logs/launchpad.log"
	DefaultLogMaxSize    = 10
	DefaultLogMaxAge     = 30
	DefaultLogMaxBackups = 5
	envPrefix            = "LAUNCHPAD"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"owner":                   DefaultOwner,
		"journal_path":            "",
		"event_buffer":            DefaultEventBuffer,
		"curve.total_supply":      DefaultTotalSupply,
		"curve.fee_rate":          curve.DefaultFeeRate,
		"curve.fee_denominator":   curve.BpsDenominator,
		"curve.migration_fee_wad": DefaultMigrationFee,
		"curve.decimals":          curve.DefaultDecimals,
		"amm.router":              DefaultAMMRouter,
		"amm.factory":             DefaultAMMFactory,
		"amm.weth":                DefaultWETH,
		"amm.deadline":            DefaultAMMDeadline,
		"amm.slippage_bps":        curve.LiquiditySlippageBps,
		"log.file":                DefaultLogFile,
		"log.development":         false,
		"log.max_size":            DefaultLogMaxSize,
		"log.max_age":             DefaultLogMaxAge,
		"log.max_backups":         DefaultLogMaxBackups,
	}
}

// LoadConfig reads path, if given, over the defaults and applies LAUNCHPAD_*
// environment overrides, e.g. LAUNCHPAD_CURVE_FEE_RATE.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if !common.IsHexAddress(cfg.Owner) {
		return fmt.Errorf("invalid owner address %q", cfg.Owner)
	}
	if common.HexToAddress(cfg.Owner) == (common.Address{}) {
		return errors.New("owner must not be the zero address")
	}
	for key, addr := range map[string]string{
		"amm.router":  cfg.AMM.Router,
		"amm.factory": cfg.AMM.Factory,
		"amm.weth":    cfg.AMM.WETH,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address %q", key, addr)
		}
	}
	if cfg.EventBuffer <= 0 {
		return errors.New("invalid event_buffer")
	}
	if cfg.AMM.Deadline <= 0 {
		return errors.New("invalid amm.deadline")
	}
	if cfg.AMM.SlippageBps >= curve.BpsDenominator {
		return errors.New("amm.slippage_bps must be below 10000")
	}
	if cfg.Log.MaxSize < 0 || cfg.Log.MaxAge < 0 || cfg.Log.MaxBackups < 0 {
		return errors.New("invalid log rotation settings")
	}

	cc, err := cfg.ToCurveConfig()
	if err != nil {
		return err
	}
	return cc.Validate()
}

// OwnerAddress returns the configured operator.
func (c *Config) OwnerAddress() common.Address {
	return common.HexToAddress(c.Owner)
}

// FactoryAddress is where the owner's first deployment lands.
func (c *Config) FactoryAddress() common.Address {
	return crypto.CreateAddress(c.OwnerAddress(), 0)
}

// ToCurveConfig converts the curve section into curve.Config.
func (c *Config) ToCurveConfig() (*curve.Config, error) {
	supply, err := uint256.FromDecimal(c.Curve.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("invalid curve.total_supply %q: %w", c.Curve.TotalSupply, err)
	}
	fee, err := uint256.FromDecimal(c.Curve.MigrationFeeWad)
	if err != nil {
		return nil, fmt.Errorf("invalid curve.migration_fee_wad %q: %w", c.Curve.MigrationFeeWad, err)
	}
	return &curve.Config{
		TotalSupply:    supply,
		FeeRate:        c.Curve.FeeRate,
		FeeDenominator: c.Curve.FeeDenominator,
		MigrationFee:   curve.NewWad(fee),
		Decimals:       c.Curve.Decimals,
	}, nil
}
