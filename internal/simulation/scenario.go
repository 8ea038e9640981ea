package simulation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrNoTrades = errors.New("no valid trades in scenario")

// ScenarioFile is the YAML layout of a scripted simulation.
type ScenarioFile struct {
	Name       string `yaml:"name"`
	Symbol     string `yaml:"symbol"`
	Gross      string `yaml:"gross"`
	RatioBps   uint64 `yaml:"ratio_bps"`
	CreatorBuy string `yaml:"creator_buy"`
	Workers    int    `yaml:"workers"`
	ClaimTo    string `yaml:"claim_to"`
	Trades     []struct {
		Trader  string `yaml:"trader"`
		Buy     string `yaml:"buy"`
		SellBps uint64 `yaml:"sell_bps"`
	} `yaml:"trades"`
}

// ScenarioLoader turns scenario files into plans.
type ScenarioLoader struct {
	logger *zap.Logger
}

func NewScenarioLoader(logger *zap.Logger) *ScenarioLoader {
	return &ScenarioLoader{logger: logger}
}

// Load reads a scenario from path. Malformed trades are skipped with a
// warning; a scenario without any valid trade is an error.
func (l *ScenarioLoader) Load(path string) (Plan, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read scenario: %w", err)
	}
	return l.Parse(data)
}

func (l *ScenarioLoader) Parse(data []byte) (Plan, error) {
	var file ScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Plan{}, fmt.Errorf("failed to parse scenario: %w", err)
	}

	plan := Plan{
		Name:            file.Name,
		Symbol:          file.Symbol,
		InitialRatioBps: file.RatioBps,
		Workers:         file.Workers,
	}
	if plan.Name == "" {
		plan.Name = "Scenario"
	}
	if plan.Symbol == "" {
		plan.Symbol = "SCN"
	}
	if plan.InitialRatioBps == 0 {
		plan.InitialRatioBps = 1000
	}

	gross := file.Gross
	if gross == "" {
		gross = "5"
	}
	var err error
	if plan.InitialAmmEth, err = curve.ParseUnits(gross, curve.DefaultDecimals); err != nil {
		return Plan{}, fmt.Errorf("gross: %w", err)
	}
	if file.CreatorBuy != "" {
		if plan.CreatorBuy, err = curve.ParseUnits(file.CreatorBuy, curve.DefaultDecimals); err != nil {
			return Plan{}, fmt.Errorf("creator_buy: %w", err)
		}
	}
	if file.ClaimTo != "" {
		if !common.IsHexAddress(file.ClaimTo) {
			return Plan{}, fmt.Errorf("claim_to: invalid address %q", file.ClaimTo)
		}
		plan.ClaimTo = common.HexToAddress(file.ClaimTo)
	}

	for i, t := range file.Trades {
		var (
			amount   *uint256.Int
			parseErr error
		)
		if t.Buy != "" {
			amount, parseErr = curve.ParseUnits(t.Buy, curve.DefaultDecimals)
		}
		switch {
		case t.Trader == "":
			l.logger.Warn("Skipping trade without trader", zap.Int("index", i))
			continue
		case parseErr != nil || amount == nil || amount.IsZero():
			l.logger.Warn("Skipping trade with invalid amount",
				zap.String("trader", t.Trader), zap.String("buy", t.Buy), zap.Error(parseErr))
			continue
		case t.SellBps > 10_000:
			l.logger.Warn("Skipping trade with sell share above 100%",
				zap.String("trader", t.Trader), zap.Uint64("sell_bps", t.SellBps))
			continue
		}
		plan.Trades = append(plan.Trades, TradeSpec{Trader: t.Trader, Amount: amount, SellBps: t.SellBps})
	}
	if len(plan.Trades) == 0 {
		return Plan{}, ErrNoTrades
	}

	l.logger.Info("Loaded scenario", zap.String("name", plan.Name), zap.Int("trades", len(plan.Trades)))
	return plan, nil
}
