package cmd

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/simulation"
	"github.com/rovshanmuradov/launchpad/internal/ui/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		name, symbol  string
		gross, buy    string
		creatorBuy    string
		claimTo       string
		scenario      string
		ratioBps      uint64
		sellBps       uint64
		buyers, works int
		showMetrics   bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Launch a token and let concurrent buyers trade it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if scenario != "" {
				plan, err := simulation.NewScenarioLoader(a.logger.Logger).Load(scenario)
				if err != nil {
					return err
				}
				return runPlan(cmd, a, plan, showMetrics)
			}

			plan := simulation.Plan{
				Name:            name,
				Symbol:          symbol,
				InitialRatioBps: ratioBps,
				Buyers:          buyers,
				Workers:         works,
				SellBps:         sellBps,
			}
			var err error
			if plan.InitialAmmEth, err = curve.ParseUnits(gross, curve.DefaultDecimals); err != nil {
				return err
			}
			if plan.BuyAmount, err = curve.ParseUnits(buy, curve.DefaultDecimals); err != nil {
				return err
			}
			if creatorBuy != "" {
				if plan.CreatorBuy, err = curve.ParseUnits(creatorBuy, curve.DefaultDecimals); err != nil {
					return err
				}
			}
			if claimTo != "" {
				if !common.IsHexAddress(claimTo) {
					return errInvalidAddress(claimTo)
				}
				plan.ClaimTo = common.HexToAddress(claimTo)
			}
			return runPlan(cmd, a, plan, showMetrics)
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "Simulated", "token name")
	f.StringVar(&symbol, "symbol", "SIM", "token symbol")
	f.StringVar(&gross, "gross", "5", "gross ETH raised before the curve sells out")
	f.Uint64Var(&ratioBps, "ratio-bps", 1000, "share of supply reserved for the AMM")
	f.StringVar(&creatorBuy, "creator-buy", "", "ETH the creator spends at launch")
	f.IntVar(&buyers, "buyers", 8, "number of buyers")
	f.IntVar(&works, "workers", 4, "concurrent workers")
	f.StringVar(&buy, "buy", "1", "ETH each buyer spends")
	f.Uint64Var(&sellBps, "sell-bps", 0, "share of each purchase sold back right away, in bps")
	f.BoolVar(&showMetrics, "metrics", false, "print Prometheus metrics after the report")
	f.StringVar(&claimTo, "claim-to", "", "claim the accrued fee to this address at the end")
	f.StringVar(&scenario, "scenario", "", "YAML file with scripted trades; replaces the wave flags")
	return cmd
}

func runPlan(cmd *cobra.Command, a *app, plan simulation.Plan, showMetrics bool) error {
	ctx := cmd.Context()
	log := a.logger.WithComponent("simulate")

	runner, err := simulation.NewRunner(ctx, a.cfg, a.logger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(ctx); err != nil {
			log.Warn("Shutdown incomplete", zap.Error(err))
		}
	}()

	done := a.logger.TrackPerformance("simulate")
	rep, err := runner.Run(ctx, plan)
	done()
	if err != nil {
		a.logger.LogError("Simulation failed", err, zap.String("plan", plan.Name))
		return err
	}
	a.logger.WithToken(rep.Token).Info("Simulation finished",
		zap.Int("trades", len(rep.Trades)),
		zap.Int("notifications", len(rep.Notifications)),
		zap.Bool("migrated", rep.State.LiquidityMigrated))
	if err := report.New(cmd.OutOrStdout()).Simulation(rep); err != nil {
		return err
	}
	if showMetrics {
		return runner.Metrics().WriteText(cmd.OutOrStdout())
	}
	return nil
}
