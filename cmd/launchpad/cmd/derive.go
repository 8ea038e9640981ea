package cmd

import (
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/ui/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDeriveCmd(a *app) *cobra.Command {
	var (
		gross    string
		ratioBps uint64
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Show the reserves a launch would start with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.cfg.ToCurveConfig()
			if err != nil {
				return err
			}
			amount, err := curve.ParseUnits(gross, curve.DefaultDecimals)
			if err != nil {
				return err
			}
			lr, err := curve.DeriveLaunchReserves(cfg.TotalSupply, ratioBps, amount, cfg)
			if err != nil {
				return err
			}
			a.logger.Debug("Reserves derived",
				zap.String("gross", amount.Dec()),
				zap.Uint64("ratio_bps", ratioBps))
			return report.New(cmd.OutOrStdout()).Reserves(amount, ratioBps, lr, cfg.Decimals)
		},
	}
	cmd.Flags().StringVar(&gross, "gross", "5", "gross ETH raised before the curve sells out")
	cmd.Flags().Uint64Var(&ratioBps, "ratio-bps", 1000, "share of supply reserved for the AMM, in fee-denominator parts")
	return cmd
}
