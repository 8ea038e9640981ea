// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"io"
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rovshanmuradov/launchpad/internal/events"
)

const namespace = "launchpad"

// Collector holds the launchpad metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	realEth    *prometheus.GaugeVec
	trades     *prometheus.CounterVec
	migrations *prometheus.CounterVec
	feeClaimed prometheus.Counter
}

// NewCollector creates a collector and registers its metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Mutating factory operations by outcome",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of factory operations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
		realEth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "curve_real_eth",
			Help:      "ETH held by each curve, in whole units",
		}, []string{"token"}),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Committed curve trades",
		}, []string{"side"}),
		migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "Liquidity deposits into the AMM",
		}, []string{"token"}),
		feeClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_claimed_eth_total",
			Help:      "Protocol fee paid out, in whole units",
		}),
	}
	c.registry.MustRegister(c.operations, c.duration, c.realEth, c.trades, c.migrations, c.feeClaimed)
	return c
}

// Registry exposes the registry for scraping.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// WriteText writes every metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// ObserveOperation records one factory operation.
func (c *Collector) ObserveOperation(op string, d time.Duration, err error) {
	status := "success"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "cancelled"
	case err != nil:
		status = "failed"
	}
	c.operations.WithLabelValues(op, status).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())
}

// Handle implements events.Handler.
func (c *Collector) Handle(_ context.Context, e events.Event) error {
	switch ev := e.(type) {
	case *events.TokenLaunchedEvent:
		c.realEth.WithLabelValues(ev.Token.Hex()).Set(ethFloat(ev.RealEth))
	case *events.TokensPurchasedEvent:
		c.trades.WithLabelValues("buy").Inc()
		c.realEth.WithLabelValues(ev.Token.Hex()).Set(ethFloat(ev.RealEth))
	case *events.TokensSoldEvent:
		c.trades.WithLabelValues("sell").Inc()
		c.realEth.WithLabelValues(ev.Token.Hex()).Set(ethFloat(ev.RealEth))
	case *events.LiquiditySwappedEvent:
		c.migrations.WithLabelValues(ev.Token.Hex()).Inc()
	case *events.FeeClaimedEvent:
		c.feeClaimed.Add(ethFloat(ev.Amount))
	}
	return nil
}

var weiPerEth = new(big.Float).SetInt64(1e18)

func ethFloat(v *uint256.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v.ToBig()), weiPerEth).Float64()
	return f
}
