// Package report renders launchpad results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/holiman/uint256"
	"github.com/rovshanmuradov/launchpad/internal/config"
	"github.com/rovshanmuradov/launchpad/internal/dex/curve"
	"github.com/rovshanmuradov/launchpad/internal/ledger"
	"github.com/rovshanmuradov/launchpad/internal/simulation"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/internal/ui/component"
	"github.com/rovshanmuradov/launchpad/internal/ui/style"
	"github.com/shopspring/decimal"
)

// Renderer writes reports to an output stream.
type Renderer struct {
	w      io.Writer
	styles style.Styles
}

func New(w io.Writer) *Renderer {
	return &Renderer{w: w, styles: style.NewStyles(style.DefaultPalette())}
}

func eth(v *uint256.Int) string {
	return curve.FormatUnits(v, curve.DefaultDecimals) + " ETH"
}

func (r *Renderer) kv(b *strings.Builder, label, value string) {
	b.WriteString(r.styles.Label.Render(label))
	b.WriteString(r.styles.Value.Render(value))
	b.WriteString("\n")
}

func (r *Renderer) flush(b *strings.Builder) error {
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Reserves prints the reserves a launch would start with.
func (r *Renderer) Reserves(gross *uint256.Int, ratioBps uint64, lr *curve.LaunchReserves, decimals uint8) error {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Launch reserves"))
	b.WriteString("\n")
	r.kv(&b, "Target raise", eth(gross))
	r.kv(&b, "AMM ratio", fmt.Sprintf("%d bps", ratioBps))
	r.kv(&b, "Virtual ETH", eth(lr.VirtualEth))
	r.kv(&b, "Virtual token", curve.FormatUnits(lr.VirtualToken, decimals))
	r.kv(&b, "Curve inventory", curve.FormatUnits(lr.RealToken, decimals))
	r.kv(&b, "AMM bucket", curve.FormatUnits(lr.AmmTokenReserves, decimals))
	r.kv(&b, "Net raise", eth(lr.NetRaise))
	r.kv(&b, "AMM base raise", eth(lr.BaseRaise))
	if price, err := curve.SpotPrice(lr.VirtualEth, lr.VirtualToken); err == nil {
		r.kv(&b, "Start price", price.String())
	}
	return r.flush(&b)
}

// State prints one token's reserve record.
func (r *Renderer) State(st *ledger.TokenState) error {
	var b strings.Builder
	r.state(&b, st)
	return r.flush(&b)
}

func (r *Renderer) state(b *strings.Builder, st *ledger.TokenState) {
	b.WriteString(r.styles.Section.Render(fmt.Sprintf("%s (%s)", st.Name, st.Symbol)))
	b.WriteString("\n")
	r.kv(b, "Token", st.Token.Hex())
	r.kv(b, "Creator", st.Creator.Hex())
	r.kv(b, "Virtual ETH", eth(st.VirtualEth))
	r.kv(b, "Virtual token", curve.FormatUnits(st.VirtualToken, st.Decimals))
	r.kv(b, "Real ETH", eth(st.RealEth))
	r.kv(b, "Real token", curve.FormatUnits(st.RealToken, st.Decimals))
	r.kv(b, "AMM bucket", curve.FormatUnits(st.AmmTokenReserves, st.Decimals))
	r.kv(b, "Migration fee", eth(st.MigrationFee))

	status := r.styles.Muted.Render("trading")
	switch {
	case st.LiquidityMigrated:
		status = r.styles.Good.Render("migrated")
	case st.IsCompleted:
		status = r.styles.Bad.Render("completed, migration pending")
	}
	r.kv(b, "Status", status)
}

// Simulation prints the outcome of a simulated launch.
func (r *Renderer) Simulation(rep *simulation.Report) error {
	decimals := rep.State.Decimals
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Simulation"))
	b.WriteString("\n")
	r.state(&b, rep.State)

	b.WriteString(r.styles.Section.Render("Trades"))
	b.WriteString("\n")
	trades := component.NewTable().
		AddColumn("#", 0, lipgloss.Right).
		AddColumn("Trader", 0, lipgloss.Left).
		AddColumn("Paid", 0, lipgloss.Right).
		AddColumn("Tokens", 0, lipgloss.Right).
		AddColumn("Sold for", 0, lipgloss.Right).
		AddColumn("Result", 0, lipgloss.Left)
	for _, out := range rep.Trades {
		paid, tokens, sold, result := "-", "-", "-", "ok"
		if out.Bought != nil {
			paid = curve.FormatUnits(out.Bought.GrossPaid, curve.DefaultDecimals)
			tokens = curve.FormatUnits(out.Bought.TokensOut, decimals)
			if out.Completed {
				result = "sold out"
			}
		}
		if out.Sold != nil {
			sold = curve.FormatUnits(out.Sold.NetEthOut, curve.DefaultDecimals)
		}
		row := []string{fmt.Sprint(out.Task.ID), out.Task.Trader.Hex()[:10], paid, tokens, sold, result}
		if out.Err != nil {
			row[5] = out.Err.Error()
			trades.AddStyledRow(r.styles.Bad, row...)
			continue
		}
		trades.AddRow(row...)
	}
	b.WriteString(trades.View())
	b.WriteString("\n")

	b.WriteString(r.styles.Section.Render("Accounts"))
	b.WriteString("\n")
	r.kv(&b, "Factory balance", eth(rep.FactoryBalance))
	r.kv(&b, "Unclaimed fee", eth(rep.TotalFee))
	if rep.Claimed != nil {
		r.kv(&b, "Fee claimed", eth(rep.Claimed))
	}
	if rep.PairETH != nil {
		r.kv(&b, "AMM pair", rep.Pair.Hex())
		r.kv(&b, "Pair reserves", fmt.Sprintf("%s / %s",
			curve.FormatUnits(rep.PairToken, decimals), eth(rep.PairETH)))
	}

	b.WriteString(r.styles.Section.Render("Notifications"))
	b.WriteString("\n")
	if path := PricePath(rep.Notifications); len(path) > 1 {
		spark := component.NewSparkline(48).SetData(path)
		r.kv(&b, "Spot price", fmt.Sprintf("%s %s %+.1f%%", spark.View(), spark.Trend(), spark.ChangePercent()))
	}
	r.notifications(&b, rep.Notifications)
	b.WriteString(r.styles.Muted.Render(fmt.Sprintf("%d notifications, %d dropped by the bus, %s",
		len(rep.Notifications), rep.Bus.Dropped, rep.Duration.Round(time.Millisecond))))
	b.WriteString("\n")
	return r.flush(&b)
}

func (r *Renderer) notifications(b *strings.Builder, list []*models.Notification) {
	notes := component.NewTable().
		AddColumn("Seq", 0, lipgloss.Right).
		AddColumn("Type", 0, lipgloss.Left).
		AddColumn("Token", 0, lipgloss.Left)
	for _, n := range list {
		tok := n.Token
		if len(tok) > 10 {
			tok = tok[:10]
		}
		notes.AddRow(fmt.Sprint(n.Seq), n.Type, tok)
	}
	b.WriteString(notes.View())
	b.WriteString("\n")
}

// PricePath extracts the curve spot price, virtual ETH over virtual tokens,
// after each notification that carries reserves.
func PricePath(list []*models.Notification) []float64 {
	var path []float64
	for _, n := range list {
		ve, vt := n.Attributes["virtual_eth"], n.Attributes["virtual_token"]
		if ve == "" || vt == "" {
			continue
		}
		eth, err := decimal.NewFromString(ve)
		if err != nil {
			continue
		}
		tokens, err := decimal.NewFromString(vt)
		if err != nil || tokens.IsZero() {
			continue
		}
		price, _ := eth.Div(tokens).Float64()
		path = append(path, price)
	}
	return path
}

// Journal prints notifications read back from a journal.
func (r *Renderer) Journal(path string, list []*models.Notification) error {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Journal"))
	b.WriteString("\n")
	r.kv(&b, "Path", path)
	r.kv(&b, "Entries", fmt.Sprint(len(list)))
	if len(list) == 0 {
		b.WriteString(r.styles.Muted.Render("empty"))
		b.WriteString("\n")
		return r.flush(&b)
	}
	r.notifications(&b, list)
	return r.flush(&b)
}

// Config prints the effective configuration.
func (r *Renderer) Config(cfg *config.Config) error {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Configuration"))
	b.WriteString("\n")
	r.kv(&b, "Owner", cfg.OwnerAddress().Hex())
	r.kv(&b, "Factory", cfg.FactoryAddress().Hex())
	r.kv(&b, "Total supply", cfg.Curve.TotalSupply)
	r.kv(&b, "Decimals", fmt.Sprint(cfg.Curve.Decimals))
	r.kv(&b, "Trade fee", fmt.Sprintf("%d / %d", cfg.Curve.FeeRate, cfg.Curve.FeeDenominator))
	r.kv(&b, "Migration fee (wad)", cfg.Curve.MigrationFeeWad)
	r.kv(&b, "AMM router", cfg.AMM.Router)
	r.kv(&b, "AMM deadline", cfg.AMM.Deadline.String())
	r.kv(&b, "AMM slippage", fmt.Sprintf("%d bps", cfg.AMM.SlippageBps))
	journal := cfg.JournalPath
	if journal == "" {
		journal = "(memory)"
	}
	r.kv(&b, "Journal", journal)
	r.kv(&b, "Log file", cfg.Log.File)
	return r.flush(&b)
}
