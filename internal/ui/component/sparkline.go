package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/launchpad/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline draws a series as a single line of block characters. Only the
// most recent width points are kept.
type Sparkline struct {
	data  []float64
	width int
	style lipgloss.Style
}

func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		width: width,
		style: lipgloss.NewStyle().Foreground(style.DefaultPalette().Primary),
	}
}

// SetData replaces the series, keeping the tail that fits.
func (s *Sparkline) SetData(data []float64) *Sparkline {
	if len(data) > s.width {
		data = data[len(data)-s.width:]
	}
	s.data = append(s.data[:0], data...)
	return s
}

// AddDataPoint appends one value to the series.
func (s *Sparkline) AddDataPoint(value float64) *Sparkline {
	s.data = append(s.data, value)
	if len(s.data) > s.width {
		s.data = s.data[len(s.data)-s.width:]
	}
	return s
}

// Trend compares the last point with the first.
func (s *Sparkline) Trend() string {
	if len(s.data) < 2 {
		return "→"
	}
	first, last := s.data[0], s.data[len(s.data)-1]
	switch {
	case last > first:
		return "↗"
	case last < first:
		return "↘"
	default:
		return "→"
	}
}

// ChangePercent is the relative change from the first to the last point.
func (s *Sparkline) ChangePercent() float64 {
	if len(s.data) < 2 || s.data[0] == 0 {
		return 0
	}
	first := s.data[0]
	return (s.data[len(s.data)-1] - first) / first * 100
}

func (s *Sparkline) View() string {
	return s.style.Render(s.blocks())
}

// Blocks renders the series without styling.
func (s *Sparkline) Blocks() string {
	return s.blocks()
}

func (s *Sparkline) blocks() string {
	if len(s.data) == 0 {
		return strings.Repeat(string(sparkChars[0]), s.width)
	}

	lo, hi := s.data[0], s.data[0]
	for _, v := range s.data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		return strings.Repeat(string(sparkChars[3]), len(s.data))
	}

	var b strings.Builder
	for _, v := range s.data {
		idx := int((v - lo) / (hi - lo) * float64(len(sparkChars)-1))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}
