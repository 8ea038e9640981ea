package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparklineBlocks(t *testing.T) {
	s := NewSparkline(4)
	assert.Equal(t, "▁▁▁▁", s.Blocks())

	s.SetData([]float64{9, 1, 2, 3, 4})
	assert.Equal(t, "▁▃▅█", s.Blocks())
	assert.Equal(t, "↗", s.Trend())
	assert.InDelta(t, 300, s.ChangePercent(), 1e-9)

	s.AddDataPoint(1)
	assert.Equal(t, "↘", s.Trend())
	assert.Len(t, []rune(s.Blocks()), 4)

	assert.Equal(t, "▄▄", NewSparkline(4).SetData([]float64{2, 2}).Blocks())
}
