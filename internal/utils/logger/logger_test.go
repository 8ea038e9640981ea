package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.log")
	log, err := New(&Config{LogFile: path, MaxSize: 1, Quiet: true})
	require.NoError(t, err)

	log.WithToken(common.HexToAddress("0x01")).Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"token":"0x0000000000000000000000000000000000000001"`)
}

func TestAmountField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("buy", Amount("value", uint256.NewInt(1_500_000_000_000_000_000), 18))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	value, ok := fields["value"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1500000000000000000", value["raw"])
	assert.Equal(t, "1.5", value["units"])
}
