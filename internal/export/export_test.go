package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tokenA = "0x00000000000000000000000000000000000000aa"

func testNotifications() []*models.Notification {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []*models.Notification{
		{Seq: 2, Type: "tokens.purchased", Token: tokenA, Time: at.Add(time.Second), Attributes: map[string]string{"buyer": "0xb0b", "tokens_out": "10"}},
		{Seq: 1, Type: "token.launched", Token: tokenA, Time: at, Attributes: map[string]string{"name": "Alpha"}},
		{Seq: 3, Type: "fee.claimed", Time: at.Add(2 * time.Second), Attributes: map[string]string{"amount": "5"}},
	}
}

func newExporter() *NotificationExporter {
	ne := NewNotificationExporter(zap.NewNop())
	ne.now = func() time.Time { return time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC) }
	return ne
}

func TestExportCSV(t *testing.T) {
	path, err := newExporter().Export(testNotifications(), ExportOptions{
		Format:    FormatCSV,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Contains(t, path, "notifications_all_20240502_083000.csv")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"seq", "type", "token", "time", "amount", "buyer", "name", "tokens_out"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Alpha", rows[1][6])
	assert.Equal(t, "0xb0b", rows[2][5])
}

func TestExportJSONSummary(t *testing.T) {
	path, err := newExporter().Export(testNotifications(), ExportOptions{
		Format:    FormatJSON,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out struct {
		Summary       ExportSummary          `json:"summary"`
		Notifications []*models.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, 3, out.Summary.Count)
	assert.Equal(t, uint64(1), out.Summary.FirstSeq)
	assert.Equal(t, uint64(3), out.Summary.LastSeq)
	assert.Equal(t, 1, out.Summary.UniqueTokens)
	assert.Equal(t, 1, out.Summary.ByType["fee.claimed"])
	assert.Len(t, out.Notifications, 3)
}

func TestExportFilters(t *testing.T) {
	tests := []struct {
		name    string
		options ExportOptions
		want    int
	}{
		{"type", ExportOptions{TypeFilter: "tokens.purchased"}, 1},
		{"token", ExportOptions{TokenFilter: tokenA}, 2},
		{"from", ExportOptions{FromSeq: 2}, 2},
		{"none", ExportOptions{TypeFilter: "tokens.sold"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, filterNotifications(testNotifications(), tt.options), tt.want)
		})
	}

	_, err := newExporter().Export(testNotifications(), ExportOptions{
		Format:     FormatCSV,
		TypeFilter: "tokens.sold",
		OutputDir:  t.TempDir(),
	})
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := newExporter().Export(testNotifications(), ExportOptions{
		Format:    "xml",
		OutputDir: t.TempDir(),
	})
	assert.Error(t, err)
}
