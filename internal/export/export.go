package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

var ErrNothingToExport = errors.New("no notifications match the export criteria")

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format      ExportFormat
	TypeFilter  string // e.g. tokens.purchased
	TokenFilter string // token address, as stored
	FromSeq     uint64
	OutputDir   string
}

// NotificationExporter writes journal entries to files.
type NotificationExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationExporter creates a new exporter
func NewNotificationExporter(logger *zap.Logger) *NotificationExporter {
	return &NotificationExporter{
		logger: logger,
		now:    time.Now,
	}
}

// Export writes the notifications matching options and returns the file path.
func (ne *NotificationExporter) Export(notes []*models.Notification, options ExportOptions) (string, error) {
	filtered := filterNotifications(notes, options)
	if len(filtered) == 0 {
		return "", ErrNothingToExport
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Seq < filtered[j].Seq
	})

	outputPath := filepath.Join(options.OutputDir, ne.filename(options))
	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = ne.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	ne.logger.Info("Notifications exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))
	return outputPath, nil
}

func filterNotifications(notes []*models.Notification, options ExportOptions) []*models.Notification {
	var filtered []*models.Notification
	for _, n := range notes {
		if n.Seq < options.FromSeq {
			continue
		}
		if options.TypeFilter != "" && n.Type != options.TypeFilter {
			continue
		}
		if options.TokenFilter != "" && n.Token != options.TokenFilter {
			continue
		}
		filtered = append(filtered, n)
	}
	return filtered
}

func (ne *NotificationExporter) filename(options ExportOptions) string {
	prefix := "notifications_all"
	if options.TypeFilter != "" {
		prefix = "notifications_" + options.TypeFilter
	}
	if len(options.TokenFilter) >= 10 {
		prefix += "_" + options.TokenFilter[:10]
	}
	return fmt.Sprintf("%s_%s.%s", prefix, ne.now().Format("20060102_150405"), options.Format)
}

// attributeKeys returns the union of attribute names, sorted.
func attributeKeys(notes []*models.Notification) []string {
	set := make(map[string]struct{})
	for _, n := range notes {
		for k := range n.Attributes {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func exportToCSV(notes []*models.Notification, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	keys := attributeKeys(notes)
	if err := writer.Write(append([]string{"seq", "type", "token", "time"}, keys...)); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, n := range notes {
		row := []string{strconv.FormatUint(n.Seq, 10), n.Type, n.Token, n.Time.UTC().Format(time.RFC3339Nano)}
		for _, k := range keys {
			row = append(row, n.Attributes[k])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write notification %d: %w", n.Seq, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportSummary contains summary statistics for exported notifications
type ExportSummary struct {
	Count        int            `json:"count"`
	FirstSeq     uint64         `json:"first_seq"`
	LastSeq      uint64         `json:"last_seq"`
	ByType       map[string]int `json:"by_type"`
	UniqueTokens int            `json:"unique_tokens"`
}

func summarize(notes []*models.Notification) ExportSummary {
	summary := ExportSummary{
		Count:  len(notes),
		ByType: make(map[string]int),
	}
	if len(notes) == 0 {
		return summary
	}
	summary.FirstSeq = notes[0].Seq
	summary.LastSeq = notes[len(notes)-1].Seq

	tokens := make(map[string]bool)
	for _, n := range notes {
		summary.ByType[n.Type]++
		if n.Token != "" {
			tokens[n.Token] = true
		}
	}
	summary.UniqueTokens = len(tokens)
	return summary
}

func (ne *NotificationExporter) exportToJSON(notes []*models.Notification, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime    time.Time              `json:"export_time"`
		Summary       ExportSummary          `json:"summary"`
		Notifications []*models.Notification `json:"notifications"`
	}{
		ExportTime:    ne.now().UTC(),
		Summary:       summarize(notes),
		Notifications: notes,
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
