package cmd

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/launchpad/internal/export"
	"github.com/rovshanmuradov/launchpad/internal/storage/leveldb"
	"github.com/rovshanmuradov/launchpad/internal/ui/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoJournal = errors.New("no journal path: set journal_path or pass --path")

func newJournalCmd(a *app) *cobra.Command {
	var (
		path    string
		opts    export.ExportOptions
		format  string
		fromSeq uint64
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show or export a persisted notification journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = a.cfg.JournalPath
			}
			if path == "" {
				return errNoJournal
			}
			log := a.logger.WithComponent("journal")

			store, err := leveldb.Open(path, a.logger.Logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.Warn("Failed to close journal", zap.Error(err))
				}
			}()

			notes, err := store.List(cmd.Context(), fromSeq, 0)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if format == "" {
				return report.New(cmd.OutOrStdout()).Journal(path, notes)
			}

			opts.Format = export.ExportFormat(format)
			opts.FromSeq = fromSeq
			file, err := export.NewNotificationExporter(log).Export(notes, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&path, "path", "", "journal directory (defaults to journal_path)")
	f.StringVar(&format, "format", "", "export format: csv or json (prints a table when empty)")
	f.StringVar(&opts.TypeFilter, "type", "", "only export this notification type")
	f.StringVar(&opts.TokenFilter, "token", "", "only export notifications for this token")
	f.Uint64Var(&fromSeq, "from", 1, "first sequence number")
	f.StringVar(&opts.OutputDir, "out", "exports", "output directory")
	return cmd
}
