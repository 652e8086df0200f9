package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var exportCmd = LeafCommand{
	Use:   "export",
	Short: "Export study data as JSON (for AI analysis), CSV or a PDF report",
	StrFlags: []StringFlag{
		{Name: "format", Usage: "json, csv or pdf", Default: "json"},
		{Name: "output", Usage: "output file (default stdout; pdf defaults to study-report-<from>_<to>.pdf)"},
		{Name: "from", Usage: "first day of the pdf report (YYYY-MM-DD, default first of this month)"},
		{Name: "to", Usage: "last day of the pdf report (YYYY-MM-DD, default today)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		return withApp(func(a *app.App) error {
			return runExport(cmd, a, format, output, from, to)
		})
	},
}.Build()

func runExport(cmd *cobra.Command, a *app.App, format, output, fromFlag, toFlag string) error {
	switch format {
	case "json":
		return writeExport(cmd, output, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(a.ExportForAI())
		})
	case "csv":
		return writeExport(cmd, output, a.ExportCSV)
	case "pdf":
		return exportPDF(cmd, a, output, fromFlag, toFlag)
	default:
		return fmt.Errorf("unsupported export format %q (supported: json, csv, pdf)", format)
	}
}

// writeExport streams to stdout, or to output when set.
func writeExport(cmd *cobra.Command, output string, write func(io.Writer) error) error {
	if output == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
	return nil
}

func exportPDF(cmd *cobra.Command, a *app.App, output, fromFlag, toFlag string) error {
	now := a.Now()
	loc := now.Location()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := now

	var err error
	if fromFlag != "" {
		if from, err = time.ParseInLocation(ledger.DateLayout, fromFlag, loc); err != nil {
			return fmt.Errorf("invalid --from value %q (expected YYYY-MM-DD)", fromFlag)
		}
	}
	if toFlag != "" {
		if to, err = time.ParseInLocation(ledger.DateLayout, toFlag, loc); err != nil {
			return fmt.Errorf("invalid --to value %q (expected YYYY-MM-DD)", toFlag)
		}
	}
	if to.Before(from) {
		return fmt.Errorf("--to must not be before --from")
	}

	data := a.Report(from, to)
	if len(data.Days) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No study days between %s and %s.\n",
			ledger.DateKey(from), ledger.DateKey(to))
		return nil
	}

	if output == "" {
		output = fmt.Sprintf("study-report-%s_%s.pdf", ledger.DateKey(from), ledger.DateKey(to))
	}
	if err := renderReportPDF(data, output); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported report to %s\n", output)
	return nil
}
