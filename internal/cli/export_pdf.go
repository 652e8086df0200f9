package cli

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/yeoul2023/study-timer/internal/ledger"
	"github.com/yeoul2023/study-timer/internal/timetrack"
)

var (
	pdfHeaderColor = props.Color{Red: 50, Green: 50, Blue: 50}
	pdfMutedColor  = props.Color{Red: 120, Green: 120, Blue: 120}
	pdfLineColor   = props.Color{Red: 200, Green: 200, Blue: 200}
	pdfShortColor  = props.Color{Red: 180, Green: 60, Blue: 60}
)

// renderReportPDF writes a printable study report for data to outputPath.
func renderReportPDF(data timetrack.ReportData, outputPath string) error {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "Study report", props.Text{
			Style: fontstyle.Bold,
			Size:  16,
			Color: &pdfHeaderColor,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, fmt.Sprintf("%s to %s", ledger.DateKey(data.From), ledger.DateKey(data.To)), props.Text{
			Size:  12,
			Color: &pdfMutedColor,
		}),
	)
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	m.AddRow(4)

	for _, day := range data.Days {
		label := fmt.Sprintf("%s %d, %s", day.Date.Month(), day.Date.Day(), day.Date.Weekday())
		progress := fmt.Sprintf("%s / %s (%d%%)",
			ledger.FormatHours(day.ActualHours), ledger.FormatHours(day.GoalHours), day.CompletionRate)

		m.AddRow(8,
			text.NewCol(7, label, props.Text{
				Style: fontstyle.Bold,
				Size:  10,
				Color: &pdfHeaderColor,
			}),
			text.NewCol(5, progress, props.Text{
				Style: fontstyle.Bold,
				Size:  10,
				Align: align.Right,
				Color: &pdfHeaderColor,
			}),
		)

		if day.CheckIn != "" {
			m.AddRow(5,
				text.NewCol(12, "  checked in at "+day.CheckIn, props.Text{
					Size:  8,
					Color: &pdfMutedColor,
				}),
			)
		}

		for _, s := range day.Sessions {
			span := fmt.Sprintf("  %s - %s", s.Start.Format("15:04"), s.End.Format("15:04"))
			if s.Pauses > 0 {
				span += fmt.Sprintf("  (%d pauses)", s.Pauses)
			}
			m.AddRow(6,
				text.NewCol(9, span, props.Text{Size: 9}),
				text.NewCol(3, ledger.FormatClock(s.Duration), props.Text{
					Size:  9,
					Align: align.Right,
				}),
			)
		}

		if day.UnderGoal != "" {
			m.AddRow(5,
				text.NewCol(12, "  shortfall: "+day.UnderGoal, props.Text{
					Size:  8,
					Color: &pdfShortColor,
				}),
			)
		}
		if day.Memo != "" {
			m.AddRow(5,
				text.NewCol(12, "  memo: "+day.Memo, props.Text{
					Size:  8,
					Color: &pdfMutedColor,
				}),
			)
		}

		m.AddRow(4)
	}

	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	m.AddRow(10,
		text.NewCol(7, "Total", props.Text{
			Style: fontstyle.Bold,
			Size:  12,
			Color: &pdfHeaderColor,
		}),
		text.NewCol(5, fmt.Sprintf("%s (avg %d%%)", ledger.FormatHours(data.TotalHours), data.AvgRate), props.Text{
			Style: fontstyle.Bold,
			Size:  12,
			Align: align.Right,
			Color: &pdfHeaderColor,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generating PDF: %w", err)
	}

	return doc.Save(outputPath)
}
