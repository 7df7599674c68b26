package service

import (
	"fmt"

	"loanlook/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary   = "Summary"
	sheetStatuses  = "Statuses"
	sheetBreakdown = "Breakdowns"
	sheetRevenue   = "Revenue"
	sheetSeries    = "Series"
	sheetWarnings  = "Warnings"
)

type workbook struct {
	f      *excelize.File
	header int
}

func newWorkbook(creator string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{Creator: creator})

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	return &workbook{f: f, header: header}, nil
}

func (w *workbook) sheet(name string) error {
	if idx, _ := w.f.GetSheetIndex(name); idx >= 0 {
		return nil
	}
	_, err := w.f.NewSheet(name)
	return err
}

func (w *workbook) row(sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

func (w *workbook) headerRow(sheet string, row int, values ...any) error {
	if err := w.row(sheet, row, values...); err != nil {
		return err
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(len(values), row)
	return w.f.SetCellStyle(sheet, from, to, w.header)
}

// table writes a titled two-column block starting at row and returns the
// next free row.
func (w *workbook) table(sheet string, row int, title string, values []domain.NamedValue) (int, error) {
	if err := w.headerRow(sheet, row, title, "Value"); err != nil {
		return 0, err
	}
	row++
	for _, v := range values {
		if err := w.row(sheet, row, v.Name, v.Value); err != nil {
			return 0, err
		}
		row++
	}
	return row + 1, nil
}

// writeReportWorkbook renders agg as an xlsx file.
func writeReportWorkbook(agg domain.ReportAggregate, creator string) ([]byte, error) {
	w, err := newWorkbook(creator)
	if err != nil {
		return nil, err
	}
	defer w.f.Close()

	steps := []func(*workbook, domain.ReportAggregate) error{
		writeSummary,
		writeStatuses,
		writeBreakdowns,
		writeRevenue,
		writeSeries,
		writeWarnings,
	}
	for _, step := range steps {
		if err := step(w, agg); err != nil {
			return nil, err
		}
	}

	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(w *workbook, agg domain.ReportAggregate) error {
	rows := [][]any{
		{"Report", string(agg.Type)},
		{"From", agg.From},
		{"To", agg.To},
		{"Applications", agg.ApplicationCount},
		{"Reconciled records", agg.ReconciledCount},
		{"Disbursed loans", agg.DisbursedCount},
		{"Disbursed amount", agg.DisbursedAmount},
		{"Average term (months)", agg.AverageTerm},
		{"Gross revenue", agg.Revenue.Gross},
		{"VAT", agg.Revenue.VAT},
		{"Partial", agg.Partial},
	}
	if err := w.headerRow(sheetSummary, 1, "Metric", "Value"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := w.row(sheetSummary, i+2, r...); err != nil {
			return err
		}
	}
	return w.f.SetColWidth(sheetSummary, "A", "A", 24)
}

func writeStatuses(w *workbook, agg domain.ReportAggregate) error {
	if err := w.sheet(sheetStatuses); err != nil {
		return err
	}
	if err := w.headerRow(sheetStatuses, 1, "Code", "Status", "Count"); err != nil {
		return err
	}
	for i, sc := range agg.StatusCounts {
		if err := w.row(sheetStatuses, i+2, int(sc.Status), sc.Label, sc.Count); err != nil {
			return err
		}
	}
	return nil
}

func writeBreakdowns(w *workbook, agg domain.ReportAggregate) error {
	if err := w.sheet(sheetBreakdown); err != nil {
		return err
	}
	blocks := []struct {
		title  string
		values []domain.NamedValue
	}{
		{"Province", agg.ByProvince},
		{"Product type", agg.ByProductType},
		{"Legal document type", agg.ByLegalDocumentType},
		{"Source channel", agg.BySourceChannel},
	}

	row := 1
	for _, b := range blocks {
		next, err := w.table(sheetBreakdown, row, b.title, b.values)
		if err != nil {
			return fmt.Errorf("%s breakdown: %w", b.title, err)
		}
		row = next
	}
	return w.f.SetColWidth(sheetBreakdown, "A", "A", 28)
}

func writeRevenue(w *workbook, agg domain.ReportAggregate) error {
	if err := w.sheet(sheetRevenue); err != nil {
		return err
	}
	r := agg.Revenue
	st := r.Statements
	rows := [][]any{
		{"Principal", st.Principal, nil},
		{"Interest", st.Interest, st.InterestVAT},
		{"Management fee", st.ManagementFee, st.ManagementFeeVAT},
		{"Overdue fee", st.OverdueFee, st.OverdueFeeVAT},
		{"Settlement fee", st.SettlementFee, st.SettlementFeeVAT},
		{"Service fees", r.ServiceFees, r.ServiceFeeVAT},
		{"Fee adjustments", r.FeeAdjustments, nil},
		{"Total", r.Gross, r.VAT},
	}
	if err := w.headerRow(sheetRevenue, 1, "Component", "Amount", "VAT"); err != nil {
		return err
	}
	for i, row := range rows {
		if err := w.row(sheetRevenue, i+2, row...); err != nil {
			return err
		}
	}
	return nil
}

func writeSeries(w *workbook, agg domain.ReportAggregate) error {
	if len(agg.DailySeries) == 0 && len(agg.MonthlySeries) == 0 {
		return nil
	}
	if err := w.sheet(sheetSeries); err != nil {
		return err
	}

	if len(agg.MonthlySeries) > 0 {
		if err := w.headerRow(sheetSeries, 1, "Month", "Applications", "Disbursed loans", "Disbursed amount"); err != nil {
			return err
		}
		for i, m := range agg.MonthlySeries {
			if err := w.row(sheetSeries, i+2, m.Month, m.ApplicationCount, m.DisbursedCount, m.DisbursedAmount); err != nil {
				return err
			}
		}
		return nil
	}

	if err := w.headerRow(sheetSeries, 1, "Date", "Disbursed loans", "Disbursed amount"); err != nil {
		return err
	}
	for i, d := range agg.DailySeries {
		if err := w.row(sheetSeries, i+2, d.Date, d.DisbursedCount, d.DisbursedAmount); err != nil {
			return err
		}
	}
	return nil
}

func writeWarnings(w *workbook, agg domain.ReportAggregate) error {
	if len(agg.Warnings) == 0 {
		return nil
	}
	if err := w.sheet(sheetWarnings); err != nil {
		return err
	}
	if err := w.headerRow(sheetWarnings, 1, "Warning"); err != nil {
		return err
	}
	for i, msg := range agg.Warnings {
		if err := w.row(sheetWarnings, i+2, msg); err != nil {
			return err
		}
	}
	return w.f.SetColWidth(sheetWarnings, "A", "A", 80)
}
