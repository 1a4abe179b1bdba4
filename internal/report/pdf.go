// Package report renders batch data for export: CSV for any listing and a
// printable PDF report per batch.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

// BatchPDF renders the batch report: batch details, performance metrics,
// the financial summary and the sales ledger.
func BatchPDF(b models.Batch, m metrics.BatchMetrics, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle(fmt.Sprintf("Batch report %s", b.BatchCode), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, fmt.Sprintf("Batch Report - %s", b.BatchCode), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	section(pdf, "Batch Information")
	pdf.SetFont("Arial", "", 11)
	pair(pdf, "Farm: "+b.FarmName, "Farmer: "+b.FarmerName)
	pair(pdf, "Chick Type: "+string(b.ChickType), "Supervisor: "+b.Supervisor)
	end := "-"
	if b.EndDate != nil {
		end = *b.EndDate
	}
	pair(pdf, "Start Date: "+b.StartDate, "End Date: "+end)
	pair(pdf, fmt.Sprintf("Total Birds: %d", b.TotalBirds), fmt.Sprintf("Current Birds: %d", b.CurrentBirds))
	pair(pdf, "Status: "+string(b.Status), fmt.Sprintf("Hatching Date: %s", b.HatchingDate))
	pdf.Ln(5)

	section(pdf, "Performance")
	pdf.SetFont("Arial", "", 11)
	pair(pdf, fmt.Sprintf("Total Mortality: %d", m.TotalMortality), fmt.Sprintf("Mortality Rate: %.2f%%", m.MortalityRate))
	fcr := "n/a"
	if m.FCRAvailable {
		fcr = fmt.Sprintf("%.2f", m.FCR)
	}
	pair(pdf, "FCR: "+fcr, fmt.Sprintf("Feed Consumed: %.2f kg", m.FeedConsumedKg))
	pair(pdf, fmt.Sprintf("Avg Weight: %.0f g", m.AvgWeight), fmt.Sprintf("Daily Gain: %.1f g/day", m.DailyWeightGain))
	pair(pdf, fmt.Sprintf("Feed per Bird: %.2f kg", m.FeedPerBird), "")
	pdf.Ln(5)

	f := m.Financials
	section(pdf, "Financial Summary")
	pdf.SetFont("Arial", "", 11)
	pair(pdf, fmt.Sprintf("Gross Amount: Rs. %.2f", f.GrossAmount), fmt.Sprintf("Production Cost: Rs. %.2f", f.ProductionCost))
	pair(pdf, fmt.Sprintf("Feed Cost: Rs. %.2f", f.FeedCost), fmt.Sprintf("Medicine Cost: Rs. %.2f", f.MedicineCost))
	pair(pdf, fmt.Sprintf("Other Expenses: Rs. %.2f", f.OtherExpenses), fmt.Sprintf("Total Cost: Rs. %.2f", f.TotalCost))
	pair(pdf, fmt.Sprintf("Farmer Share: Rs. %.2f", f.FarmerShare), fmt.Sprintf("Company Share: Rs. %.2f", f.CompanyShare))
	pair(pdf, fmt.Sprintf("Cost per Bird: Rs. %.2f", f.CostPerBird), fmt.Sprintf("Revenue per Bird: Rs. %.2f", f.RevenuePerBird))

	if f.NetProfit < 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Net Profit: Rs. %.2f", f.NetProfit), "1", 1, "C", true, 0, "")

	if len(b.SalesEntries) > 0 {
		pdf.Ln(5)
		section(pdf, "Sales")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(25, 7, "Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, "DC No", "1", 0, "C", true, 0, "")
		pdf.CellFormat(45, 7, "Trader", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 7, "Birds", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, "Avg Wt (g)", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 7, "Rs/kg", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Total", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, s := range b.SalesEntries {
			pdf.CellFormat(25, 6, s.Date, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, s.DCNumber, "1", 0, "C", false, 0, "")
			pdf.CellFormat(45, 6, s.Trader, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", s.Birds), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%.0f", s.AvgWeight), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", s.PricePerKg), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", metrics.EntrySaleTotal(s)), "1", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render batch pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, title, "1", 1, "L", true, 0, "")
}

func pair(pdf *gofpdf.Fpdf, left, right string) {
	pdf.CellFormat(95, 7, left, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, right, "RB", 1, "L", false, 0, "")
}
