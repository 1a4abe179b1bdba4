package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

// ErrNothingToExport is returned when an export is requested for an empty list.
var ErrNothingToExport = errors.New("no data to export")

// Column is one CSV column: a header and a cell extractor.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// CSV renders rows with the given columns. Fields containing commas, quotes
// or newlines are quoted with embedded quotes doubled.
func CSV[T any](rows []T, columns []Column[T]) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			record[i] = c.Value(row)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func num(v float64) string   { return strconv.FormatFloat(v, 'f', -1, 64) }

// BatchColumns is the column set of the batch export.
var BatchColumns = []Column[models.Batch]{
	{"Batch Code", func(b models.Batch) string { return b.BatchCode }},
	{"Farm Name", func(b models.Batch) string { return b.FarmName }},
	{"Farmer", func(b models.Batch) string { return b.FarmerName }},
	{"Chick Type", func(b models.Batch) string { return string(b.ChickType) }},
	{"Start Date", func(b models.Batch) string { return b.StartDate }},
	{"End Date", func(b models.Batch) string {
		if b.EndDate == nil {
			return ""
		}
		return *b.EndDate
	}},
	{"Total Birds", func(b models.Batch) string { return strconv.Itoa(b.TotalBirds) }},
	{"Current Birds", func(b models.Batch) string { return strconv.Itoa(b.CurrentBirds) }},
	{"Mortality Rate (%)", func(b models.Batch) string { return num(b.MortalityRate) }},
	{"Avg Weight (g)", func(b models.Batch) string { return num(b.BirdWeightAvg) }},
	{"FCR", func(b models.Batch) string { return num(b.FCR) }},
	{"Production Cost", func(b models.Batch) string { return money(b.ProductionCost) }},
	{"Gross Amount", func(b models.Batch) string { return money(b.GrossAmount) }},
	{"Status", func(b models.Batch) string { return string(b.Status) }},
	{"Supervisor", func(b models.Batch) string { return b.Supervisor }},
}

// ActivityColumns is the column set of the activities export.
var ActivityColumns = []Column[models.Activity]{
	{"Date", func(a models.Activity) string { return a.Date }},
	{"Type", func(a models.Activity) string { return string(a.Kind) }},
	{"Batch", func(a models.Activity) string { return a.BatchNumber }},
	{"Farm", func(a models.Activity) string { return a.FarmName }},
	{"Farmer", func(a models.Activity) string { return a.FarmerName }},
	{"Detail", func(a models.Activity) string { return a.Detail }},
	{"Quantity", func(a models.Activity) string { return num(a.Quantity) }},
	{"Amount", func(a models.Activity) string { return money(a.Amount) }},
	{"Added By", func(a models.Activity) string { return a.AddedBy }},
}

// FarmerColumns is the column set of the farmer export.
var FarmerColumns = []Column[models.Farmer]{
	{"Farmer Code", func(f models.Farmer) string { return f.FarmerCode }},
	{"Name", func(f models.Farmer) string { return f.Name }},
	{"Company", func(f models.Farmer) string { return f.CompanyName }},
	{"Contact", func(f models.Farmer) string { return f.Contact }},
	{"Village", func(f models.Farmer) string { return f.Address.Village }},
	{"District", func(f models.Farmer) string { return f.Address.District }},
	{"State", func(f models.Farmer) string { return f.Address.State }},
	{"Sheds", func(f models.Farmer) string { return strconv.Itoa(len(f.Sheds)) }},
	{"Active Batches", func(f models.Farmer) string { return strconv.Itoa(f.ActiveBatches) }},
	{"Status", func(f models.Farmer) string { return string(f.Status) }},
}

// TraderColumns is the column set of the trader export.
var TraderColumns = []Column[models.Trader]{
	{"Trader Code", func(t models.Trader) string { return t.TraderCode }},
	{"Name", func(t models.Trader) string { return t.Name }},
	{"Company", func(t models.Trader) string { return t.CompanyName }},
	{"Contact", func(t models.Trader) string { return t.Contact }},
	{"Total Purchases", func(t models.Trader) string { return money(t.TotalPurchases) }},
	{"Last Purchase", func(t models.Trader) string { return t.LastPurchase }},
	{"Status", func(t models.Trader) string { return string(t.Status) }},
}
