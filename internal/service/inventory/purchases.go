package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/filter"
)

// Purchase is one feed purchase or medicine bought for a batch.
type Purchase struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	Type        ItemType `json:"type"`
	ItemName    string   `json:"itemName"`
	Supplier    string   `json:"supplier"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	Amount      float64  `json:"amount"`
	PurchasedBy string   `json:"purchasedBy"`
	Farm        string   `json:"farm"`
	FarmerID    string   `json:"farmerId"`
	BatchID     string   `json:"batchId"`
	BatchCode   string   `json:"batchCode"`
}

// Ledger is a filtered purchase listing with its totals.
type Ledger struct {
	Items         []Purchase `json:"items"`
	FeedTotal     float64    `json:"feedTotal"`
	MedicineTotal float64    `json:"medicineTotal"`
	Total         float64    `json:"total"`
}

var purchaseFields = filter.Fields[Purchase]{
	Text:   func(p Purchase) []string { return []string{p.ItemName, p.Supplier} },
	ID:     func(p Purchase) string { return p.FarmerID },
	Date:   func(p Purchase) string { return p.Date },
	Status: func(p Purchase) string { return string(p.Type) },
}

// ParseItemType reads a purchase type filter. Empty and "all" select both.
func ParseItemType(raw string) (ItemType, error) {
	switch raw {
	case "", "all":
		return "", nil
	case string(ItemFeed), string(ItemMedicine):
		return ItemType(raw), nil
	}
	return "", fmt.Errorf("%w: unknown purchase type %q", ErrInvalidInput, raw)
}

// Purchases lists feed purchases and medicine entries across batches, in
// batch then entry order. kind narrows to one type when set; q searches item
// and supplier and narrows by farmer and date. Totals cover the listed items.
func (s *Service) Purchases(ctx context.Context, kind ItemType, q filter.Query) (Ledger, error) {
	all, err := s.batches.ListBatches(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("list batches: %w", err)
	}

	var flat []Purchase
	for _, b := range all {
		base := Purchase{Farm: b.FarmName, FarmerID: b.FarmerID, BatchID: b.ID, BatchCode: b.BatchCode}
		for _, e := range b.FeedEntries {
			if e.EntryType != models.FeedPurchase {
				continue
			}
			p := base
			p.ID, p.Date, p.Type = e.ID, e.Date, ItemFeed
			p.ItemName, p.Supplier = string(e.FeedType), e.SourceName
			p.Quantity, p.Unit, p.Amount = e.NumberOfBags, "bags", e.TotalAmount
			p.PurchasedBy = e.AddedBy
			flat = append(flat, p)
		}
		for _, e := range b.MedicineEntries {
			p := base
			p.ID, p.Date, p.Type = e.ID, e.Date, ItemMedicine
			p.ItemName, p.Supplier = e.MedicineName, e.CompanyName
			if p.ItemName == "" {
				p.ItemName = e.VaccineName
			}
			p.Quantity, p.Unit, p.Amount = e.Quantity, e.Unit, e.Amount
			p.PurchasedBy = e.AddedBy
			flat = append(flat, p)
		}
	}

	q.Status = string(kind)
	items := filter.Apply(flat, q, purchaseFields)

	feed, medicine := decimal.Zero, decimal.Zero
	for _, p := range items {
		amount := decimal.NewFromFloat(p.Amount)
		if p.Type == ItemFeed {
			feed = feed.Add(amount)
		} else {
			medicine = medicine.Add(amount)
		}
	}
	return Ledger{
		Items:         items,
		FeedTotal:     feed.Round(2).InexactFloat64(),
		MedicineTotal: medicine.Round(2).InexactFloat64(),
		Total:         feed.Add(medicine).Round(2).InexactFloat64(),
	}, nil
}
