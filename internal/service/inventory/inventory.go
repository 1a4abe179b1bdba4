// Package inventory rolls the feed and medicine ledgers of every batch up
// into company-wide stock levels and a purchase ledger.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
)

// ErrInvalidInput indicates an unknown item type or malformed filter.
var ErrInvalidInput = errors.New("invalid input")

// ItemType separates feed from medicine.
type ItemType string

const (
	ItemFeed     ItemType = "feed"
	ItemMedicine ItemType = "medicine"
)

// StockStatus grades a stock level against the configured thresholds.
type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "low"
	OutOfStock StockStatus = "out-of-stock"
)

// Item is the stock position of one feed type or medicine.
type Item struct {
	Type        ItemType    `json:"type"`
	Name        string      `json:"name"`
	Received    float64     `json:"received"`
	Issued      float64     `json:"issued"`
	Quantity    float64     `json:"quantity"`
	Unit        string      `json:"unit"`
	Value       float64     `json:"value"`
	LastUpdated string      `json:"lastUpdated"`
	Status      StockStatus `json:"status"`
}

// Report is the stock position across every batch.
type Report struct {
	Items           []Item  `json:"items"`
	FeedBags        float64 `json:"feedBags"`
	MedicineTypes   int     `json:"medicineTypes"`
	TotalValue      float64 `json:"totalValue"`
	LowStockItems   int     `json:"lowStockItems"`
	OutOfStockItems int     `json:"outOfStockItems"`
}

// BatchSource supplies the batches whose ledgers are rolled up.
type BatchSource interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
}

// Service computes stock levels and the purchase ledger.
type Service struct {
	batches BatchSource
	rules   config.Rules
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the inventory rollup.
func NewService(batches BatchSource, rules config.Rules, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{batches: batches, rules: rules, logger: logger, now: time.Now}
}

type position struct {
	item      Item
	received  decimal.Decimal
	issued    decimal.Decimal
	spent     decimal.Decimal
	purchased decimal.Decimal
}

func (p *position) touch(date string) {
	if date > p.item.LastUpdated {
		p.item.LastUpdated = date
	}
}

// Stock rolls up feed and medicine. Feed is received by purchases and
// transfers in and issued by transfers out and daily consumption. Medicine
// is received by medicine entries; quantities past their expiry date count
// as issued. Value is the remaining quantity at the average purchase price.
func (s *Service) Stock(ctx context.Context) (Report, error) {
	all, err := s.batches.ListBatches(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list batches: %w", err)
	}
	today := s.now().Format(models.DateLayout)
	bagWeight := decimal.NewFromFloat(s.rules.FeedBagWeightKg)

	var order []string
	byKey := make(map[string]*position)
	get := func(kind ItemType, name, unit string) *position {
		key := string(kind) + "/" + strings.ToLower(name)
		p, ok := byKey[key]
		if !ok {
			p = &position{item: Item{Type: kind, Name: name, Unit: unit}}
			byKey[key] = p
			order = append(order, key)
		}
		return p
	}

	for _, b := range all {
		for _, e := range b.FeedEntries {
			p := get(ItemFeed, string(e.FeedType), "bags")
			bags := decimal.NewFromFloat(e.NumberOfBags)
			switch e.EntryType {
			case models.FeedTransferOut:
				p.issued = p.issued.Add(bags)
			case models.FeedPurchase:
				p.received = p.received.Add(bags)
				p.purchased = p.purchased.Add(bags)
				p.spent = p.spent.Add(decimal.NewFromFloat(e.TotalAmount))
			default:
				p.received = p.received.Add(bags)
			}
			p.touch(e.Date)
		}
		for _, e := range b.DailyEntries {
			if e.FeedType == "" {
				continue
			}
			bags := decimal.NewFromFloat(e.FeedBags)
			if e.FeedBags <= 0 && e.FeedUsed > 0 {
				bags = decimal.NewFromFloat(e.FeedUsed).Div(bagWeight)
			}
			if bags.IsZero() {
				continue
			}
			p := get(ItemFeed, string(e.FeedType), "bags")
			p.issued = p.issued.Add(bags)
			p.touch(e.Date)
		}
		for _, e := range b.MedicineEntries {
			name := e.MedicineName
			if name == "" {
				name = e.VaccineName
			}
			p := get(ItemMedicine, name, e.Unit)
			qty := decimal.NewFromFloat(e.Quantity)
			p.received = p.received.Add(qty)
			p.purchased = p.purchased.Add(qty)
			p.spent = p.spent.Add(decimal.NewFromFloat(e.Amount))
			if e.ExpiryDate != "" && e.ExpiryDate < today {
				p.issued = p.issued.Add(qty)
			}
			p.touch(e.Date)
		}
	}

	r := Report{Items: make([]Item, 0, len(order))}
	total := decimal.Zero
	feedBags := decimal.Zero
	for _, key := range order {
		p := byKey[key]
		qty := p.received.Sub(p.issued)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		value := decimal.Zero
		if p.purchased.IsPositive() {
			value = p.spent.Div(p.purchased).Mul(qty)
		}

		item := p.item
		item.Received = p.received.Round(2).InexactFloat64()
		item.Issued = p.issued.Round(2).InexactFloat64()
		item.Quantity = qty.Round(2).InexactFloat64()
		item.Value = value.Round(2).InexactFloat64()
		item.Status = s.status(item.Type, item.Quantity)

		switch item.Type {
		case ItemFeed:
			feedBags = feedBags.Add(qty)
		case ItemMedicine:
			r.MedicineTypes++
		}
		switch item.Status {
		case LowStock:
			r.LowStockItems++
		case OutOfStock:
			r.OutOfStockItems++
		}
		total = total.Add(value)
		r.Items = append(r.Items, item)
	}

	sort.SliceStable(r.Items, func(i, j int) bool {
		if r.Items[i].Type != r.Items[j].Type {
			return r.Items[i].Type == ItemFeed
		}
		return r.Items[i].Name < r.Items[j].Name
	})
	r.FeedBags = feedBags.Round(2).InexactFloat64()
	r.TotalValue = total.Round(2).InexactFloat64()
	return r, nil
}

func (s *Service) status(kind ItemType, qty float64) StockStatus {
	threshold := s.rules.Inventory.LowFeedBags
	if kind == ItemMedicine {
		threshold = s.rules.Inventory.LowMedicineQuantity
	}
	switch {
	case qty <= 0:
		return OutOfStock
	case qty < threshold:
		return LowStock
	}
	return InStock
}
