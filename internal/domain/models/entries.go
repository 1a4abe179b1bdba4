package models

import "time"

// TransportType identifies who arranges transport for a sale.
type TransportType string

const (
	TransportCompany  TransportType = "company"
	TransportCustomer TransportType = "customer"
)

// FeedEntryType classifies feed movements in and out of a batch.
type FeedEntryType string

const (
	FeedPurchase    FeedEntryType = "purchase"
	FeedTransferIn  FeedEntryType = "transfer-in"
	FeedTransferOut FeedEntryType = "transfer-out"
)

// PaymentMode enumerates how an expense was paid.
type PaymentMode string

const (
	PaymentCash PaymentMode = "cash"
	PaymentBank PaymentMode = "bank"
	PaymentUPI  PaymentMode = "upi"
)

// DailyEntry is one day's observation for a batch. Entries are append-only.
type DailyEntry struct {
	ID               string    `bson:"id" json:"id"`
	BatchID          string    `bson:"batch_id" json:"batchId"`
	Date             string    `bson:"date" json:"date"`
	BirdAge          int       `bson:"bird_age" json:"birdAge"`
	Mortality        int       `bson:"mortality" json:"mortality"`
	WeakBirds        int       `bson:"weak_birds" json:"weakBirds"`
	LegWeakBirds     int       `bson:"leg_weak_birds" json:"legWeakBirds"`
	TotalMortality   int       `bson:"total_mortality" json:"totalMortality"`
	FeedUsed         float64   `bson:"feed_used" json:"feedUsed"`
	FeedType         FeedType  `bson:"feed_type" json:"feedType"`
	FeedBags         float64   `bson:"feed_bags" json:"feedBags"`
	AvgWeight        float64   `bson:"avg_weight" json:"avgWeight"`
	WaterConsumption float64   `bson:"water_consumption" json:"waterConsumption"`
	Temperature      float64   `bson:"temperature" json:"temperature"`
	Humidity         float64   `bson:"humidity" json:"humidity"`
	ImageURL         string    `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	AddedBy          string    `bson:"added_by" json:"addedBy"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`
}

// Losses returns every bird removed from the flock by this entry.
func (e DailyEntry) Losses() int {
	return e.Mortality + e.WeakBirds + e.LegWeakBirds
}

// SalesEntry is one sale transaction against a batch.
type SalesEntry struct {
	ID              string        `bson:"id" json:"id"`
	BatchID         string        `bson:"batch_id" json:"batchId"`
	Date            string        `bson:"date" json:"date"`
	DCNumber        string        `bson:"dc_number" json:"dcNumber"`
	TraderID        string        `bson:"trader_id" json:"traderId"`
	Trader          string        `bson:"trader" json:"trader"`
	Birds           int           `bson:"birds" json:"birds"`
	AvgWeight       float64       `bson:"avg_weight" json:"avgWeight"`
	PricePerKg      float64       `bson:"price_per_kg" json:"pricePerKg"`
	TotalAmount     float64       `bson:"total_amount" json:"totalAmount"`
	TransportType   TransportType `bson:"transport_type" json:"transportType"`
	DriverName      string        `bson:"driver_name,omitempty" json:"driverName,omitempty"`
	VehicleNumber   string        `bson:"vehicle_number,omitempty" json:"vehicleNumber,omitempty"`
	TransportAmount float64       `bson:"transport_amount,omitempty" json:"transportAmount,omitempty"`
	AddedBy         string        `bson:"added_by" json:"addedBy"`
	Timestamp       time.Time     `bson:"timestamp" json:"timestamp"`
}

// FeedEntry records feed bags purchased for or transferred between batches.
type FeedEntry struct {
	ID           string        `bson:"id" json:"id"`
	BatchID      string        `bson:"batch_id" json:"batchId"`
	Date         string        `bson:"date" json:"date"`
	DCNumber     string        `bson:"dc_number" json:"dcNumber"`
	EntryType    FeedEntryType `bson:"entry_type" json:"entryType"`
	Source       string        `bson:"source" json:"source"`
	SourceName   string        `bson:"source_name" json:"sourceName"`
	SourceID     string        `bson:"source_id,omitempty" json:"sourceId,omitempty"`
	FeedType     FeedType      `bson:"feed_type" json:"feedType"`
	NumberOfBags float64       `bson:"number_of_bags" json:"numberOfBags"`
	BagQuantity  float64       `bson:"bag_quantity" json:"bagQuantity"`
	TotalWeight  float64       `bson:"total_weight" json:"totalWeight"`
	Price        float64       `bson:"price,omitempty" json:"price,omitempty"`
	Discount     float64       `bson:"discount,omitempty" json:"discount,omitempty"`
	TotalAmount  float64       `bson:"total_amount,omitempty" json:"totalAmount,omitempty"`
	AddedBy      string        `bson:"added_by" json:"addedBy"`
	Timestamp    time.Time     `bson:"timestamp" json:"timestamp"`
}

// MedicineEntry records a vaccine or medicine issued to a batch.
type MedicineEntry struct {
	ID           string    `bson:"id" json:"id"`
	BatchID      string    `bson:"batch_id" json:"batchId"`
	Date         string    `bson:"date" json:"date"`
	DCNumber     string    `bson:"dc_number" json:"dcNumber"`
	CompanyName  string    `bson:"company_name" json:"companyName"`
	VaccineName  string    `bson:"vaccine_name,omitempty" json:"vaccineName,omitempty"`
	MedicineName string    `bson:"medicine_name" json:"medicineName"`
	Unit         string    `bson:"unit" json:"unit"`
	Quantity     float64   `bson:"quantity" json:"quantity"`
	Amount       float64   `bson:"amount" json:"amount"`
	ExpiryDate   string    `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	AddedBy      string    `bson:"added_by" json:"addedBy"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}

// ExpenseEntry records any other cost booked against a batch.
type ExpenseEntry struct {
	ID          string      `bson:"id" json:"id"`
	BatchID     string      `bson:"batch_id" json:"batchId"`
	Date        string      `bson:"date" json:"date"`
	BillDC      string      `bson:"bill_dc" json:"billDc"`
	Purpose     string      `bson:"purpose" json:"purpose"`
	PaymentMode PaymentMode `bson:"payment_mode" json:"paymentMode"`
	Amount      float64     `bson:"amount" json:"amount"`
	AddedBy     string      `bson:"added_by" json:"addedBy"`
	Timestamp   time.Time   `bson:"timestamp" json:"timestamp"`
}

// EggEntry records an egg sale from a layer batch.
type EggEntry struct {
	ID              string        `bson:"id" json:"id"`
	BatchID         string        `bson:"batch_id" json:"batchId"`
	Date            string        `bson:"date" json:"date"`
	DCNumber        string        `bson:"dc_number" json:"dcNumber"`
	NumberOfEggs    int           `bson:"number_of_eggs" json:"numberOfEggs"`
	Rate            float64       `bson:"rate" json:"rate"`
	TotalAmount     float64       `bson:"total_amount" json:"totalAmount"`
	TransportType   TransportType `bson:"transport_type" json:"transportType"`
	TransportAmount float64       `bson:"transport_amount,omitempty" json:"transportAmount,omitempty"`
	TraderID        string        `bson:"trader_id" json:"traderId"`
	TraderName      string        `bson:"trader_name" json:"traderName"`
	AddedBy         string        `bson:"added_by" json:"addedBy"`
	Timestamp       time.Time     `bson:"timestamp" json:"timestamp"`
}
