package models

// ActivityKind selects which entry ledger an activity listing draws from.
type ActivityKind string

const (
	ActivityDaily      ActivityKind = "daily"
	ActivitySales      ActivityKind = "sales"
	ActivityMedication ActivityKind = "medication"
	ActivityFeed       ActivityKind = "feed"
)

// Activity is a batch entry flattened with its batch and farmer context.
// Detail holds the kind-specific searchable text (trader, medicine, feed type).
type Activity struct {
	ID          string       `json:"id"`
	Kind        ActivityKind `json:"kind"`
	BatchID     string       `json:"batchId"`
	BatchNumber string       `json:"batchNumber"`
	FarmName    string       `json:"farmName"`
	FarmerID    string       `json:"farmerId"`
	FarmerName  string       `json:"farmerName"`
	BatchStatus BatchStatus  `json:"batchStatus"`
	Date        string       `json:"date"`
	Detail      string       `json:"detail"`
	Quantity    float64      `json:"quantity"`
	Amount      float64      `json:"amount"`
	AddedBy     string       `json:"addedBy"`
	Entry       any          `json:"entry"`
}
