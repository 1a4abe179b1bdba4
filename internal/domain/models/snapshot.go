package models

import "time"

// BatchSnapshot is the point-in-time summary of a batch stored in MongoDB
// and exported to Google Sheets.
type BatchSnapshot struct {
	BatchID        string    `bson:"batch_id" json:"batchId"`
	BatchCode      string    `bson:"batch_code" json:"batchCode"`
	FarmerName     string    `bson:"farmer_name" json:"farmerName"`
	Status         string    `bson:"status" json:"status"`
	CurrentBirds   int       `bson:"current_birds" json:"currentBirds"`
	TotalMortality int       `bson:"total_mortality" json:"totalMortality"`
	MortalityRate  float64   `bson:"mortality_rate" json:"mortalityRate"`
	FCR            float64   `bson:"fcr" json:"fcr"`
	FeedCost       float64   `bson:"feed_cost" json:"feedCost"`
	MedicineCost   float64   `bson:"medicine_cost" json:"medicineCost"`
	OtherExpenses  float64   `bson:"other_expenses" json:"otherExpenses"`
	SalesRevenue   float64   `bson:"sales_revenue" json:"salesRevenue"`
	NetProfit      float64   `bson:"net_profit" json:"netProfit"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}
