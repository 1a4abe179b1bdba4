package models

// PartyStatus marks whether a farmer, trader, shed or user is in service.
type PartyStatus string

const (
	StatusActive   PartyStatus = "active"
	StatusInactive PartyStatus = "inactive"
)

// Address is the postal address block shared by farmers and traders.
type Address struct {
	DoorNumber string `bson:"door_number" json:"doorNumber"`
	Village    string `bson:"village" json:"village"`
	District   string `bson:"district" json:"district"`
	State      string `bson:"state" json:"state"`
	Pincode    string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// BankDetails holds payout account information.
type BankDetails struct {
	AccountHolderName string `bson:"account_holder_name" json:"accountHolderName"`
	AccountType       string `bson:"account_type" json:"accountType"`
	AccountNumber     string `bson:"account_number" json:"accountNumber"`
	BankName          string `bson:"bank_name" json:"bankName"`
	IFSCCode          string `bson:"ifsc_code" json:"ifscCode"`
	Branch            string `bson:"branch" json:"branch"`
}

// Identity holds government identity document numbers.
type Identity struct {
	AadharNumber string `bson:"aadhar_number" json:"aadharNumber"`
	PANNumber    string `bson:"pan_number" json:"panNumber"`
	GSTNumber    string `bson:"gst_number" json:"gstNumber"`
}

// Shed is a physical housing unit belonging to a farmer.
type Shed struct {
	ID       string      `bson:"id" json:"id"`
	Name     string      `bson:"name" json:"name"`
	Length   float64     `bson:"length" json:"length"`
	Width    float64     `bson:"width" json:"width"`
	Capacity int         `bson:"capacity" json:"capacity"`
	Location string      `bson:"location" json:"location"`
	Status   PartyStatus `bson:"status" json:"status"`
}

// Farmer is a contracted grower who raises batches in their sheds.
type Farmer struct {
	ID               string      `bson:"_id" json:"id"`
	FarmerCode       string      `bson:"farmer_code" json:"farmerCode"`
	Name             string      `bson:"name" json:"name"`
	CompanyName      string      `bson:"company_name" json:"companyName"`
	Contact          string      `bson:"contact" json:"contact"`
	SecondaryContact string      `bson:"secondary_contact" json:"secondaryContact"`
	Address          Address     `bson:"address" json:"address"`
	Identity         Identity    `bson:"identity" json:"identity"`
	Bank             BankDetails `bson:"bank" json:"bank"`
	Sheds            []Shed      `bson:"sheds" json:"sheds"`
	RegistrationYear int         `bson:"registration_year" json:"registrationYear"`
	ActiveBatches    int         `bson:"active_batches" json:"activeBatches"`
	Status           PartyStatus `bson:"status" json:"status"`
}

// Trader is a buyer of birds and eggs.
type Trader struct {
	ID               string      `bson:"_id" json:"id"`
	TraderCode       string      `bson:"trader_code" json:"traderCode"`
	Name             string      `bson:"name" json:"name"`
	CompanyName      string      `bson:"company_name" json:"companyName"`
	Contact          string      `bson:"contact" json:"contact"`
	SecondaryContact string      `bson:"secondary_contact" json:"secondaryContact"`
	Email            string      `bson:"email,omitempty" json:"email,omitempty"`
	Address          Address     `bson:"address" json:"address"`
	Identity         Identity    `bson:"identity" json:"identity"`
	Bank             BankDetails `bson:"bank" json:"bank"`
	TotalPurchases   float64     `bson:"total_purchases" json:"totalPurchases"`
	LastPurchase     string      `bson:"last_purchase" json:"lastPurchase"`
	RegistrationYear int         `bson:"registration_year" json:"registrationYear"`
	Status           PartyStatus `bson:"status" json:"status"`
}
