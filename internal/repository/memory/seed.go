package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

// SeedSampleData loads the demonstration master data, farmers, traders,
// batches and, when passwordHash is non-empty, one user per role sharing
// that hash. Derived batch figures are computed by calc (the default rules
// when nil) so stored batches agree with their metrics.
func SeedSampleData(ctx context.Context, s *Store, calc *metrics.Calculator, passwordHash string) error {
	if calc == nil {
		calc = metrics.NewCalculator(config.DefaultRules())
	}
	for _, t := range sampleBirdTypes() {
		if err := s.CreateBirdType(ctx, t); err != nil {
			return fmt.Errorf("seed bird type %s: %w", t.Name, err)
		}
	}
	for _, p := range samplePriceBands() {
		if err := s.CreatePriceBand(ctx, p); err != nil {
			return fmt.Errorf("seed price band %s: %w", p.ID, err)
		}
	}
	for _, f := range sampleFarmers() {
		if err := s.CreateFarmer(ctx, f); err != nil {
			return fmt.Errorf("seed farmer %s: %w", f.FarmerCode, err)
		}
	}
	for _, t := range sampleTraders() {
		if err := s.CreateTrader(ctx, t); err != nil {
			return fmt.Errorf("seed trader %s: %w", t.TraderCode, err)
		}
	}
	for _, b := range sampleBatches() {
		calc.Refresh(&b)
		if err := s.CreateBatch(ctx, b); err != nil {
			return fmt.Errorf("seed batch %s: %w", b.BatchCode, err)
		}
	}
	if passwordHash == "" {
		return nil
	}
	for _, u := range sampleUsers(passwordHash) {
		if err := s.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	return nil
}

func sampleFarmers() []models.Farmer {
	return []models.Farmer{
		{
			ID:          "F2024-001",
			FarmerCode:  "F2024-001",
			Name:        "Rajesh Kumar",
			CompanyName: "RK Farms",
			Contact:     "+91 9876543210",
			Address: models.Address{
				DoorNumber: "12-3/A",
				Village:    "Chinnapalli",
				District:   "Krishna",
				State:      "Andhra Pradesh",
				Pincode:    "521101",
			},
			Identity: models.Identity{AadharNumber: "1234-5678-9012", PANNumber: "ABCDE1234F"},
			Bank: models.BankDetails{
				AccountHolderName: "Rajesh Kumar",
				AccountType:       "savings",
				AccountNumber:     "123456789012",
				BankName:          "State Bank of India",
				IFSCCode:          "SBIN0001234",
				Branch:            "Vijayawada",
			},
			Sheds: []models.Shed{
				{ID: "S001", Name: "Shed A", Length: 100, Width: 50, Capacity: 4945, Location: "North block", Status: models.StatusActive},
			},
			RegistrationYear: 2024,
			ActiveBatches:    1,
			Status:           models.StatusActive,
		},
		{
			ID:          "F2024-002",
			FarmerCode:  "F2024-002",
			Name:        "Suresh Patel",
			CompanyName: "SP Poultry",
			Contact:     "+91 9876543211",
			Address: models.Address{
				DoorNumber: "4-56",
				Village:    "Gannavaram",
				District:   "Krishna",
				State:      "Andhra Pradesh",
				Pincode:    "521101",
			},
			Sheds: []models.Shed{
				{ID: "S002", Name: "Shed 1", Length: 80, Width: 40, Capacity: 3164, Location: "East wing", Status: models.StatusActive},
			},
			RegistrationYear: 2024,
			ActiveBatches:    1,
			Status:           models.StatusActive,
		},
		{
			ID:          "F2024-003",
			FarmerCode:  "F2024-003",
			Name:        "Venkatesh Rao",
			CompanyName: "VR Farms",
			Contact:     "+91 9876543212",
			Address: models.Address{
				DoorNumber: "7-1",
				Village:    "Nuzvid",
				District:   "Krishna",
				State:      "Andhra Pradesh",
				Pincode:    "521201",
			},
			Sheds: []models.Shed{
				{ID: "S003", Name: "Main shed", Length: 120, Width: 60, Capacity: 7120, Location: "Main road", Status: models.StatusActive},
			},
			RegistrationYear: 2024,
			Status:           models.StatusActive,
		},
	}
}

func sampleTraders() []models.Trader {
	return []models.Trader{
		{
			ID:          "T2024-001",
			TraderCode:  "T2024-001",
			Name:        "Mohammed Ali",
			CompanyName: "Ali Traders",
			Contact:     "+91 9876543220",
			Email:       "ali.traders@example.com",
			Address: models.Address{
				DoorNumber: "22",
				Village:    "Governorpet",
				District:   "Krishna",
				State:      "Andhra Pradesh",
				Pincode:    "520002",
			},
			TotalPurchases:   783600,
			LastPurchase:     "2024-04-18",
			RegistrationYear: 2024,
			Status:           models.StatusActive,
		},
		{
			ID:               "T2024-002",
			TraderCode:       "T2024-002",
			Name:             "Ahmed Khan",
			CompanyName:      "Khan Poultry Traders",
			Contact:          "+91 9876543221",
			TotalPurchases:   684450,
			LastPurchase:     "2024-04-17",
			RegistrationYear: 2024,
			Status:           models.StatusActive,
		},
	}
}

func sampleBatches() []models.Batch {
	seededAt := time.Date(2024, time.April, 18, 9, 30, 0, 0, time.UTC)
	completedOn := "2024-03-01"

	return []models.Batch{
		{
			ID:             "B2024-001",
			BatchCode:      "B2024-001",
			FarmName:       "RK Farms",
			FarmerID:       "F2024-001",
			FarmerName:     "Rajesh Kumar",
			ShedID:         "S001",
			ChickType:      models.ChickTNAseel,
			HatchingDate:   "2024-03-01",
			StartDate:      "2024-03-01",
			TotalBirds:     5000,
			CurrentBirds:   4492,
			FeedStock:      250,
			FeedUsed:       150,
			Status:         models.BatchActive,
			Supervisor:     "John Doe",
			DailyEntries: []models.DailyEntry{
				{
					ID: "DE001", BatchID: "B2024-001", Date: "2024-04-17", BirdAge: 47,
					Mortality: 3, TotalMortality: 3, FeedUsed: 120, FeedType: models.FeedDesiFinisher, FeedBags: 2.4,
					AvgWeight: 2450, WaterConsumption: 480, Temperature: 27, Humidity: 68,
					AddedBy: "John Doe", Timestamp: seededAt.Add(-24 * time.Hour),
				},
				{
					ID: "DE002", BatchID: "B2024-001", Date: "2024-04-18", BirdAge: 48,
					Mortality: 5, TotalMortality: 5, FeedUsed: 100, FeedType: models.FeedDesiStarter, FeedBags: 2,
					AvgWeight: 2500, WaterConsumption: 500, Temperature: 28, Humidity: 65,
					AddedBy: "John Doe", Timestamp: seededAt,
				},
			},
			SalesEntries: []models.SalesEntry{
				{
					ID: "SE001", BatchID: "B2024-001", Date: "2024-04-18", DCNumber: "DC001",
					TraderID: "T2024-001", Trader: "Mohammed Ali", Birds: 500, AvgWeight: 2500, PricePerKg: 120,
					TotalAmount: 150000, TransportType: models.TransportCompany, DriverName: "Ravi",
					VehicleNumber: "AP16-1234", TransportAmount: 1000, AddedBy: "Sales Team",
					Timestamp: seededAt.Add(5 * time.Hour),
				},
			},
			FeedEntries: []models.FeedEntry{
				{
					ID: "FE001", BatchID: "B2024-001", Date: "2024-03-01", DCNumber: "DC-F001",
					EntryType: models.FeedPurchase, Source: "company", SourceName: "Godrej Agrovet",
					FeedType: models.FeedDesiStarter, NumberOfBags: 50, BagQuantity: 50, TotalWeight: 2500,
					Price: 1800, Discount: 1000, TotalAmount: 89000, AddedBy: "Admin",
					Timestamp: time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
				},
			},
			MedicineEntries: []models.MedicineEntry{
				{
					ID: "ME001", BatchID: "B2024-001", Date: "2024-03-07", DCNumber: "DC-M001",
					CompanyName: "Venky's", VaccineName: "Lasota", MedicineName: "Lasota ND", Unit: "vial",
					Quantity: 10, Amount: 2500, ExpiryDate: "2025-03-01", AddedBy: "John Doe",
					Timestamp: time.Date(2024, time.March, 7, 8, 0, 0, 0, time.UTC),
				},
			},
			ExpenseEntries: []models.ExpenseEntry{
				{
					ID: "EX001", BatchID: "B2024-001", Date: "2024-03-02", BillDC: "BILL-77",
					Purpose: "Litter material", PaymentMode: models.PaymentUPI, Amount: 4000, AddedBy: "Admin",
					Timestamp: time.Date(2024, time.March, 2, 12, 0, 0, 0, time.UTC),
				},
			},
		},
		{
			ID:             "B2024-002",
			BatchCode:      "B2024-002",
			FarmName:       "SP Poultry",
			FarmerID:       "F2024-002",
			FarmerName:     "Suresh Patel",
			ShedID:         "S002",
			ChickType:      models.ChickIndbroAseel,
			HatchingDate:   "2024-03-15",
			StartDate:      "2024-03-15",
			TotalBirds:     3000,
			CurrentBirds:   2694,
			FeedStock:      180,
			FeedUsed:       120,
			Status:         models.BatchActive,
			Supervisor:     "Jane Smith",
			DailyEntries: []models.DailyEntry{
				{
					ID: "DE003", BatchID: "B2024-002", Date: "2024-04-17", BirdAge: 33,
					Mortality: 2, TotalMortality: 2, FeedUsed: 90, FeedType: models.FeedDesiFreeStarter, FeedBags: 1.8,
					AvgWeight: 2250, WaterConsumption: 380, Temperature: 28, Humidity: 65,
					AddedBy: "Jane Smith", Timestamp: seededAt.Add(-22 * time.Hour),
				},
				{
					ID: "DE004", BatchID: "B2024-002", Date: "2024-04-18", BirdAge: 34,
					Mortality: 4, TotalMortality: 4, FeedUsed: 80, FeedType: models.FeedDesiGrower, FeedBags: 1.6,
					AvgWeight: 2300, WaterConsumption: 400, Temperature: 29, Humidity: 62,
					AddedBy: "Jane Smith", Timestamp: seededAt.Add(time.Hour),
				},
			},
			SalesEntries: []models.SalesEntry{
				{
					ID: "SE002", BatchID: "B2024-002", Date: "2024-04-17", DCNumber: "DC002",
					TraderID: "T2024-002", Trader: "Ahmed Khan", Birds: 300, AvgWeight: 2250, PricePerKg: 118,
					TotalAmount: 79650, TransportType: models.TransportCustomer, DriverName: "Imran",
					VehicleNumber: "AP16-5678", TransportAmount: 500, AddedBy: "Sales Team",
					Timestamp: seededAt.Add(-18 * time.Hour),
				},
			},
			FeedEntries: []models.FeedEntry{
				{
					ID: "FE002", BatchID: "B2024-002", Date: "2024-03-15", DCNumber: "DC-F002",
					EntryType: models.FeedPurchase, Source: "company", SourceName: "Godrej Agrovet",
					FeedType: models.FeedDesiGrower, NumberOfBags: 40, BagQuantity: 50, TotalWeight: 2000,
					Price: 1750, TotalAmount: 70000, AddedBy: "Admin",
					Timestamp: time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC),
				},
			},
			MedicineEntries: []models.MedicineEntry{
				{
					ID: "ME002", BatchID: "B2024-002", Date: "2024-03-22", DCNumber: "DC-M002",
					CompanyName: "Zydus", MedicineName: "Vitamin B Complex", Unit: "bottle",
					Quantity: 4, Amount: 1200, ExpiryDate: "2025-06-30", AddedBy: "Jane Smith",
					Timestamp: time.Date(2024, time.March, 22, 8, 0, 0, 0, time.UTC),
				},
			},
		},
		{
			ID:             "B2024-003",
			BatchCode:      "B2024-003",
			FarmName:       "RK Farms",
			FarmerID:       "F2024-001",
			FarmerName:     "Rajesh Kumar",
			ShedID:         "S001",
			ChickType:      models.ChickColorBroiler,
			HatchingDate:   "2024-01-01",
			StartDate:      "2024-01-01",
			EndDate:        &completedOn,
			TotalBirds:     5000,
			CurrentBirds:   0,
			FeedUsed:       340,
			WeakBirds:      20,
			Status:         models.BatchCompleted,
			Supervisor:     "John Doe",
			DailyEntries: []models.DailyEntry{
				{
					ID: "DE005", BatchID: "B2024-003", Date: "2024-02-10", BirdAge: 40,
					Mortality: 100, WeakBirds: 20, TotalMortality: 120, FeedUsed: 8000, FeedType: models.FeedDesiGrower, FeedBags: 160,
					AvgWeight: 1800, WaterConsumption: 900, Temperature: 24, Humidity: 60,
					AddedBy: "John Doe", Timestamp: time.Date(2024, time.February, 10, 18, 0, 0, 0, time.UTC),
				},
				{
					ID: "DE006", BatchID: "B2024-003", Date: "2024-02-25", BirdAge: 55,
					Mortality: 80, TotalMortality: 80, FeedUsed: 9000, FeedType: models.FeedDesiFinisher, FeedBags: 180,
					AvgWeight: 2400, WaterConsumption: 950, Temperature: 26, Humidity: 58,
					AddedBy: "John Doe", Timestamp: time.Date(2024, time.February, 25, 18, 0, 0, 0, time.UTC),
				},
			},
			SalesEntries: []models.SalesEntry{
				{
					ID: "SE003", BatchID: "B2024-003", Date: "2024-02-28", DCNumber: "DC003",
					TraderID: "T2024-001", Trader: "Mohammed Ali", Birds: 2400, AvgWeight: 2400, PricePerKg: 110,
					TotalAmount: 633600, TransportType: models.TransportCompany, DriverName: "Ravi",
					VehicleNumber: "AP16-1234", TransportAmount: 4000, AddedBy: "Sales Team",
					Timestamp: time.Date(2024, time.February, 28, 7, 0, 0, 0, time.UTC),
				},
				{
					ID: "SE004", BatchID: "B2024-003", Date: "2024-03-01", DCNumber: "DC004",
					TraderID: "T2024-002", Trader: "Ahmed Khan", Birds: 2400, AvgWeight: 2400, PricePerKg: 105,
					TotalAmount: 604800, TransportType: models.TransportCustomer, DriverName: "Imran",
					VehicleNumber: "AP16-5678", AddedBy: "Sales Team",
					Timestamp: time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC),
				},
			},
			FeedEntries: []models.FeedEntry{
				{
					ID: "FE003", BatchID: "B2024-003", Date: "2024-01-01", DCNumber: "DC-F003",
					EntryType: models.FeedPurchase, Source: "company", SourceName: "Godrej Agrovet",
					FeedType: models.FeedDesiGrower, NumberOfBags: 340, BagQuantity: 50, TotalWeight: 17000,
					Price: 1700, TotalAmount: 578000, AddedBy: "Admin",
					Timestamp: time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC),
				},
			},
			ExpenseEntries: []models.ExpenseEntry{
				{
					ID: "EX002", BatchID: "B2024-003", Date: "2024-01-02", BillDC: "BILL-12",
					Purpose: "Chick transport", PaymentMode: models.PaymentCash, Amount: 6000, AddedBy: "Admin",
					Timestamp: time.Date(2024, time.January, 2, 12, 0, 0, 0, time.UTC),
				},
			},
		},
	}
}

func sampleBirdTypes() []models.BirdType {
	return []models.BirdType{
		{ID: "BT01", Name: models.ChickTNAseel, Description: "Tamil Nadu native country chicken", DefaultPrice: 230, MinWeightGrams: 1200, MaxWeightGrams: 3000, IsActive: true},
		{ID: "BT02", Name: models.ChickIndbroAseel, Description: "Indbro hybrid aseel", DefaultPrice: 240, MinWeightGrams: 1500, MaxWeightGrams: 3500, IsActive: true},
		{ID: "BT03", Name: models.ChickColorBroiler, Description: "Coloured broiler", DefaultPrice: 180, MinWeightGrams: 1000, MaxWeightGrams: 2500, IsActive: true},
		{ID: "BT04", Name: models.ChickBroiler, Description: "Commercial broiler", DefaultPrice: 160, MinWeightGrams: 800, MaxWeightGrams: 2200, IsActive: true},
		{ID: "BT05", Name: models.ChickBrownLayered, Description: "Brown egg layer", DefaultPrice: 200, MinWeightGrams: 1300, MaxWeightGrams: 2800, IsActive: true},
		{ID: "BT06", Name: models.ChickRainbowRoaster, Description: "Rainbow roaster", DefaultPrice: 210, MinWeightGrams: 1400, MaxWeightGrams: 3200, IsActive: true},
		{ID: "BT07", Name: models.ChickSonali, Description: "Sonali crossbreed", DefaultPrice: 190, MinWeightGrams: 1100, MaxWeightGrams: 2600},
	}
}

func samplePriceBands() []models.PriceBand {
	return []models.PriceBand{
		{ID: "PB01", BirdTypeID: "BT01", Name: "TN Aseel light", MinWeightGrams: 1200, MaxWeightGrams: 2000, PricePerKg: 230, EffectiveFrom: "2024-01-01", IsActive: true},
		{ID: "PB02", BirdTypeID: "BT01", Name: "TN Aseel heavy", MinWeightGrams: 2001, MaxWeightGrams: 3000, PricePerKg: 250, EffectiveFrom: "2024-01-01", IsActive: true},
		{ID: "PB03", BirdTypeID: "BT02", Name: "Indbro Aseel", MinWeightGrams: 1500, MaxWeightGrams: 3500, PricePerKg: 240, EffectiveFrom: "2024-01-01", IsActive: true},
		{ID: "PB04", BirdTypeID: "BT03", Name: "Color Broiler", MinWeightGrams: 1000, MaxWeightGrams: 2500, PricePerKg: 180, EffectiveFrom: "2024-01-01", IsActive: true},
	}
}

func sampleUsers(passwordHash string) []models.User {
	return []models.User{
		{ID: "U001", Username: "admin", Name: "Admin User", Email: "admin@poultryops.local", Phone: "+91 9000000001", Role: models.RoleAdmin, PasswordHash: passwordHash, Status: models.StatusActive},
		{ID: "U002", Username: "john", Name: "John Doe", Email: "john@poultryops.local", Phone: "+91 9000000002", Role: models.RoleSupervisor, AssignedFarms: []string{"F2024-001"}, PasswordHash: passwordHash, Status: models.StatusActive},
		{ID: "U003", Username: "jane", Name: "Jane Smith", Email: "jane@poultryops.local", Phone: "+91 9000000003", Role: models.RoleSupervisor, AssignedFarms: []string{"F2024-002"}, PasswordHash: passwordHash, Status: models.StatusActive},
		{ID: "U004", Username: "sales", Name: "Sales Team", Email: "sales@poultryops.local", Phone: "+91 9000000004", Role: models.RoleMarketing, PasswordHash: passwordHash, Status: models.StatusActive},
		{ID: "U005", Username: "rajesh", Name: "Rajesh Kumar", Email: "rajesh@rkfarms.local", Phone: "+91 9876543210", Role: models.RoleFarmer, AssignedFarms: []string{"F2024-001"}, PasswordHash: passwordHash, Status: models.StatusActive},
	}
}
