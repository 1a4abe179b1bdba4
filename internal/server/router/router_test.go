package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/poultryops/internal/auth"
	"github.com/mamadbah2/poultryops/internal/config"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/repository/memory"
	"github.com/mamadbah2/poultryops/internal/server/handlers"
	"github.com/mamadbah2/poultryops/internal/service/batches"
	"github.com/mamadbah2/poultryops/internal/service/dashboard"
	"github.com/mamadbah2/poultryops/internal/service/inventory"
	"github.com/mamadbah2/poultryops/internal/service/masterdata"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
	"github.com/mamadbah2/poultryops/internal/service/registry"
)

const testPassword = "poultry-demo-1"

var (
	hashOnce sync.Once
	hash     string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		var err error
		hash, err = auth.HashPassword(testPassword)
		require.NoError(t, err)
	})
	return hash
}

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.SeedSampleData(context.Background(), store, nil, passwordHash(t)))

	rules := config.DefaultRules()
	calc := metrics.NewCalculator(rules)
	prices := masterdata.NewService(store, rules, nil)
	ledger := batches.NewService(store, store, calc, nil, batches.WithPriceList(prices))
	reg := registry.NewService(store, store, calc, nil)
	stock := inventory.NewService(store, rules, nil)
	tokens := auth.NewJWTManager(config.AuthConfig{JWTSecret: "test-secret-0123456789", TokenTTLHours: 1, Issuer: "poultryops"})

	engine := New(Handlers{
		Auth:       handlers.NewAuthHandler(auth.NewService(store, tokens, nil), nil),
		Batches:    handlers.NewBatchHandler(ledger, nil),
		Registry:   handlers.NewRegistryHandler(reg, nil),
		MasterData: handlers.NewMasterDataHandler(prices, nil),
		Inventory:  handlers.NewInventoryHandler(stock, dashboard.NewService(store, stock, nil), rules.ActivityPageSize, nil),
		Export:     handlers.NewExportHandler(ledger, reg, nil, nil),
		Snapshots:  handlers.NewSnapshotHandler(nil, nil),
	}, tokens, store, nil)

	return &testServer{handler: WithCORS(engine, []string{"http://localhost:5173"}), store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := srv.login(t, "john")
	rec = srv.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"supervisor"`)
}

func TestAuthenticationRequired(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestDeactivatedUserRejected(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "jane")

	u, err := srv.store.GetUser(context.Background(), "U003")
	require.NoError(t, err)
	u.Status = models.StatusInactive
	require.NoError(t, srv.store.UpdateUser(context.Background(), u))

	rec := srv.do(t, http.MethodGet, "/api/v1/batches", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListBatches(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "rajesh")

	rec := srv.do(t, http.MethodGet, "/api/v1/batches?activeOnly=true&q=suresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items      []models.Batch `json:"items"`
		TotalItems int            `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B2024-002", page.Items[0].BatchCode)

	rec = srv.do(t, http.MethodGet, "/api/v1/batches?page=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/batches/B2099-001", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDailyEntryRoles(t *testing.T) {
	srv := newTestServer(t)
	entry := map[string]any{"date": "2024-04-19", "mortality": 2, "feedUsed": 100, "avgWeight": 2550}

	rec := srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/daily", srv.login(t, "sales"), entry)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	john := srv.login(t, "john")
	rec = srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/daily", john, entry)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Batch models.Batch      `json:"batch"`
		Entry models.DailyEntry `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 4490, out.Batch.CurrentBirds)
	assert.Equal(t, 10, out.Batch.TotalMortality)
	assert.Equal(t, "John Doe", out.Entry.AddedBy)

	rec = srv.do(t, http.MethodPost, "/api/v1/batches/B2024-003/daily", john, entry)
	assert.Equal(t, http.StatusConflict, rec.Code)

	entry["mortality"] = 10000
	rec = srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/daily", john, entry)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSalesQuote(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "sales")

	rec := srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/sales/quote", token, map[string]any{"birds": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quote struct {
		Birds         int     `json:"birds"`
		AvgWeight     float64 `json:"avgWeight"`
		PricePerKg    float64 `json:"pricePerKg"`
		TotalWeightKg float64 `json:"totalWeightKg"`
		TotalAmount   float64 `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 2500.0, quote.AvgWeight)
	assert.Equal(t, 250.0, quote.PricePerKg, "price list band for 2001-3000g")
	assert.Equal(t, 1250.0, quote.TotalWeightKg)
	assert.Equal(t, 312500.0, quote.TotalAmount)

	rec = srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/sales/quote", token, map[string]any{"birds": 500, "avgWeight": 1800})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 230.0, quote.PricePerKg)
	assert.Equal(t, 207000.0, quote.TotalAmount)

	rec = srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/sales/quote", token, map[string]any{"birds": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalAmount":0`)
}

func TestActivities(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "admin")

	rec := srv.do(t, http.MethodGet, "/api/v1/activities/daily?ids=F2024-002", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items []models.Activity `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "B2024-002", page.Items[0].BatchNumber)

	rec = srv.do(t, http.MethodGet, "/api/v1/activities/weather", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListingsRejectMalformedDates(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "admin")

	for _, path := range []string{
		"/api/v1/batches?startDate=2024-13-01",
		"/api/v1/activities/sales?endDate=yesterday",
		"/api/v1/purchases?startDate=01/03/2024",
		"/api/v1/export/batches?endDate=2024-4-1",
	} {
		rec := srv.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "YYYY-MM-DD", path)
	}

	rec := srv.do(t, http.MethodGet, "/api/v1/activities/sales?startDate=2024-04-01&endDate=2024-04-30", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompleteWithFarmerShare(t *testing.T) {
	srv := newTestServer(t)
	john := srv.login(t, "john")

	rec := srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/complete", john, map[string]any{"endDate": "2024-04-20", "farmerShare": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/complete", john, map[string]any{"endDate": "2024-04-20", "farmerShare": 100000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/batches/B2024-001/metrics", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m metrics.BatchMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 150000.0, m.Financials.GrossAmount)
	assert.Equal(t, 100000.0, m.Financials.FarmerShare)
	assert.Equal(t, 50000.0, m.Financials.CompanyShare)
	assert.Equal(t, 120000.0, m.Settlement.FarmerShare, "rate-based settlement is still reported")
}

func TestMasterData(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "admin")
	john := srv.login(t, "john")

	rec := srv.do(t, http.MethodGet, "/api/v1/masterdata/bird-types?activeOnly=true", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []models.BirdType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	assert.Len(t, types, 6)

	rec = srv.do(t, http.MethodGet, "/api/v1/masterdata/price?chickType=TN%20Aseel&weight=2500&date=2024-04-18", john, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote masterdata.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 250.0, quote.PricePerKg)
	assert.Equal(t, masterdata.SourceBand, quote.Source)

	rec = srv.do(t, http.MethodGet, "/api/v1/masterdata/price?chickType=TN%20Aseel", john, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(t, http.MethodGet, "/api/v1/masterdata/price?chickType=TN%20Aseel&weight=2500&date=someday", john, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	band := map[string]any{"birdTypeId": "BT01", "name": "Heavy", "minWeightGrams": 3001, "maxWeightGrams": 4000, "pricePerKg": 260, "effectiveFrom": "2024-01-01"}
	rec = srv.do(t, http.MethodPost, "/api/v1/masterdata/prices", john, band)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = srv.do(t, http.MethodPost, "/api/v1/masterdata/prices", admin, band)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	band["birdTypeId"] = "BT99"
	rec = srv.do(t, http.MethodPost, "/api/v1/masterdata/prices", admin, band)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/v1/masterdata/bird-types/BT99", admin, map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/masterdata/rates", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rates masterdata.Rates
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rates))
	assert.Equal(t, 1.5, rates.Standards.FCR)
	assert.Equal(t, 75.0, rates.Farmer.SharePercent)
}

func TestInventoryAndPurchases(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "admin")

	rec := srv.do(t, http.MethodGet, "/api/v1/inventory", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stock inventory.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stock))
	assert.Equal(t, 266.4, stock.FeedBags)
	assert.Len(t, stock.Items, 6)

	rec = srv.do(t, http.MethodGet, "/api/v1/purchases?type=feed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ledger struct {
		Items         []inventory.Purchase `json:"items"`
		TotalItems    int                  `json:"totalItems"`
		FeedTotal     float64              `json:"feedTotal"`
		MedicineTotal float64              `json:"medicineTotal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ledger))
	assert.Equal(t, 3, ledger.TotalItems)
	assert.Equal(t, 737000.0, ledger.FeedTotal)
	assert.Zero(t, ledger.MedicineTotal)

	rec = srv.do(t, http.MethodGet, "/api/v1/purchases?type=vaccines", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/dashboard", srv.login(t, "rajesh"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary dashboard.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.ActiveBatches)
	assert.Equal(t, 1468050.0, summary.GrossAmount)
	assert.Equal(t, 359512.5, summary.CompanyShare)
	assert.Equal(t, 3, summary.ActiveFarmers)
}

func TestUsersAdminOnly(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/users", srv.login(t, "john"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/users?role=supervisor", srv.login(t, "admin"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestExports(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "admin")

	rec := srv.do(t, http.MethodGet, "/api/v1/export/batches", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "batches-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Batch Code,"))

	rec = srv.do(t, http.MethodGet, "/api/v1/export/batches?status=archived", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/batches/B2024-001/report", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = srv.do(t, http.MethodPost, "/api/v1/batches/B2024-001/report/archive", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/batches/B2024-001/snapshots", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPincodeUnavailable(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/api/v1/pincode/521101", srv.login(t, "admin"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/batches", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/healthz", "", nil)

	rec := srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "poultryops_http_requests_total")
}
