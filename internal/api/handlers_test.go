package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/fleetworks/fleetledger/internal/auth"
	"github.com/fleetworks/fleetledger/internal/scheduler"
	"github.com/fleetworks/fleetledger/internal/service"
	"github.com/fleetworks/fleetledger/internal/storage/sqlite"
)

// setupTestServer starts the full HTTP stack over a temp database and
// returns an authenticated bearer token.
func setupTestServer(t *testing.T) (*httptest.Server, string, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "fleetledger-api-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret-key-for-tests", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	cfg := scheduler.Config{}

	handler := NewHandler(
		authenticator,
		jwtManager,
		service.NewFleetService(store, logger),
		service.NewSettlementService(store, cfg, logger),
		service.NewSummaryService(store, cfg),
		logger,
	)
	server := httptest.NewServer(handler.Router())

	// Register an operator and capture the token.
	resp := postJSON(t, server, "", "/register", map[string]string{
		"email":        "ops@example.com",
		"display_name": "Fleet Ops",
		"password":     "correct-horse",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d", resp.StatusCode)
	}
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}
	return server, reg.Token, cleanup
}

func postJSON(t *testing.T, server *httptest.Server, token, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, server *httptest.Server, token, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func createTestVehicle(t *testing.T, server *httptest.Server, token string) string {
	t.Helper()
	resp := postJSON(t, server, token, "/vehicles", map[string]interface{}{
		"registration":   "KA-01-1234",
		"is_partnership": true,
		"loan": map[string]interface{}{
			"principal": "500000",
			"schedule": []map[string]string{
				{"due_date": "2026-01-10", "amount": "5000"},
				{"due_date": "2026-02-10", "amount": "5000"},
			},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create vehicle returned %d", resp.StatusCode)
	}
	var v struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode vehicle response: %v", err)
	}
	return v.ID
}

func TestAuthRequired(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	resp := getJSON(t, server, "", "/vehicles")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp2 := getJSON(t, server, "not-a-token", "/vehicles")
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", resp2.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, server, "", "/login", map[string]string{
		"email":    "ops@example.com",
		"password": "correct-horse",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}

	bad := postJSON(t, server, "", "/login", map[string]string{
		"email":    "ops@example.com",
		"password": "wrong-password",
	})
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", bad.StatusCode)
	}
}

func TestVehicleLifecycle(t *testing.T) {
	server, token, cleanup := setupTestServer(t)
	defer cleanup()

	vehicleID := createTestVehicle(t, server, token)

	resp := getJSON(t, server, token, "/vehicles/"+vehicleID+"/obligations")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("obligations returned %d", resp.StatusCode)
	}
	var obligations struct {
		EMIs  []map[string]interface{} `json:"emis"`
		Rents []map[string]interface{} `json:"rents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obligations); err != nil {
		t.Fatalf("failed to decode obligations: %v", err)
	}
	if len(obligations.EMIs) != 2 {
		t.Errorf("expected 2 EMI obligations, got %d", len(obligations.EMIs))
	}
	if len(obligations.Rents) != 0 {
		t.Errorf("expected no rent obligations, got %d", len(obligations.Rents))
	}

	missing := getJSON(t, server, token, "/vehicles/nope/obligations")
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown vehicle, got %d", missing.StatusCode)
	}
}

func TestSettlementFlow(t *testing.T) {
	server, token, cleanup := setupTestServer(t)
	defer cleanup()

	vehicleID := createTestVehicle(t, server, token)

	// January: 20000 earned, 10000 spent.
	jan := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC).Unix()
	earnResp := postJSON(t, server, token, "/vehicles/"+vehicleID+"/earnings", []map[string]interface{}{
		{"amount_paid": "20000", "earned_at": jan, "status": "paid"},
	})
	earnResp.Body.Close()
	if earnResp.StatusCode != http.StatusCreated {
		t.Fatalf("earnings returned %d", earnResp.StatusCode)
	}
	expResp := postJSON(t, server, token, "/vehicles/"+vehicleID+"/expenses", []map[string]interface{}{
		{"amount": "10000", "incurred_at": jan, "status": "approved"},
	})
	expResp.Body.Close()
	if expResp.StatusCode != http.StatusCreated {
		t.Fatalf("expenses returned %d", expResp.StatusCode)
	}

	// Summary for January.
	sumResp := getJSON(t, server, token, "/vehicles/"+vehicleID+"/summary?type=monthly&year=2026&month=1")
	defer sumResp.Body.Close()
	if sumResp.StatusCode != http.StatusOK {
		t.Fatalf("summary returned %d", sumResp.StatusCode)
	}
	var summary struct {
		Profit     string `json:"profit"`
		Components []struct {
			Type        string `json:"type"`
			Computed    string `json:"computed"`
			Outstanding string `json:"outstanding"`
		} `json:"components"`
	}
	if err := json.NewDecoder(sumResp.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.Profit != "10000" {
		t.Errorf("expected profit 10000, got %s", summary.Profit)
	}

	// Pay the GST for January.
	batchResp := postJSON(t, server, token, "/settlements", map[string]interface{}{
		"instructions": []map[string]interface{}{
			{
				"vehicle_id": vehicleID,
				"component":  "gst",
				"period":     map[string]interface{}{"type": "monthly", "year": 2026, "month": 1},
			},
		},
	})
	defer batchResp.Body.Close()
	if batchResp.StatusCode != http.StatusOK {
		t.Fatalf("settlements returned %d", batchResp.StatusCode)
	}
	var batch struct {
		BatchID      string `json:"batch_id"`
		SuccessCount int    `json:"success_count"`
		FailureCount int    `json:"failure_count"`
		Applied      []struct {
			Amount string `json:"amount"`
		} `json:"applied"`
	}
	if err := json.NewDecoder(batchResp.Body).Decode(&batch); err != nil {
		t.Fatalf("failed to decode batch: %v", err)
	}
	if batch.SuccessCount != 1 || batch.FailureCount != 0 {
		t.Fatalf("expected clean batch, got %+v", batch)
	}
	if len(batch.Applied) != 1 || batch.Applied[0].Amount != "400" {
		t.Errorf("expected GST 400 applied, got %+v", batch.Applied)
	}

	// Receipt for the batch.
	receipt := getJSON(t, server, token, "/settlements/"+batch.BatchID+"/receipt.pdf")
	defer receipt.Body.Close()
	if receipt.StatusCode != http.StatusOK {
		t.Errorf("receipt returned %d", receipt.StatusCode)
	}
	if ct := receipt.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected pdf content type, got %s", ct)
	}

	// Balances: the payout debited the vehicle and the company.
	balResp := getJSON(t, server, token, "/balances")
	defer balResp.Body.Close()
	var balances []struct {
		EntityID string `json:"entity_id"`
		Amount   string `json:"amount"`
	}
	if err := json.NewDecoder(balResp.Body).Decode(&balances); err != nil {
		t.Fatalf("failed to decode balances: %v", err)
	}
	found := false
	for _, b := range balances {
		if b.EntityID == vehicleID {
			found = true
			if b.Amount != "-400" {
				t.Errorf("expected vehicle balance -400, got %s", b.Amount)
			}
		}
	}
	if !found {
		t.Error("expected a balance row for the vehicle")
	}

	// Statement workbook for the period.
	stmt := getJSON(t, server, token, "/vehicles/"+vehicleID+"/statement.xlsx?type=monthly&year=2026&month=1")
	defer stmt.Body.Close()
	if stmt.StatusCode != http.StatusOK {
		t.Errorf("statement returned %d", stmt.StatusCode)
	}
}

func TestSettlementMonthFilter(t *testing.T) {
	server, token, cleanup := setupTestServer(t)
	defer cleanup()

	vehicleID := createTestVehicle(t, server, token)

	// January is profitable, February runs at a loss.
	jan := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC).Unix()
	feb := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC).Unix()
	earnResp := postJSON(t, server, token, "/vehicles/"+vehicleID+"/earnings", []map[string]interface{}{
		{"amount_paid": "20000", "earned_at": jan, "status": "paid"},
		{"amount_paid": "1000", "earned_at": feb, "status": "paid"},
	})
	earnResp.Body.Close()
	expResp := postJSON(t, server, token, "/vehicles/"+vehicleID+"/expenses", []map[string]interface{}{
		{"amount": "10000", "incurred_at": jan, "status": "approved"},
		{"amount": "6000", "incurred_at": feb, "status": "approved"},
	})
	expResp.Body.Close()

	// Pay GST for January only out of Q1.
	batchResp := postJSON(t, server, token, "/settlements", map[string]interface{}{
		"instructions": []map[string]interface{}{
			{
				"vehicle_id": vehicleID,
				"component":  "gst",
				"period":     map[string]interface{}{"type": "quarterly", "year": 2026, "quarter": 1},
				"months":     []int{1},
			},
		},
	})
	defer batchResp.Body.Close()
	if batchResp.StatusCode != http.StatusOK {
		t.Fatalf("settlements returned %d", batchResp.StatusCode)
	}
	var batch struct {
		SuccessCount int `json:"success_count"`
		Applied      []struct {
			Amount    string `json:"amount"`
			PeriodKey string `json:"period_key"`
		} `json:"applied"`
	}
	if err := json.NewDecoder(batchResp.Body).Decode(&batch); err != nil {
		t.Fatalf("failed to decode batch: %v", err)
	}
	if batch.SuccessCount != 1 || len(batch.Applied) != 1 {
		t.Fatalf("expected one applied payment, got %+v", batch)
	}
	if batch.Applied[0].Amount != "400" || batch.Applied[0].PeriodKey != "2026-01" {
		t.Errorf("expected GST 400 for 2026-01, got %+v", batch.Applied[0])
	}

	// A month filter on an obligation instruction is rejected.
	bad := postJSON(t, server, token, "/settlements", map[string]interface{}{
		"instructions": []map[string]interface{}{
			{"vehicle_id": vehicleID, "class": "emi", "indices": []int{0}, "months": []int{1}},
		},
	})
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for months on obligation instruction, got %d", bad.StatusCode)
	}
}

func TestSettlementRejectsAmbiguousInstruction(t *testing.T) {
	server, token, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, server, token, "/settlements", map[string]interface{}{
		"instructions": []map[string]interface{}{
			{"vehicle_id": "veh-1", "class": "emi", "component": "gst", "indices": []int{0}},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for ambiguous instruction, got %d", resp.StatusCode)
	}
}
