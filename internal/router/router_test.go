package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-insurance-api/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_PolicyAndClaimFlow(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"
	agentID := "agent-1"

	// 1) Owner registra su mascota
	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":          "Milo",
		"species":       "dog",
		"breed":         "mixed",
		"gender":        "male",
		"weight":        18.5,
		"date_of_birth": time.Now().AddDate(-3, 0, 0).Format("2006-01-02"),
	})

	// 2) Cotización pura, sin persistir
	{
		st, body := doReq(t, ts.URL, "POST", "/policies/quote", ownerID, "owner", map[string]any{
			"coverage_type": "premium",
			"species":       "dog",
			"age_years":     3,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 quote, got %d body=%s", st, string(body))
		}
		var quote struct {
			Premium        float64 `json:"premium"`
			CoverageAmount float64 `json:"coverage_amount"`
			Deductible     float64 `json:"deductible"`
		}
		_ = json.Unmarshal(body, &quote)
		if quote.Premium != 3000 || quote.CoverageAmount != 50000 || quote.Deductible != 100 {
			t.Fatalf("unexpected quote: %+v", quote)
		}
	}

	// 3) Owner contrata la póliza
	policyID := createPolicy(t, ts.URL, ownerID, petID)

	// 4) Owner abre un claim
	claimID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/claims", ownerID, "owner", map[string]any{
			"policy_id":     policyID,
			"incident_date": time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
			"description":   "surgery after accident",
			"claim_type":    "surgery",
			"claim_amount":  5000,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create claim, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" || resp.Status != "pending" {
			t.Fatalf("unexpected claim: %s", string(body))
		}
		claimID = resp.ID
	}

	// 5) Owner NO puede aprobar su propio claim
	{
		st, _ := doReq(t, ts.URL, "POST", "/claims/"+claimID+"/approve", ownerID, "owner", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 approve by owner, got %d", st)
		}
	}

	// 6) Pagar antes de aprobar => conflicto
	{
		st, _ := doReq(t, ts.URL, "POST", "/claims/"+claimID+"/pay", agentID, "agent", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 pay before approve, got %d", st)
		}
	}

	// 7) Agente revisa y aprueba: el settlement calcula el monto
	{
		st, body := doReq(t, ts.URL, "POST", "/claims/"+claimID+"/review", agentID, "agent", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 review, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "POST", "/claims/"+claimID+"/approve", agentID, "agent", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status         string  `json:"status"`
			ApprovedAmount float64 `json:"approved_amount"`
		}
		_ = json.Unmarshal(body, &resp)
		// 5000 - 100 de deducible premium
		if resp.Status != "approved" || resp.ApprovedAmount != 4900 {
			t.Fatalf("unexpected approve result: %s", string(body))
		}
	}

	// 8) Pagar
	{
		st, body := doReq(t, ts.URL, "POST", "/claims/"+claimID+"/pay", agentID, "agent", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 pay, got %d body=%s", st, string(body))
		}

		// paid es terminal
		st, _ = doReq(t, ts.URL, "POST", "/claims/"+claimID+"/pay", agentID, "agent", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 double pay, got %d", st)
		}
	}
}

func TestHTTP_IoTIngest_CriticalCreatesClaim(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "owner-1"

	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":          "Nina",
		"species":       "cat",
		"date_of_birth": time.Now().AddDate(-2, 0, 0).Format("2006-01-02"),
	})
	createPolicy(t, ts.URL, ownerID, petID)

	reading := map[string]any{
		"device_id": "collar-9",
		"pet_id":    petID,
		"sensors": map[string]any{
			"temperature":    41.5,
			"heart_rate":     220,
			"activity_level": 5,
		},
		"health": map[string]any{
			"status":             "critical",
			"health_index":       12,
			"anomaly_count":      3,
			"vet_recommendation": "URGENT",
			"alert_message":      "heart rate out of range",
		},
	}

	// La ingesta no requiere usuario: autentica por device_id.
	st, body := doReq(t, ts.URL, "POST", "/iot/readings", "", "", reading)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 ingest, got %d body=%s", st, string(body))
	}

	// El claim automático debe existir, con origen iot_device
	st, body = doReq(t, ts.URL, "GET", "/claims", ownerID, "owner", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list claims, got %d body=%s", st, string(body))
	}
	var claims []struct {
		Source string `json:"source"`
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &claims)
	if len(claims) != 1 || claims[0].Source != "iot_device" || claims[0].Status != "pending" {
		t.Fatalf("expected one pending iot claim, got %s", string(body))
	}

	// Segunda lectura crítica dentro de la hora: dedup, sigue habiendo 1 claim
	st, _ = doReq(t, ts.URL, "POST", "/iot/readings", "", "", reading)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 on second ingest, got %d", st)
	}
	st, body = doReq(t, ts.URL, "GET", "/claims", ownerID, "owner", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list claims, got %d", st)
	}
	claims = nil
	_ = json.Unmarshal(body, &claims)
	if len(claims) != 1 {
		t.Fatalf("dedup broken: expected 1 claim, got %d", len(claims))
	}

	// Telemetría visible para el owner
	st, body = doReq(t, ts.URL, "GET", "/iot/pets/"+petID+"/latest", ownerID, "owner", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 latest reading, got %d body=%s", st, string(body))
	}

	// Pero no para otro owner
	st, _ = doReq(t, ts.URL, "GET", "/iot/pets/"+petID+"/latest", "owner-2", "owner", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 latest for stranger, got %d", st)
	}
}

func TestHTTP_RoleGates(t *testing.T) {
	ts := newTestServer(t)

	// admin-only
	{
		st, _ := doReq(t, ts.URL, "GET", "/admin/dashboard", "user-1", "owner", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 dashboard for owner, got %d", st)
		}
		st, body := doReq(t, ts.URL, "GET", "/admin/dashboard", "admin-1", "admin", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 dashboard for admin, got %d body=%s", st, string(body))
		}
	}

	// historial clínico: solo veterinario escribe
	{
		st, _ := doReq(t, ts.URL, "POST", "/medical-records", "agent-1", "agent", map[string]any{
			"pet_id":      "whatever",
			"visit_date":  "2026-01-15",
			"record_type": "checkup",
			"description": "annual checkup",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 medical record by agent, got %d", st)
		}
	}

	// clínicas: alta solo admin
	{
		st, _ := doReq(t, ts.URL, "POST", "/clinics", "agent-1", "agent", map[string]any{
			"name": "VetCare",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 create clinic by agent, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", "/clinics", "admin-1", "admin", map[string]any{
			"name":    "VetCare",
			"address": map[string]any{"city": "Lima"},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create clinic by admin, got %d body=%s", st, string(body))
		}
	}

	// sin usuario => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/policies", "", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, "owner", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func createPolicy(t *testing.T, baseURL, ownerID, petID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/policies", ownerID, "owner", map[string]any{
		"pet_id":        petID,
		"coverage_type": "premium",
		"start_date":    time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		"end_date":      time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create policy, got %d body=%s", st, string(body))
	}

	var resp struct {
		Policy struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"policy"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Policy.ID == "" {
		t.Fatalf("create policy: missing id body=%s", string(body))
	}
	if resp.Policy.Status != "active" {
		t.Fatalf("expected active policy, got %s", resp.Policy.Status)
	}
	return resp.Policy.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		req.Header.Set("X-Debug-Role", debugRole)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody
}
