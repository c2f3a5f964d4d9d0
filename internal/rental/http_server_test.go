package rental

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestHTTPServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := NewService(NewRegistry(), nil)
	r := chi.NewRouter()
	NewHTTPServer(svc).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestHTTPSpecScenario(t *testing.T) {
	srv := newTestHTTPServer(t)

	// add_car("C001","Toyota","Camry")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/cars", map[string]any{
		"id": "C001", "make": "Toyota", "model": "Camry", "year": 2022, "daily_rate": 45,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add car: expected 201, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/customers", map[string]any{
		"id": "CUST1", "name": "John Smith",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add customer: expected 201, got %d", resp.StatusCode)
	}

	// rent_car("CUST1","C001") → 可租列表排除 C001
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/rentals", map[string]any{
		"customer_id": "CUST1", "car_id": "C001",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("rent: expected 201, got %d", resp.StatusCode)
	}

	resp, out := doJSON(t, http.MethodGet, srv.URL+"/v1/cars?available=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list available: expected 200, got %d", resp.StatusCode)
	}
	if total, _ := out["total"].(float64); total != 0 {
		t.Fatalf("expected no available cars after rent, got %v", out["total"])
	}

	// return_car("C001") → 重新可租
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/rentals/return", map[string]any{"car_id": "C001"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("return: expected 200, got %d", resp.StatusCode)
	}

	resp, out = doJSON(t, http.MethodGet, srv.URL+"/v1/cars?available=1", nil)
	if total, _ := out["total"].(float64); total != 1 {
		t.Fatalf("expected C001 available again, got %v", out["total"])
	}
	_ = resp
}

func TestHTTPErrorMapping(t *testing.T) {
	srv := newTestHTTPServer(t)

	seed := func() {
		doJSON(t, http.MethodPost, srv.URL+"/v1/cars", map[string]any{"id": "C001", "make": "Toyota", "model": "Camry"})
		doJSON(t, http.MethodPost, srv.URL+"/v1/customers", map[string]any{"id": "CUST1", "name": "John Smith"})
	}
	seed()

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"duplicate car", http.MethodPost, "/v1/cars", map[string]any{"id": "C001", "make": "Honda", "model": "Civic"}, http.StatusConflict},
		{"unknown car", http.MethodGet, "/v1/cars/NOPE", nil, http.StatusNotFound},
		{"unknown customer rent", http.MethodPost, "/v1/rentals", map[string]any{"customer_id": "NOPE", "car_id": "C001"}, http.StatusNotFound},
		{"return never rented", http.MethodPost, "/v1/rentals/return", map[string]any{"car_id": "C001"}, http.StatusConflict},
		{"missing ids", http.MethodPost, "/v1/rentals", map[string]any{}, http.StatusBadRequest},
		{"bad year", http.MethodPost, "/v1/cars", map[string]any{"id": "C002", "make": "Honda", "model": "Civic", "year": 1800}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, _ := doJSON(t, tc.method, srv.URL+tc.path, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}

	// 已租出车辆再次租出 → 409
	doJSON(t, http.MethodPost, srv.URL+"/v1/rentals", map[string]any{"customer_id": "CUST1", "car_id": "C001"})
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/rentals", map[string]any{"customer_id": "CUST1", "car_id": "C001"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double rent: expected 409, got %d", resp.StatusCode)
	}
}

func TestHTTPSummaryAndStatus(t *testing.T) {
	srv := newTestHTTPServer(t)

	for i := 1; i <= 2; i++ {
		doJSON(t, http.MethodPost, srv.URL+"/v1/cars", map[string]any{
			"id": fmt.Sprintf("C%03d", i), "make": "Toyota", "model": "Camry", "daily_rate": 40,
		})
	}
	doJSON(t, http.MethodPost, srv.URL+"/v1/customers", map[string]any{"id": "CUST1", "name": "Jane Doe"})

	// 维保下线
	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/v1/cars/C002/status", map[string]any{"status": "maintenance"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set status: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/rentals", map[string]any{"customer_id": "CUST1", "car_id": "C002"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("rent maintenance car: expected 409, got %d", resp.StatusCode)
	}

	doJSON(t, http.MethodPost, srv.URL+"/v1/rentals", map[string]any{"customer_id": "CUST1", "car_id": "C001", "days": 2})

	resp, out := doJSON(t, http.MethodGet, srv.URL+"/v1/summary", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", resp.StatusCode)
	}
	sum, _ := out["summary"].(map[string]any)
	if sum == nil {
		t.Fatalf("missing summary payload: %v", out)
	}
	if sum["total_cars"].(float64) != 2 || sum["active_rentals"].(float64) != 1 {
		t.Fatalf("summary payload wrong: %v", sum)
	}
	if util, _ := out["utilization"].(float64); util != 50 {
		t.Fatalf("utilization: got %v, want 50", out["utilization"])
	}
}
