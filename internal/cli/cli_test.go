package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/CarRentLink/CarRentLink/internal/rental"
)

func startService(t *testing.T) *httptest.Server {
	t.Helper()
	svc := rental.NewService(rental.NewRegistry(), nil)
	r := chi.NewRouter()
	rental.NewHTTPServer(svc).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestSeedRentReturnReport(t *testing.T) {
	srv := startService(t)

	carsPath := writeFixture(t, "cars.json", `[
		{"id": "C001", "make": "Toyota", "model": "Camry", "daily_rate": 45.0},
		{"id": "C002", "make": "Honda", "model": "Civic", "daily_rate": 40.0}
	]`)
	custPath := writeFixture(t, "customers.csv", "customer_id,name\nCUST001,John Smith")

	out, err := runCmd(t, "--addr", srv.URL, "seed", "--cars", carsPath, "--customers", custPath)
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "seeded 2 cars") || !strings.Contains(out, "seeded 1 customers") {
		t.Fatalf("unexpected seed output:\n%s", out)
	}

	out, err = runCmd(t, "--addr", srv.URL, "rent", "CUST001", "C001", "--days", "3")
	if err != nil {
		t.Fatalf("rent: %v\n%s", err, out)
	}
	if !strings.Contains(out, "total $135.00") {
		t.Fatalf("unexpected rent output:\n%s", out)
	}

	out, err = runCmd(t, "--addr", srv.URL, "report")
	if err != nil {
		t.Fatalf("report: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Active Rentals:    1") {
		t.Fatalf("unexpected report output:\n%s", out)
	}

	out, err = runCmd(t, "--addr", srv.URL, "return", "C001")
	if err != nil {
		t.Fatalf("return: %v\n%s", err, out)
	}
	if !strings.Contains(out, "car C001 returned") {
		t.Fatalf("unexpected return output:\n%s", out)
	}
}

func TestRentErrorsSurface(t *testing.T) {
	srv := startService(t)

	if _, err := runCmd(t, "--addr", srv.URL, "rent", "NOPE", "C001"); err == nil {
		t.Fatalf("expected error for unknown ids")
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"car C001: car unavailable"}`, http.StatusConflict)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "")
	err := client.PostJSON(context.Background(), "/v1/rentals", map[string]any{}, nil)
	if err == nil || !strings.Contains(err.Error(), "car unavailable") {
		t.Fatalf("expected API error to surface, got %v", err)
	}
}
