package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CarRentLink/CarRentLink/internal/rental"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCarsJSON(t *testing.T) {
	path := writeFile(t, "cars.json", `[
		{"id": "C001", "make": "Toyota", "model": "Camry", "year": 2022, "daily_rate": 45.0},
		{"id": "C002", "make": "Honda", "model": "Civic", "year": 2021, "daily_rate": 40.0}
	]`)

	cars, err := LoadCarsJSON(path)
	if err != nil {
		t.Fatalf("LoadCarsJSON: %v", err)
	}
	if len(cars) != 2 {
		t.Fatalf("expected 2 cars, got %d", len(cars))
	}
	if cars[0].ID != "C001" || !cars[0].Available() {
		t.Fatalf("first car wrong: %+v", cars[0])
	}
}

func TestLoadCarsJSONRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad year", `[{"id": "C001", "make": "Toyota", "model": "Camry", "year": 1800}]`},
		{"negative rate", `[{"id": "C001", "make": "Toyota", "model": "Camry", "daily_rate": -1}]`},
		{"missing make", `[{"id": "C001", "model": "Camry"}]`},
		{"not json", `{nope`},
	}
	for _, tc := range cases {
		path := writeFile(t, "cars.json", tc.body)
		if _, err := LoadCarsJSON(path); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadCustomersCSV(t *testing.T) {
	path := writeFile(t, "customers.csv", strings.Join([]string{
		"customer_id,name,email,phone",
		"CUST001,John Smith,john.smith@email.com,555-0101",
		"CUST002,Jane Doe,jane.doe@email.com,555-0102",
	}, "\n"))

	customers, err := LoadCustomersCSV(path)
	if err != nil {
		t.Fatalf("LoadCustomersCSV: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(customers))
	}
	if customers[1].ID != "CUST002" || customers[1].Email != "jane.doe@email.com" {
		t.Fatalf("second customer wrong: %+v", customers[1])
	}
}

func TestLoadCustomersCSVRejectsInvalid(t *testing.T) {
	path := writeFile(t, "customers.csv", strings.Join([]string{
		"customer_id,name,email,phone",
		"CUST001,John Smith,invalid-email,555-0101",
	}, "\n"))
	if _, err := LoadCustomersCSV(path); err == nil {
		t.Fatalf("expected error for invalid email")
	}

	path = writeFile(t, "customers.csv", "name,email\nJohn Smith,john@e.com")
	if _, err := LoadCustomersCSV(path); err == nil {
		t.Fatalf("expected error for missing customer_id column")
	}
}

func TestGenerateReport(t *testing.T) {
	svc := rental.NewService(rental.NewRegistry(), nil)
	ctx := context.Background()

	carsPath := writeFile(t, "cars.json", `[
		{"id": "C001", "make": "Toyota", "model": "Camry", "daily_rate": 45.0},
		{"id": "C002", "make": "Honda", "model": "Civic", "daily_rate": 40.0}
	]`)
	custPath := writeFile(t, "customers.csv", "customer_id,name\nCUST001,John Smith")

	cars, err := LoadCarsJSON(carsPath)
	if err != nil {
		t.Fatalf("LoadCarsJSON: %v", err)
	}
	for _, c := range cars {
		if err := svc.AddCar(ctx, c); err != nil {
			t.Fatalf("AddCar: %v", err)
		}
	}
	customers, err := LoadCustomersCSV(custPath)
	if err != nil {
		t.Fatalf("LoadCustomersCSV: %v", err)
	}
	for _, c := range customers {
		if err := svc.AddCustomer(ctx, c); err != nil {
			t.Fatalf("AddCustomer: %v", err)
		}
	}
	if _, err := svc.RentCar(ctx, "CUST001", "C001", 1); err != nil {
		t.Fatalf("RentCar: %v", err)
	}

	report := GenerateReport(svc)
	for _, want := range []string{
		"Total Cars in Fleet: 2",
		"Available Cars: 1",
		"Active Rentals: 1",
		"Fleet Utilization: 50.0%",
		"Honda Civic (C002)",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
