package rental

import (
	"errors"
	"testing"
	"time"

	"github.com/CarRentLink/CarRentLink/internal/car"
	"github.com/CarRentLink/CarRentLink/internal/customer"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	cars := []*car.Car{
		{ID: "C001", Make: "Toyota", Model: "Camry", Year: 2022, DailyRate: 45},
		{ID: "C002", Make: "Honda", Model: "Civic", Year: 2021, DailyRate: 40},
		{ID: "C003", Make: "Ford", Model: "Focus", Year: 2023, DailyRate: 50},
	}
	for _, c := range cars {
		if err := r.AddCar(c); err != nil {
			t.Fatalf("AddCar(%s): %v", c.ID, err)
		}
	}
	custs := []*customer.Customer{
		{ID: "CUST001", Name: "John Smith", Email: "john.smith@email.com"},
		{ID: "CUST002", Name: "Jane Doe", Email: "jane.doe@email.com"},
	}
	for _, c := range custs {
		if err := r.AddCustomer(c); err != nil {
			t.Fatalf("AddCustomer(%s): %v", c.ID, err)
		}
	}
	return r
}

func TestAddCarDuplicateID(t *testing.T) {
	r := newTestRegistry(t)
	err := r.AddCar(&car.Car{ID: "C001", Make: "Mazda", Model: "3"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	// 第一条记录必须完好
	got, err := r.FindCar("C001")
	if err != nil {
		t.Fatalf("FindCar: %v", err)
	}
	if got.Make != "Toyota" {
		t.Fatalf("first record mutated: make=%s", got.Make)
	}
}

func TestAddCustomerDuplicateID(t *testing.T) {
	r := newTestRegistry(t)
	err := r.AddCustomer(&customer.Customer{ID: "CUST001", Name: "Someone Else"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestCarsInitiallyAvailableAndOrdered(t *testing.T) {
	r := newTestRegistry(t)
	avail := r.AvailableCars()
	if len(avail) != 3 {
		t.Fatalf("expected 3 available cars, got %d", len(avail))
	}
	want := []string{"C001", "C002", "C003"}
	for i, c := range avail {
		if c.ID != want[i] {
			t.Fatalf("registration order broken: got %s at %d, want %s", c.ID, i, want[i])
		}
		if c.Status != car.StatusAvailable {
			t.Fatalf("car %s should be available, got %s", c.ID, c.Status)
		}
	}
}

func TestRentAndReturnRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	now := time.Now()

	rec, err := r.RentCar("CUST001", "C001", 3, now)
	if err != nil {
		t.Fatalf("RentCar: %v", err)
	}
	if rec.TotalCost != 135 {
		t.Fatalf("total cost: got %.2f, want 135.00", rec.TotalCost)
	}

	for _, c := range r.AvailableCars() {
		if c.ID == "C001" {
			t.Fatalf("C001 still listed available after rent")
		}
	}
	if got := len(r.ActiveRentals()); got != 1 {
		t.Fatalf("expected 1 active rental, got %d", got)
	}

	done, err := r.ReturnCar("C001", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ReturnCar: %v", err)
	}
	if !done.Returned() {
		t.Fatalf("expected returned rental")
	}

	found := false
	for _, c := range r.AvailableCars() {
		if c.ID == "C001" {
			found = true
		}
	}
	if !found {
		t.Fatalf("C001 not available again after return")
	}
	if got := len(r.ActiveRentals()); got != 0 {
		t.Fatalf("expected no active rentals, got %d", got)
	}
}

func TestRentAlreadyRented(t *testing.T) {
	r := newTestRegistry(t)
	now := time.Now()
	if _, err := r.RentCar("CUST001", "C001", 1, now); err != nil {
		t.Fatalf("RentCar: %v", err)
	}

	_, err := r.RentCar("CUST002", "C001", 1, now)
	if !errors.Is(err, ErrCarUnavailable) {
		t.Fatalf("expected ErrCarUnavailable, got %v", err)
	}
	// 状态不变：仍然只有一条活跃租赁，且归属 CUST001
	active := r.ActiveRentals()
	if len(active) != 1 || active[0].CustomerID != "CUST001" {
		t.Fatalf("state changed by failed rent: %+v", active)
	}
}

func TestRentUnknownIDs(t *testing.T) {
	r := newTestRegistry(t)
	now := time.Now()

	if _, err := r.RentCar("NOPE", "C001", 1, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown customer: expected ErrNotFound, got %v", err)
	}
	if _, err := r.RentCar("CUST001", "NOPE", 1, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown car: expected ErrNotFound, got %v", err)
	}
	if got := len(r.ActiveRentals()); got != 0 {
		t.Fatalf("failed rents must not record rentals, got %d", got)
	}
}

func TestReturnNeverRented(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.ReturnCar("C002", time.Now()); !errors.Is(err, ErrCarNotRented) {
		t.Fatalf("expected ErrCarNotRented, got %v", err)
	}
	if _, err := r.ReturnCar("NOPE", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMaintenanceBlocksRent(t *testing.T) {
	r := newTestRegistry(t)
	now := time.Now()
	if _, err := r.SetCarStatus("C002", car.StatusMaintenance, now); err != nil {
		t.Fatalf("SetCarStatus: %v", err)
	}
	if _, err := r.RentCar("CUST001", "C002", 1, now); !errors.Is(err, ErrCarUnavailable) {
		t.Fatalf("expected ErrCarUnavailable for maintenance car, got %v", err)
	}
	for _, c := range r.AvailableCars() {
		if c.ID == "C002" {
			t.Fatalf("maintenance car listed available")
		}
	}
	// 维保结束重新上线
	if _, err := r.SetCarStatus("C002", car.StatusAvailable, now); err != nil {
		t.Fatalf("SetCarStatus back: %v", err)
	}
	if _, err := r.RentCar("CUST001", "C002", 1, now); err != nil {
		t.Fatalf("RentCar after maintenance: %v", err)
	}
}

func TestSetCarStatusRejectsRentManagedTransitions(t *testing.T) {
	r := newTestRegistry(t)
	now := time.Now()
	if _, err := r.SetCarStatus("C001", car.StatusRented, now); err == nil {
		t.Fatalf("expected direct rented transition to be rejected")
	}
	if _, err := r.RentCar("CUST001", "C001", 1, now); err != nil {
		t.Fatalf("RentCar: %v", err)
	}
	if _, err := r.SetCarStatus("C001", car.StatusAvailable, now); err == nil {
		t.Fatalf("expected direct return transition to be rejected")
	}
}

func TestSummaryAndUtilization(t *testing.T) {
	r := newTestRegistry(t)
	now := time.Now()

	if got := r.Utilization(); got != 0 {
		t.Fatalf("idle fleet utilization: got %.2f, want 0", got)
	}
	if got := NewRegistry().Utilization(); got != 0 {
		t.Fatalf("empty fleet utilization must be 0, got %.2f", got)
	}

	if _, err := r.RentCar("CUST001", "C001", 2, now); err != nil {
		t.Fatalf("RentCar: %v", err)
	}
	if _, err := r.ReturnCar("C001", now.Add(time.Hour)); err != nil {
		t.Fatalf("ReturnCar: %v", err)
	}
	if _, err := r.RentCar("CUST002", "C002", 1, now); err != nil {
		t.Fatalf("RentCar: %v", err)
	}

	s := r.Summary()
	if s.TotalCars != 3 || s.AvailableCars != 2 || s.TotalCustomers != 2 {
		t.Fatalf("summary counts wrong: %+v", s)
	}
	if s.ActiveRentals != 1 || s.CompletedRentals != 1 {
		t.Fatalf("summary rentals wrong: %+v", s)
	}
	if s.TotalRevenue != 90 {
		t.Fatalf("revenue: got %.2f, want 90.00", s.TotalRevenue)
	}

	util := r.Utilization()
	if util < 33.3 || util > 33.4 {
		t.Fatalf("utilization: got %.2f, want ~33.33", util)
	}
}

func TestCleanupHistory(t *testing.T) {
	r := newTestRegistry(t)
	old := time.Now().Add(-40 * 24 * time.Hour)

	if _, err := r.RentCar("CUST001", "C001", 1, old); err != nil {
		t.Fatalf("RentCar: %v", err)
	}
	if _, err := r.ReturnCar("C001", old.Add(time.Hour)); err != nil {
		t.Fatalf("ReturnCar: %v", err)
	}
	if _, err := r.RentCar("CUST002", "C002", 1, time.Now()); err != nil {
		t.Fatalf("RentCar: %v", err)
	}

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	if removed := r.CleanupHistory(cutoff); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	s := r.Summary()
	if s.CompletedRentals != 0 || s.ActiveRentals != 1 {
		t.Fatalf("cleanup touched wrong records: %+v", s)
	}
}

func TestRestoreRental(t *testing.T) {
	r := NewRegistry()
	if err := r.AddCar(&car.Car{ID: "C001", Make: "Toyota", Model: "Camry", Status: car.StatusRented}); err != nil {
		t.Fatalf("AddCar: %v", err)
	}
	if err := r.AddCustomer(&customer.Customer{ID: "CUST001", Name: "John Smith"}); err != nil {
		t.Fatalf("AddCustomer: %v", err)
	}

	rec := &Rental{ID: "r-1", CustomerID: "CUST001", CarID: "C001", Days: 1, RentedAt: time.Now()}
	if err := r.RestoreRental(rec); err != nil {
		t.Fatalf("RestoreRental: %v", err)
	}
	if got := len(r.ActiveRentals()); got != 1 {
		t.Fatalf("expected restored active rental, got %d", got)
	}

	bad := &Rental{ID: "r-2", CustomerID: "CUST001", CarID: "NOPE", Days: 1, RentedAt: time.Now()}
	if err := r.RestoreRental(bad); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
