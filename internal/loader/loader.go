package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/CarRentLink/CarRentLink/internal/car"
	"github.com/CarRentLink/CarRentLink/internal/customer"
	"github.com/CarRentLink/CarRentLink/internal/rental"
)

// carRecord 车辆种子文件里的一条记录。
type carRecord struct {
	ID        string  `json:"id"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Year      int     `json:"year"`
	DailyRate float64 `json:"daily_rate"`
}

func (r carRecord) validate() error {
	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Make) == "" || strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("car record %q: id/make/model required", r.ID)
	}
	if r.Year != 0 && r.Year < 1900 {
		return fmt.Errorf("car record %q: invalid year %d", r.ID, r.Year)
	}
	if r.DailyRate < 0 {
		return fmt.Errorf("car record %q: invalid daily rate %.2f", r.ID, r.DailyRate)
	}
	return nil
}

// LoadCarsJSON 从 JSON 文件加载车辆种子数据。
// 任何一条记录非法则整体失败，不部分写入。
func LoadCarsJSON(path string) ([]*car.Car, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cars file: %w", err)
	}

	var records []carRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse cars file %s: %w", path, err)
	}

	cars := make([]*car.Car, 0, len(records))
	for _, r := range records {
		if err := r.validate(); err != nil {
			return nil, err
		}
		cars = append(cars, &car.Car{
			ID:        strings.TrimSpace(r.ID),
			Make:      strings.TrimSpace(r.Make),
			Model:     strings.TrimSpace(r.Model),
			Year:      r.Year,
			DailyRate: r.DailyRate,
			Status:    car.StatusAvailable,
		})
	}
	return cars, nil
}

// LoadCustomersCSV 从 CSV 文件加载客户种子数据。
// 首行为表头：customer_id,name,email,phone。
func LoadCustomersCSV(path string) ([]*customer.Customer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open customers file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse customers file %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("customers file %s is empty", path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"customer_id", "name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("customers file %s: missing column %s", path, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	customers := make([]*customer.Customer, 0, len(rows)-1)
	for _, row := range rows[1:] {
		c := &customer.Customer{
			ID:    cell(row, "customer_id"),
			Name:  cell(row, "name"),
			Email: cell(row, "email"),
			Phone: cell(row, "phone"),
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("customers file %s: %w", path, err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

// SummaryProvider 报表需要的注册表只读视图，rental.Service 即实现。
type SummaryProvider interface {
	Summary() rental.Summary
	AvailableCars() []car.Car
	Utilization() float64
}

// GenerateReport 生成文本运营报表。
func GenerateReport(p SummaryProvider) string {
	s := p.Summary()

	var b strings.Builder
	b.WriteString("=== CAR RENTAL REGISTRY REPORT ===\n\n")
	b.WriteString("SUMMARY:\n")
	fmt.Fprintf(&b, "  Total Cars in Fleet: %d\n", s.TotalCars)
	fmt.Fprintf(&b, "  Available Cars: %d\n", s.AvailableCars)
	fmt.Fprintf(&b, "  Cars Currently Rented: %d\n", s.ActiveRentals)
	fmt.Fprintf(&b, "  Total Customers: %d\n", s.TotalCustomers)
	fmt.Fprintf(&b, "  Active Rentals: %d\n", s.ActiveRentals)
	fmt.Fprintf(&b, "  Completed Rentals: %d\n", s.CompletedRentals)
	fmt.Fprintf(&b, "  Total Revenue: $%.2f\n", s.TotalRevenue)
	fmt.Fprintf(&b, "  Fleet Utilization: %.1f%%\n\n", p.Utilization())

	b.WriteString("AVAILABLE CARS:\n")
	avail := p.AvailableCars()
	if len(avail) == 0 {
		b.WriteString("  No cars currently available\n")
	}
	for _, c := range avail {
		fmt.Fprintf(&b, "  %s %s (%s) - $%.2f/day\n", c.Make, c.Model, c.ID, c.DailyRate)
	}
	return b.String()
}
