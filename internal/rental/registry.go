package rental

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CarRentLink/CarRentLink/internal/car"
	"github.com/CarRentLink/CarRentLink/internal/customer"
)

// Registry 车队租赁注册表：内存中维护车辆、客户、活跃租赁三组集合。
// 注册表本身是权威数据源，数据库只是可选的持久化镜像。
//
// 原始实现是单线程的；这里挂在 HTTP 服务后面，所以加读写锁，
// 每个操作在锁内完成，对外仍然是原子的。
type Registry struct {
	mu sync.RWMutex

	cars      []*car.Car          // 登记顺序
	carIndex  map[string]*car.Car // id -> car
	customers []*customer.Customer
	custIndex map[string]*customer.Customer

	active  map[string]*Rental // carID -> 活跃租赁
	history []*Rental          // 已完成租赁，按归还时间追加
}

func NewRegistry() *Registry {
	return &Registry{
		carIndex:  make(map[string]*car.Car),
		custIndex: make(map[string]*customer.Customer),
		active:    make(map[string]*Rental),
	}
}

// AddCar 登记一辆新车。ID 冲突返回 ErrDuplicateID，且不改动已有记录。
func (r *Registry) AddCar(c *car.Car) error {
	if c == nil {
		return fmt.Errorf("car is nil")
	}
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return fmt.Errorf("car id required")
	}
	if c.Status == "" {
		c.Status = car.StatusAvailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carIndex[id]; ok {
		return fmt.Errorf("car %s: %w", id, ErrDuplicateID)
	}
	c.ID = id
	r.cars = append(r.cars, c)
	r.carIndex[id] = c
	return nil
}

// AddCustomer 登记一位新客户。ID 冲突返回 ErrDuplicateID。
func (r *Registry) AddCustomer(c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	id := strings.TrimSpace(c.ID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.custIndex[id]; ok {
		return fmt.Errorf("customer %s: %w", id, ErrDuplicateID)
	}
	c.ID = id
	r.customers = append(r.customers, c)
	r.custIndex[id] = c
	return nil
}

// RentCar 处理租车：校验客户与车辆存在、车辆可租，然后流转状态并记录租赁。
// days <= 0 时按 1 天计。失败时注册表状态不变。
func (r *Registry) RentCar(customerID, carID string, days int, now time.Time) (*Rental, error) {
	customerID = strings.TrimSpace(customerID)
	carID = strings.TrimSpace(carID)
	if days <= 0 {
		days = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.custIndex[customerID]; !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	c, ok := r.carIndex[carID]
	if !ok {
		return nil, fmt.Errorf("car %s: %w", carID, ErrNotFound)
	}
	if !c.Available() {
		return nil, fmt.Errorf("car %s (status=%s): %w", carID, c.Status, ErrCarUnavailable)
	}

	if err := car.ApplyTransition(c, car.StatusRented, now); err != nil {
		return nil, err
	}

	rec := &Rental{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		CarID:      carID,
		Days:       days,
		TotalCost:  c.DailyRate * float64(days),
		RentedAt:   now,
	}
	r.active[carID] = rec
	return rec, nil
}

// ReturnCar 处理还车：车辆不存在返回 ErrNotFound，未租出返回 ErrCarNotRented，
// 否则恢复可租状态、关闭租赁记录并转入历史。
func (r *Registry) ReturnCar(carID string, now time.Time) (*Rental, error) {
	carID = strings.TrimSpace(carID)

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carIndex[carID]
	if !ok {
		return nil, fmt.Errorf("car %s: %w", carID, ErrNotFound)
	}
	rec, ok := r.active[carID]
	if !ok || c.Status != car.StatusRented {
		return nil, fmt.Errorf("car %s: %w", carID, ErrCarNotRented)
	}

	if err := car.ApplyTransition(c, car.StatusAvailable, now); err != nil {
		return nil, err
	}

	t := now
	rec.ReturnedAt = &t
	delete(r.active, carID)
	r.history = append(r.history, rec)
	return rec, nil
}

// SetCarStatus 手动流转车辆状态（维保上线/下线）。
// 已租出车辆不允许直接下线，由状态机拦截。
func (r *Registry) SetCarStatus(carID string, to car.Status, now time.Time) (*car.Car, error) {
	carID = strings.TrimSpace(carID)

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carIndex[carID]
	if !ok {
		return nil, fmt.Errorf("car %s: %w", carID, ErrNotFound)
	}
	if to == car.StatusRented || (c.Status == car.StatusRented && to == car.StatusAvailable) {
		// 租出/归还必须走 RentCar / ReturnCar，避免丢租赁记录
		return nil, fmt.Errorf("status %s is managed by rent/return", to)
	}
	if err := car.ApplyTransition(c, to, now); err != nil {
		return nil, err
	}
	out := *c
	return &out, nil
}

// AvailableCars 按登记顺序返回当前可租车辆，只读无副作用。
func (r *Registry) AvailableCars() []car.Car {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]car.Car, 0, len(r.cars))
	for _, c := range r.cars {
		if c.Available() {
			out = append(out, *c)
		}
	}
	return out
}

// Cars 按登记顺序返回全部车辆。
func (r *Registry) Cars() []car.Car {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]car.Car, 0, len(r.cars))
	for _, c := range r.cars {
		out = append(out, *c)
	}
	return out
}

// FindCar 按 ID 查找车辆。
func (r *Registry) FindCar(id string) (*car.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carIndex[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("car %s: %w", id, ErrNotFound)
	}
	out := *c
	return &out, nil
}

// FindCustomer 按 ID 查找客户。
func (r *Registry) FindCustomer(id string) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.custIndex[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	out := *c
	return &out, nil
}

// ActiveRentals 按租出时间返回活跃租赁快照。
func (r *Registry) ActiveRentals() []Rental {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rental, 0, len(r.active))
	for _, c := range r.cars {
		if rec, ok := r.active[c.ID]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// Summary 运营汇总：车辆/客户规模、活跃与完成租赁数、已完成租赁收入。
func (r *Registry) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Summary{
		TotalCars:        len(r.cars),
		TotalCustomers:   len(r.customers),
		ActiveRentals:    len(r.active),
		CompletedRentals: len(r.history),
	}
	for _, c := range r.cars {
		if c.Available() {
			s.AvailableCars++
		}
	}
	for _, rec := range r.history {
		s.TotalRevenue += rec.TotalCost
	}
	return s
}

// Utilization 车队利用率（已租出 / 总数，百分比）。空车队返回 0。
func (r *Registry) Utilization() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.cars) == 0 {
		return 0
	}
	rented := 0
	for _, c := range r.cars {
		if c.Status == car.StatusRented {
			rented++
		}
	}
	return float64(rented) / float64(len(r.cars)) * 100
}

// CleanupHistory 清理归还时间早于 cutoff 的历史租赁，返回清理条数。
// 活跃租赁永不清理。
func (r *Registry) CleanupHistory(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.history[:0]
	removed := 0
	for _, rec := range r.history {
		if rec.ReturnedAt != nil && rec.ReturnedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.history = kept
	return removed
}

// RestoreRental 从持久化镜像恢复一条租赁记录（启动时使用）。
// 活跃记录要求对应车辆存在且处于 rented 状态。
func (r *Registry) RestoreRental(rec *Rental) error {
	if rec == nil {
		return fmt.Errorf("rental is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.Returned() {
		r.history = append(r.history, rec)
		return nil
	}
	c, ok := r.carIndex[rec.CarID]
	if !ok {
		return fmt.Errorf("car %s: %w", rec.CarID, ErrNotFound)
	}
	if c.Status != car.StatusRented {
		return fmt.Errorf("restore active rental: car %s status is %s, want %s", c.ID, c.Status, car.StatusRented)
	}
	r.active[rec.CarID] = rec
	return nil
}
