package rental

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/CarRentLink/CarRentLink/internal/car"
	"github.com/CarRentLink/CarRentLink/internal/common/logger"
	"github.com/CarRentLink/CarRentLink/internal/common/metrics"
	"github.com/CarRentLink/CarRentLink/internal/customer"
)

// Service 封装注册表领域的核心用例（不依赖 HTTP），便于复用和测试。
// 内存注册表是权威数据源；配置了数据库时写操作同步镜像到 MySQL，
// 镜像失败记日志并计数，不回滚内存状态（重启时以镜像重建，见 LoadFromMirror）。
type Service struct {
	reg *Registry
	log logger.Logger

	retention time.Duration

	// 持久化镜像（可选，nil 表示纯内存模式）
	cars      *car.Repo
	customers *customer.Repo
	rentals   *Repo
}

type Option func(*Service)

// WithMirror 启用 MySQL 持久化镜像。
func WithMirror(db *gorm.DB) Option {
	return func(s *Service) {
		s.cars = car.NewRepo(db)
		s.customers = customer.NewRepo(db)
		s.rentals = NewRepo(db)
	}
}

// WithRetention 设置历史租赁保留时长。
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

func NewService(reg *Registry, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		reg:       reg,
		log:       log,
		retention: 30 * 24 * time.Hour,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(s)
		}
	}
	return s
}

// AddCar 登记新车。
func (s *Service) AddCar(ctx context.Context, c *car.Car) error {
	if s == nil || s.reg == nil {
		return fmt.Errorf("service not initialized")
	}
	if c == nil {
		return fmt.Errorf("car is nil")
	}
	c.ID = strings.TrimSpace(c.ID)
	c.Make = strings.TrimSpace(c.Make)
	c.Model = strings.TrimSpace(c.Model)
	if c.Make == "" || c.Model == "" {
		return fmt.Errorf("car make/model required")
	}
	if c.Year != 0 && c.Year < 1900 {
		return fmt.Errorf("invalid car year: %d", c.Year)
	}
	if c.DailyRate < 0 {
		return fmt.Errorf("invalid daily rate: %.2f", c.DailyRate)
	}

	if err := s.reg.AddCar(c); err != nil {
		metrics.OperationErrors.WithLabelValues("add_car", errKind(err)).Inc()
		return err
	}

	if s.cars != nil {
		if err := s.cars.Create(ctx, c); err != nil {
			s.mirrorFailed("add_car", c.ID, err)
		}
	}
	s.refreshGauges()
	return nil
}

// AddCustomer 登记新客户。
func (s *Service) AddCustomer(ctx context.Context, c *customer.Customer) error {
	if s == nil || s.reg == nil {
		return fmt.Errorf("service not initialized")
	}

	if err := s.reg.AddCustomer(c); err != nil {
		metrics.OperationErrors.WithLabelValues("add_customer", errKind(err)).Inc()
		return err
	}

	if s.customers != nil {
		if err := s.customers.Create(ctx, c); err != nil {
			s.mirrorFailed("add_customer", c.ID, err)
		}
	}
	return nil
}

// RentCar 处理租车。days <= 0 时按 1 天计。
func (s *Service) RentCar(ctx context.Context, customerID, carID string, days int) (*Rental, error) {
	if s == nil || s.reg == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	rec, err := s.reg.RentCar(customerID, carID, days, time.Now())
	if err != nil {
		metrics.OperationErrors.WithLabelValues("rent_car", errKind(err)).Inc()
		return nil, err
	}
	metrics.RentalsTotal.Inc()

	if s.rentals != nil {
		if err := s.rentals.Create(ctx, rec); err != nil {
			s.mirrorFailed("rent_car", rec.ID, err)
		}
		s.mirrorCar(ctx, carID)
	}
	s.refreshGauges()

	if s.log != nil {
		s.log.WithFields(map[string]interface{}{
			"rental_id":   rec.ID,
			"customer_id": rec.CustomerID,
			"car_id":      rec.CarID,
			"days":        rec.Days,
			"total_cost":  rec.TotalCost,
		}).Info("rental created")
	}
	return rec, nil
}

// ReturnCar 处理还车，并顺带清理超过保留期的历史租赁。
func (s *Service) ReturnCar(ctx context.Context, carID string) (*Rental, error) {
	if s == nil || s.reg == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	now := time.Now()
	rec, err := s.reg.ReturnCar(carID, now)
	if err != nil {
		metrics.OperationErrors.WithLabelValues("return_car", errKind(err)).Inc()
		return nil, err
	}
	metrics.ReturnsTotal.Inc()

	if s.rentals != nil {
		if err := s.rentals.Update(ctx, rec); err != nil {
			s.mirrorFailed("return_car", rec.ID, err)
		}
		s.mirrorCar(ctx, carID)
	}
	s.refreshGauges()

	// 防止历史租赁无限增长
	cutoff := now.Add(-s.retention)
	if removed := s.reg.CleanupHistory(cutoff); removed > 0 && s.log != nil {
		s.log.Infof("cleaned up %d completed rentals older than %s", removed, s.retention)
	}
	if s.rentals != nil {
		if _, err := s.rentals.DeleteReturnedBefore(ctx, cutoff); err != nil {
			s.mirrorFailed("cleanup", "", err)
		}
	}

	if s.log != nil {
		s.log.WithFields(map[string]interface{}{
			"rental_id": rec.ID,
			"car_id":    rec.CarID,
		}).Info("car returned")
	}
	return rec, nil
}

// SetCarStatus 车辆维保上线/下线。
func (s *Service) SetCarStatus(ctx context.Context, carID string, to car.Status) (*car.Car, error) {
	if s == nil || s.reg == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	c, err := s.reg.SetCarStatus(carID, to, time.Now())
	if err != nil {
		metrics.OperationErrors.WithLabelValues("set_car_status", errKind(err)).Inc()
		return nil, err
	}
	if s.cars != nil {
		s.mirrorCar(ctx, carID)
	}
	s.refreshGauges()
	return c, nil
}

// AvailableCars 当前可租车辆（登记顺序）。
func (s *Service) AvailableCars() []car.Car { return s.reg.AvailableCars() }

// Cars 全部车辆（登记顺序）。
func (s *Service) Cars() []car.Car { return s.reg.Cars() }

// FindCar 按 ID 查找车辆。
func (s *Service) FindCar(id string) (*car.Car, error) { return s.reg.FindCar(id) }

// FindCustomer 按 ID 查找客户。
func (s *Service) FindCustomer(id string) (*customer.Customer, error) {
	return s.reg.FindCustomer(id)
}

// ActiveRentals 活跃租赁快照。
func (s *Service) ActiveRentals() []Rental { return s.reg.ActiveRentals() }

// Summary 运营汇总。
func (s *Service) Summary() Summary { return s.reg.Summary() }

// Utilization 车队利用率（百分比）。
func (s *Service) Utilization() float64 { return s.reg.Utilization() }

// LoadFromMirror 服务启动时从持久化镜像重建内存注册表。
// 纯内存模式下为 no-op。
func (s *Service) LoadFromMirror(ctx context.Context) error {
	if s.cars == nil {
		return nil
	}

	cars, err := s.cars.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load cars: %w", err)
	}
	for i := range cars {
		c := cars[i]
		if err := s.reg.AddCar(&c); err != nil {
			return fmt.Errorf("restore car %s: %w", c.ID, err)
		}
	}

	customers, err := s.customers.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	for i := range customers {
		c := customers[i]
		if err := s.reg.AddCustomer(&c); err != nil {
			return fmt.Errorf("restore customer %s: %w", c.ID, err)
		}
	}

	rentals, err := s.rentals.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load rentals: %w", err)
	}
	for i := range rentals {
		rec := rentals[i]
		if err := s.reg.RestoreRental(&rec); err != nil {
			return fmt.Errorf("restore rental %s: %w", rec.ID, err)
		}
	}

	if s.log != nil {
		s.log.Infof("registry restored from mirror: %d cars, %d customers, %d rentals",
			len(cars), len(customers), len(rentals))
	}
	s.refreshGauges()
	return nil
}

// mirrorCar 把车辆当前内存状态写回镜像。
func (s *Service) mirrorCar(ctx context.Context, carID string) {
	c, err := s.reg.FindCar(carID)
	if err != nil {
		return
	}
	if err := s.cars.Update(ctx, c); err != nil {
		s.mirrorFailed("mirror_car", carID, err)
	}
}

func (s *Service) mirrorFailed(op, id string, err error) {
	metrics.MirrorFailures.Inc()
	if s.log != nil {
		s.log.Errorf("persistence mirror failed op=%s id=%s err=%v", op, id, err)
	}
}

func (s *Service) refreshGauges() {
	metrics.AvailableCars.Set(float64(len(s.reg.AvailableCars())))
}

// errKind 把业务错误映射为指标 label。
func errKind(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCarUnavailable):
		return "unavailable"
	case errors.Is(err, ErrCarNotRented):
		return "not_rented"
	default:
		return "invalid"
	}
}
