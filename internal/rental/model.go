package rental

import "time"

// Rental 租赁记录：记录某客户当前/曾经持有某车辆。
// 活跃记录的 ReturnedAt 为 nil；归还后写入时间并转入历史。
type Rental struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	CustomerID string `gorm:"index;size:36;not null" json:"customer_id"`
	CarID      string `gorm:"index;size:36;not null" json:"car_id"`

	// 金额信息
	Days      int     `gorm:"not null;default:1" json:"days"`
	TotalCost float64 `gorm:"not null;default:0" json:"total_cost"`

	RentedAt   time.Time  `gorm:"not null" json:"rented_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// Returned 判断记录是否已归还。
func (r *Rental) Returned() bool {
	return r != nil && r.ReturnedAt != nil
}

// Summary 注册表运营汇总。
type Summary struct {
	TotalCars        int     `json:"total_cars"`
	AvailableCars    int     `json:"available_cars"`
	TotalCustomers   int     `json:"total_customers"`
	ActiveRentals    int     `json:"active_rentals"`
	CompletedRentals int     `json:"completed_rentals"`
	TotalRevenue     float64 `json:"total_revenue"`
}
