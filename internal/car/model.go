package car

import "time"

// Status 车辆状态枚举（持久化为字符串）。
type Status string

const (
	StatusAvailable   Status = "available"   // 可租
	StatusRented      Status = "rented"      // 已被租出
	StatusMaintenance Status = "maintenance" // 维保中，不可租
)

// Car 是 cars 表的 GORM 模型，同时也是注册表内的领域对象。
type Car struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	Make      string  `gorm:"size:64;not null" json:"make"`
	Model     string  `gorm:"size:64;not null" json:"model"`
	Year      int     `gorm:"not null;default:0" json:"year"`
	DailyRate float64 `gorm:"not null;default:0" json:"daily_rate"`
	Status    Status  `gorm:"type:varchar(16);index;not null" json:"status"`

	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	RentedAt   *time.Time `json:"rented_at,omitempty"`   // 最近一次租出时间
	ReturnedAt *time.Time `json:"returned_at,omitempty"` // 最近一次归还时间
}

// Available 判断车辆当前是否可租。
func (c *Car) Available() bool {
	return c != nil && c.Status == StatusAvailable
}
