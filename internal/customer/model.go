package customer

import (
	"fmt"
	"strings"
	"time"
)

// Customer 是 customers 表的 GORM 模型，登记后不可变更。
type Customer struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"size:128;not null" json:"name"`
	Email string `gorm:"size:128" json:"email,omitempty"`
	Phone string `gorm:"size:32" json:"phone,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Validate 做最小字段校验：id/name 必填，email 形式合法（若填写）。
func (c *Customer) Validate() error {
	if c == nil {
		return fmt.Errorf("customer is nil")
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("customer id required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name required")
	}
	if e := strings.TrimSpace(c.Email); e != "" {
		if !strings.Contains(e, "@") || !strings.Contains(e, ".") {
			return fmt.Errorf("invalid email: %s", e)
		}
	}
	return nil
}
