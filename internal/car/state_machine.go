package car

import (
	"fmt"
	"time"
)

// AllowTransition 定义车辆状态机的允许流转关系。
// 目前采用“有向图”方式进行配置，后续可根据需要抽到配置中心。
var AllowTransition = map[Status][]Status{
	StatusAvailable:   {StatusRented, StatusMaintenance},
	StatusRented:      {StatusAvailable},
	StatusMaintenance: {StatusAvailable},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对车辆应用状态变更，并维护关键时间字段。
// 仅在 CanTransition 返回 true 时生效。
func ApplyTransition(c *Car, to Status, now time.Time) error {
	if c == nil {
		return fmt.Errorf("car is nil")
	}
	from := c.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid car status transition: %s -> %s", from, to)
	}

	c.Status = to

	switch to {
	case StatusRented:
		t := now
		c.RentedAt = &t
	case StatusAvailable:
		if from == StatusRented {
			t := now
			c.ReturnedAt = &t
		}
	}
	return nil
}
