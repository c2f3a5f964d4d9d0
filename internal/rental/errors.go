package rental

import "errors"

// 注册表的四类业务错误，调用方用 errors.Is 区分。
var (
	// ErrDuplicateID 登记了重复的车辆/客户 ID。
	ErrDuplicateID = errors.New("duplicate id")
	// ErrNotFound 车辆或客户 ID 不存在。
	ErrNotFound = errors.New("not found")
	// ErrCarUnavailable 对不可租（已租出/维保中）的车辆发起租车。
	ErrCarUnavailable = errors.New("car unavailable")
	// ErrCarNotRented 对未租出的车辆发起还车。
	ErrCarNotRented = errors.New("car not rented")
)
