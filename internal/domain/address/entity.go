package address

import (
	"time"
)

// Address 收货地址实体
// 说明:订单创建时校验归属(地址必须属于下单用户),订单详情中预加载展示
type Address struct {
	ID        uint
	UserID    uint   // 所属用户
	Recipient string // 收件人
	Phone     string
	Street    string
	City      string
	District  string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy 校验地址归属
func (a *Address) IsOwnedBy(userID uint) bool {
	return a.UserID == userID
}
