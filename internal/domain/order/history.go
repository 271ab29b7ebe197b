package order

import (
	"time"
)

// HistoryAction 审计动作类型
type HistoryAction string

const (
	ActionCreateOrder         HistoryAction = "CREATE_ORDER"
	ActionUpdateStatus        HistoryAction = "UPDATE_STATUS"
	ActionUpdatePaymentStatus HistoryAction = "UPDATE_PAYMENT_STATUS"
	ActionUpdateTransactionID HistoryAction = "UPDATE_TRANSACTION_ID"
	ActionCancelOrder         HistoryAction = "CANCEL_ORDER"
)

// History 订单审计记录(仅追加,永不修改或删除)
// 设计说明:
// 1. 每次对订单的变更操作写入一条记录,且与变更本身在同一事务中落库
//    (保证"有变更必有审计,有审计必有变更")
// 2. UserID是操作人,系统触发的变更可以为空
// 3. OldValue/NewValue由调用方传入类型化的String()结果,不做ad hoc序列化
type History struct {
	ID        uint
	OrderID   uint
	UserID    *uint         // 操作人(可空,系统操作时为nil)
	Action    HistoryAction // 动作类型
	Field     string        // 变更的字段名(创建订单时为空)
	OldValue  *string       // 变更前的值(null安全)
	NewValue  *string       // 变更后的值
	CreatedAt time.Time
}

// NewHistory 创建审计记录(工厂方法)
func NewHistory(orderID uint, actorID *uint, action HistoryAction, field string, oldValue, newValue *string) *History {
	return &History{
		OrderID:   orderID,
		UserID:    actorID,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		CreatedAt: time.Now(),
	}
}

// StrPtr 字符串审计值辅助函数
// 说明:History的新旧值是可空指针,空字符串与"无值"语义不同
func StrPtr(s string) *string {
	return &s
}
