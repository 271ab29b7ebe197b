package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
// 设计说明:
// 1. 使用string类型存储(与前端/支付回调约定的枚举值一致,日志可读)
// 2. 定义为类型别名,便于添加方法
// 3. 流转方向:PENDING → CONFIRMED → SHIPPED → DELIVERED,取消为分支终态
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"   // 待确认
	OrderStatusConfirmed OrderStatus = "CONFIRMED" // 已确认
	OrderStatusShipped   OrderStatus = "SHIPPED"   // 已发货
	OrderStatusDelivered OrderStatus = "DELIVERED" // 已送达
	OrderStatusCanceled  OrderStatus = "CANCELED"  // 已取消
)

// IsValid 校验状态枚举值
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// IsTerminal 是否为终态(终态订单不允许任何状态变更)
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"  // 待支付
	PaymentStatusPaid     PaymentStatus = "PAID"     // 已支付
	PaymentStatusFailed   PaymentStatus = "FAILED"   // 支付失败
	PaymentStatusRefunded PaymentStatus = "REFUNDED" // 已退款
)

// IsValid 校验支付状态枚举值
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod 支付方式
// 说明:本系统只记录支付方式与支付状态,不对接支付网关
type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "COD"           // 货到付款
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER" // 银行转账
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"   // 信用卡
)

// IsValid 校验支付方式枚举值
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodBankTransfer, PaymentMethodCreditCard:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// Order 订单实体(聚合根)
// 设计说明:
// 1. Order是聚合根,OrderItem是子实体,必须在同一事务中创建
// 2. 金额字段统一使用decimal定点数,杜绝浮点误差
// 3. FinalTotal在创建时计算一次,之后永不重算(价格快照原则)
// 4. 订单是永久记录,只有状态变化,从不删除
type Order struct {
	ID                uint
	OrderNo           string        // 订单号(业务主键,全局唯一)
	UserID            uint          // 买家用户ID
	Status            OrderStatus   // 订单状态
	PaymentStatus     PaymentStatus // 支付状态
	PaymentMethod     PaymentMethod // 支付方式
	Total             decimal.Decimal // 明细小计之和(未扣优惠、未加运费)
	ShippingFee       decimal.Decimal // 运费(外部输入,本系统不计算)
	DiscountAmount    decimal.Decimal // 订单级优惠金额
	FinalTotal        decimal.Decimal // 实付金额 = max(0, Total - DiscountAmount + ShippingFee)
	VoucherID         *uint           // 使用的优惠券ID(可空)
	ShippingAddressID uint            // 收货地址ID
	Note              string          // 买家备注
	TransactionID     *string         // 外部支付流水号(可空)
	Items             []OrderItem     // 订单明细(聚合内的子实体)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem 订单明细项
// 设计说明:
// 1. 不是独立聚合根,必须通过Order访问
// 2. PriceAtOrder记录"下单时的单价"(历史价格快照),商品后续改价不影响已成交订单
// 3. ProductVariantID为空表示购买的是基础商品而非规格
type OrderItem struct {
	ID               uint
	OrderID          uint            // 所属订单ID
	ProductID        uint            // 商品ID
	ProductVariantID *uint           // 商品规格ID(可空)
	Quantity         int             // 购买数量(≥1)
	PriceAtOrder     decimal.Decimal // 下单时单价快照,创建后不可变
	SubTotal         decimal.Decimal // = PriceAtOrder × Quantity
	DiscountAmount   decimal.Decimal // 明细级优惠,本设计只做订单级优惠,恒为0
}

// NewOrder 创建新订单(工厂方法)
// 说明:
// 1. FinalTotal在此处计算一次,负数截断为0
// 2. 初始状态PENDING/待支付
func NewOrder(orderNo string, userID uint, items []OrderItem, total, shippingFee, discountAmount decimal.Decimal,
	voucherID *uint, shippingAddressID uint, paymentMethod PaymentMethod, note string) *Order {
	finalTotal := total.Sub(discountAmount).Add(shippingFee)
	if finalTotal.IsNegative() {
		finalTotal = decimal.Zero
	}

	now := time.Now()
	return &Order{
		OrderNo:           orderNo,
		UserID:            userID,
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStatusPending,
		PaymentMethod:     paymentMethod,
		Total:             total,
		ShippingFee:       shippingFee,
		DiscountAmount:    discountAmount,
		FinalTotal:        finalTotal,
		VoucherID:         voucherID,
		ShippingAddressID: shippingAddressID,
		Note:              note,
		Items:             items,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
// 状态机设计:防止非法状态跳转(例如已送达的订单不能回到待确认)
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCanceled},
		OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCanceled},
		OrderStatusShipped:   {OrderStatusDelivered},
		OrderStatusDelivered: {}, // 终态
		OrderStatusCanceled:  {}, // 终态
	}

	allowedTargets, exists := transitions[o.Status]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
// 规则:终态(DELIVERED/CANCELED)的订单拒绝一切状态变更
func (o *Order) TransitionTo(target OrderStatus) error {
	if o.Status.IsTerminal() {
		return ErrInvalidStatusTransition
	}
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// CanCancel 是否允许取消
// 业务规则:只有PENDING/CONFIRMED的订单可以取消
// (已发货/已送达的订单走售后流程,不走取消;已取消不可重复取消)
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// Cancel 取消订单(领域行为)
func (o *Order) Cancel() error {
	if !o.CanCancel() {
		return ErrInvalidStatusTransition
	}
	o.Status = OrderStatusCanceled
	o.UpdatedAt = time.Now()
	return nil
}

// SetPaymentStatus 更新支付状态
func (o *Order) SetPaymentStatus(target PaymentStatus) {
	o.PaymentStatus = target
	o.UpdatedAt = time.Now()
}

// SetTransactionID 更新外部支付流水号
// 返回是否发生了变更(未变更时不写审计记录)
func (o *Order) SetTransactionID(txnID string) bool {
	if o.TransactionID != nil && *o.TransactionID == txnID {
		return false
	}
	o.TransactionID = &txnID
	o.UpdatedAt = time.Now()
	return true
}

// CalculateTotal 根据明细列表实时计算小计
// 用途:创建订单时校验冗余字段Total的正确性
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.SubTotal)
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户
// 权限校验:防止用户访问他人订单
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
