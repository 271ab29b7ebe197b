package dto

import (
	"time"

	"github.com/shopspring/decimal"

	apporder "github.com/sixxson/coffee-craft-service-sub000/internal/application/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
)

// CreateOrderRequest 下单请求
// 说明:金额字段(运费)用字符串传输,服务端解析为decimal,避免JSON浮点精度问题
type CreateOrderRequest struct {
	ShippingAddressID uint                     `json:"shipping_address_id" binding:"required"`
	PaymentMethod     string                   `json:"payment_method" binding:"required,oneof=COD BANK_TRANSFER CREDIT_CARD"`
	Items             []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	VoucherCode       string                   `json:"voucher_code"`
	Note              string                   `json:"note" binding:"max=500"`
	ShippingFee       string                   `json:"shipping_fee"` // 形如"5000.00",省略按0处理
}

// CreateOrderItemRequest 下单明细请求项
type CreateOrderItemRequest struct {
	ProductID        uint  `json:"product_id" binding:"required"`
	ProductVariantID *uint `json:"product_variant_id"`
	Quantity         int   `json:"quantity" binding:"required,min=1"`
}

// UpdateStatusRequest 订单状态流转请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=CONFIRMED SHIPPED DELIVERED"`
}

// UpdatePaymentRequest 支付状态更新请求
type UpdatePaymentRequest struct {
	PaymentStatus string  `json:"payment_status" binding:"required,oneof=PENDING PAID FAILED REFUNDED"`
	TransactionID *string `json:"transaction_id"`
}

// ListOrdersQuery 管理端订单列表查询参数
type ListOrdersQuery struct {
	Status        string   `form:"status"`
	PaymentStatus string   `form:"payment_status"`
	UserID        []string `form:"user_id"` // 支持重复参数与逗号分隔
	Page          int      `form:"page,default=1"`
	PageSize      int      `form:"page_size,default=20"`
	SortBy        string   `form:"sort_by,default=created_at"`
	SortOrder     string   `form:"sort_order,default=desc"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID                uint                `json:"id"`
	OrderNo           string              `json:"order_no"`
	UserID            uint                `json:"user_id"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"payment_status"`
	PaymentMethod     string              `json:"payment_method"`
	Total             decimal.Decimal     `json:"total"`
	ShippingFee       decimal.Decimal     `json:"shipping_fee"`
	DiscountAmount    decimal.Decimal     `json:"discount_amount"`
	FinalTotal        decimal.Decimal     `json:"final_total"`
	VoucherCode       string              `json:"voucher_code,omitempty"`
	Note              string              `json:"note,omitempty"`
	TransactionID     *string             `json:"transaction_id,omitempty"`
	Items             []OrderItemResponse `json:"items"`
	ShippingAddress   *AddressResponse    `json:"shipping_address,omitempty"`
	Purchaser         *UserResponse       `json:"purchaser,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// OrderItemResponse 订单明细响应
type OrderItemResponse struct {
	ID               uint            `json:"id"`
	ProductID        uint            `json:"product_id"`
	ProductVariantID *uint           `json:"product_variant_id,omitempty"`
	Quantity         int             `json:"quantity"`
	PriceAtOrder     decimal.Decimal `json:"price_at_order"`
	SubTotal         decimal.Decimal `json:"sub_total"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
}

// OrderHistoryResponse 订单审计记录响应
type OrderHistoryResponse struct {
	ID        uint      `json:"id"`
	OrderID   uint      `json:"order_id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Field     string    `json:"field,omitempty"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}

// ToOrderResponse 应用层视图 → HTTP响应
func ToOrderResponse(d *apporder.Detail) *OrderResponse {
	o := d.Order
	resp := &OrderResponse{
		ID:             o.ID,
		OrderNo:        o.OrderNo,
		UserID:         o.UserID,
		Status:         o.Status.String(),
		PaymentStatus:  o.PaymentStatus.String(),
		PaymentMethod:  o.PaymentMethod.String(),
		Total:          o.Total,
		ShippingFee:    o.ShippingFee,
		DiscountAmount: o.DiscountAmount,
		FinalTotal:     o.FinalTotal,
		VoucherCode:    d.VoucherCode,
		Note:           o.Note,
		TransactionID:  o.TransactionID,
		Items:          make([]OrderItemResponse, len(o.Items)),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	for i, item := range o.Items {
		resp.Items[i] = OrderItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			PriceAtOrder:     item.PriceAtOrder,
			SubTotal:         item.SubTotal,
			DiscountAmount:   item.DiscountAmount,
		}
	}

	if d.Address != nil {
		resp.ShippingAddress = ToAddressResponse(d.Address)
	}
	if d.Purchaser != nil {
		resp.Purchaser = &UserResponse{
			ID:       d.Purchaser.ID,
			Email:    d.Purchaser.Email,
			Nickname: d.Purchaser.Nickname,
			Role:     d.Purchaser.Role.String(),
		}
	}

	return resp
}

// ToOrderResponses 批量转换
func ToOrderResponses(details []*apporder.Detail) []*OrderResponse {
	responses := make([]*OrderResponse, len(details))
	for i, d := range details {
		responses[i] = ToOrderResponse(d)
	}
	return responses
}

// ToOrderHistoryResponses 审计记录批量转换
func ToOrderHistoryResponses(histories []*order.History) []*OrderHistoryResponse {
	responses := make([]*OrderHistoryResponse, len(histories))
	for i, h := range histories {
		responses[i] = &OrderHistoryResponse{
			ID:        h.ID,
			OrderID:   h.OrderID,
			UserID:    h.UserID,
			Action:    string(h.Action),
			Field:     h.Field,
			OldValue:  h.OldValue,
			NewValue:  h.NewValue,
			CreatedAt: h.CreatedAt,
		}
	}
	return responses
}
