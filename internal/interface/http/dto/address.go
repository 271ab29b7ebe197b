package dto

import (
	"time"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/address"
)

// CreateAddressRequest 新增收货地址请求
type CreateAddressRequest struct {
	Recipient string `json:"recipient" binding:"required,min=2,max=50"`
	Phone     string `json:"phone" binding:"required,min=8,max=20"`
	Street    string `json:"street" binding:"required,max=200"`
	City      string `json:"city" binding:"required,max=50"`
	District  string `json:"district" binding:"max=50"`
	IsDefault bool   `json:"is_default"`
}

// AddressResponse 收货地址响应
type AddressResponse struct {
	ID        uint      `json:"id"`
	Recipient string    `json:"recipient"`
	Phone     string    `json:"phone"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	District  string    `json:"district,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// ToAddressResponse 领域实体 → HTTP响应
func ToAddressResponse(a *address.Address) *AddressResponse {
	return &AddressResponse{
		ID:        a.ID,
		Recipient: a.Recipient,
		Phone:     a.Phone,
		Street:    a.Street,
		City:      a.City,
		District:  a.District,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
	}
}

// ToAddressResponses 批量转换
func ToAddressResponses(addresses []*address.Address) []*AddressResponse {
	responses := make([]*AddressResponse, len(addresses))
	for i, a := range addresses {
		responses[i] = ToAddressResponse(a)
	}
	return responses
}
