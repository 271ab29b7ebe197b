package address

import (
	"context"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/address"
)

// ManageUseCase 收货地址管理用例
// 说明:地址是订单的前置数据,这里只提供下单所需的最小能力(新增、列表)
type ManageUseCase struct {
	addressRepo address.Repository
}

// NewManageUseCase 创建地址管理用例
func NewManageUseCase(addressRepo address.Repository) *ManageUseCase {
	return &ManageUseCase{addressRepo: addressRepo}
}

// CreateRequest 新增地址请求
type CreateRequest struct {
	UserID    uint
	Recipient string
	Phone     string
	Street    string
	City      string
	District  string
	IsDefault bool
}

// Create 新增收货地址
func (uc *ManageUseCase) Create(ctx context.Context, req CreateRequest) (*address.Address, error) {
	a := &address.Address{
		UserID:    req.UserID,
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		District:  req.District,
		IsDefault: req.IsDefault,
	}
	if err := uc.addressRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListMine 查询当前用户的全部地址
func (uc *ManageUseCase) ListMine(ctx context.Context, userID uint) ([]*address.Address, error) {
	return uc.addressRepo.ListByUserID(ctx, userID)
}
