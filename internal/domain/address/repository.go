package address

import (
	"context"
)

// Repository 收货地址仓储接口
type Repository interface {
	// Create 创建收货地址
	Create(ctx context.Context, addr *Address) error

	// FindByID 根据ID查找地址,不存在返回errors.ErrAddressNotFound
	FindByID(ctx context.Context, id uint) (*Address, error)

	// ListByUserID 查询用户的全部地址
	ListByUserID(ctx context.Context, userID uint) ([]*Address, error)
}
